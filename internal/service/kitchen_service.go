package service

import (
	"context"
	"errors"

	"github.com/dom/whats-cookin/internal/domain"
)

var (
	ErrEmptyImage        = errors.New("uploaded file is empty")
	ErrNoIngredients     = errors.New("no ingredients detected in image")
	ErrEmptyIngredients  = errors.New("ingredients list cannot be empty")
	ErrNoRecommendations = errors.New("no recipes found for these ingredients")
)

// RecipeAdvisor is implemented by the AI gateway.
type RecipeAdvisor interface {
	DetectIngredients(ctx context.Context, image []byte) ([]string, error)
	RecommendRecipes(ctx context.Context, ingredients []string) ([]domain.Recommendation, error)
}

type KitchenService struct {
	advisor RecipeAdvisor
}

func NewKitchenService(advisor RecipeAdvisor) *KitchenService {
	return &KitchenService{advisor: advisor}
}

func (s *KitchenService) AnalyzeImage(ctx context.Context, image []byte) ([]string, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	ingredients, err := s.advisor.DetectIngredients(ctx, image)
	if err != nil {
		return nil, err
	}
	if len(ingredients) == 0 {
		return nil, ErrNoIngredients
	}
	return ingredients, nil
}

func (s *KitchenService) Recommend(ctx context.Context, ingredients []string) ([]domain.Recommendation, error) {
	ingredients = cleanIngredients(ingredients)
	if len(ingredients) == 0 {
		return nil, ErrEmptyIngredients
	}

	recommendations, err := s.advisor.RecommendRecipes(ctx, ingredients)
	if err != nil {
		return nil, err
	}
	if len(recommendations) == 0 {
		return nil, ErrNoRecommendations
	}
	return recommendations, nil
}

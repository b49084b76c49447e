package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/dom/whats-cookin/internal/domain"
	"github.com/dom/whats-cookin/internal/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	ErrInvalidPage   = errors.New("page must be at least 1")
	ErrPageTooLarge  = errors.New("page is out of range")
	ErrInvalidLimit  = errors.New("limit must be between 1 and 100")
	ErrInvalidRecipe = errors.New("recipe needs a name and at least one ingredient")
)

type RecipeService struct {
	recipeRepo repository.RecipeRepository
}

func NewRecipeService(recipeRepo repository.RecipeRepository) *RecipeService {
	return &RecipeService{recipeRepo: recipeRepo}
}

type RecipePage struct {
	Recipes []*domain.Recipe
	Page    int
	Limit   int
	Total   int64
}

type CreateRecipeInput struct {
	Name        string
	Ingredients []string
}

func (s *RecipeService) List(ctx context.Context, ownerID uint, page, limit int) (*RecipePage, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if limit < 1 || limit > MaxLimit {
		return nil, ErrInvalidLimit
	}
	// The row offset (page-1)*limit must fit in an int.
	if page-1 > math.MaxInt/limit {
		return nil, ErrPageTooLarge
	}

	recipes, total, err := s.recipeRepo.ListByOwner(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}

	return &RecipePage{
		Recipes: recipes,
		Page:    page,
		Limit:   limit,
		Total:   total,
	}, nil
}

func (s *RecipeService) Delete(ctx context.Context, id, ownerID uint) error {
	return s.recipeRepo.DeleteOwned(ctx, id, ownerID)
}

func (s *RecipeService) Create(ctx context.Context, ownerID uint, input CreateRecipeInput) (*domain.Recipe, error) {
	name := strings.TrimSpace(input.Name)
	ingredients := cleanIngredients(input.Ingredients)
	if name == "" || len(ingredients) == 0 {
		return nil, ErrInvalidRecipe
	}

	recipe := &domain.Recipe{
		Name:        name,
		Ingredients: ingredients,
		UserID:      ownerID,
	}
	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// cleanIngredients trims every name and drops the blank ones.
func cleanIngredients(ingredients []string) []string {
	cleaned := make([]string, 0, len(ingredients))
	for _, ingredient := range ingredients {
		if ingredient = strings.TrimSpace(ingredient); ingredient != "" {
			cleaned = append(cleaned, ingredient)
		}
	}
	return cleaned
}

package service

import (
	"github.com/dom/whats-cookin/internal/auth"
	"github.com/dom/whats-cookin/internal/config"
	"github.com/dom/whats-cookin/internal/metrics"
	"github.com/dom/whats-cookin/internal/repository"
)

type Services struct {
	Auth    *AuthService
	Recipe  *RecipeService
	Kitchen *KitchenService
}

func NewServices(repos *repository.Repositories, advisor RecipeAdvisor, cfg *config.Config, m *metrics.Metrics) *Services {
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService(cfg.JWTSecret)

	return &Services{
		Auth:    NewAuthService(repos.User, hasher, tokens, m),
		Recipe:  NewRecipeService(repos.Recipe),
		Kitchen: NewKitchenService(advisor),
	}
}

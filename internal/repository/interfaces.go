package repository

import (
	"context"

	"github.com/dom/whats-cookin/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type RecipeRepository interface {
	Create(ctx context.Context, recipe *domain.Recipe) error
	GetByID(ctx context.Context, id uint) (*domain.Recipe, error)
	// ListByOwner returns one 1-based page of the owner's recipes ordered by id, plus the owner's total count.
	ListByOwner(ctx context.Context, ownerID uint, page, limit int) ([]*domain.Recipe, int64, error)
	// DeleteOwned removes the recipe only when ownerID owns it.
	// It returns domain.ErrRecipeNotFound or domain.ErrRecipeForbidden otherwise.
	DeleteOwned(ctx context.Context, id, ownerID uint) error
}

type Repositories struct {
	User   UserRepository
	Recipe RecipeRepository
}

package postgres

import (
	"context"
	"errors"

	"github.com/dom/whats-cookin/internal/domain"
	"gorm.io/gorm"
)

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *recipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *domain.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

func (r *recipeRepository) GetByID(ctx context.Context, id uint) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.db.WithContext(ctx).First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) ListByOwner(ctx context.Context, ownerID uint, page, limit int) ([]*domain.Recipe, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.Recipe{}).Where("user_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	recipes := []*domain.Recipe{}
	err := db.
		Where("user_id = ?", ownerID).
		Order("id ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	return recipes, total, nil
}

func (r *recipeRepository) DeleteOwned(ctx context.Context, id, ownerID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe domain.Recipe
		if err := tx.Select("id", "user_id").First(&recipe, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRecipeNotFound
			}
			return err
		}

		if recipe.UserID != ownerID {
			return domain.ErrRecipeForbidden
		}

		// The owner condition is repeated so a row reassigned or removed since the read is never deleted.
		result := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&domain.Recipe{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrRecipeNotFound
		}
		return nil
	})
}

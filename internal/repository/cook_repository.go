package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pocket-organizer/internal/apperr"
	"pocket-organizer/internal/events"
	"pocket-organizer/internal/model"
)

// CookRepository manages ingredient categories and their ingredients.
type CookRepository struct {
	db     *gorm.DB
	broker *events.Broker
}

func NewCookRepository(db *gorm.DB, broker *events.Broker) *CookRepository {
	return &CookRepository{db: db, broker: broker}
}

func (r *CookRepository) notify(entity string, op events.Op, id uint) {
	r.broker.Publish(events.Event{Entity: entity, Op: op, ID: id})
}

func (r *CookRepository) CreateCategory(ctx context.Context, category *model.IngredientCategory) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrConstraintViolation, err)
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return persistErr("create ingredient category", err)
	}
	r.notify("ingredient_category", events.OpInsert, category.ID)
	return nil
}

func (r *CookRepository) FindCategory(ctx context.Context, categoryID uint) (*model.IngredientCategory, error) {
	var category model.IngredientCategory
	err := r.db.WithContext(ctx).First(&category, categoryID).Error
	switch {
	case err == nil:
		return &category, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("ingredient category %d: %w", categoryID, apperr.ErrNotFound)
	default:
		return nil, fmt.Errorf("find ingredient category: %w", err)
	}
}

func (r *CookRepository) ListCategories(ctx context.Context) ([]model.IngredientCategory, error) {
	var categories []model.IngredientCategory
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list ingredient categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes an ingredient category and all its ingredients in
// one transaction, mirroring the task cascade.
func (r *CookRepository) DeleteCategory(ctx context.Context, categoryID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", categoryID).
			Delete(&model.Ingredient{}).Error; err != nil {
			return persistErr("cascade ingredients", err)
		}
		res := tx.Delete(&model.IngredientCategory{}, categoryID)
		if res.Error != nil {
			return persistErr("delete ingredient category", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("ingredient category %d: %w", categoryID, apperr.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.notify("ingredient_category", events.OpDelete, categoryID)
	return nil
}

// AddIngredient creates an ingredient inside a live category.
func (r *CookRepository) AddIngredient(ctx context.Context, ingredient *model.Ingredient) error {
	if err := ingredient.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrConstraintViolation, err)
	}
	if ingredient.CategoryID == nil {
		return fmt.Errorf("%w: ingredient requires a category", apperr.ErrConstraintViolation)
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.IngredientCategory{}).
		Where("id = ?", *ingredient.CategoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("check ingredient category: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: ingredient category %d does not exist",
			apperr.ErrConstraintViolation, *ingredient.CategoryID)
	}
	if err := r.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return persistErr("create ingredient", err)
	}
	r.notify("ingredient", events.OpInsert, ingredient.ID)
	return nil
}

func (r *CookRepository) ListIngredients(ctx context.Context, categoryID uint) ([]model.Ingredient, error) {
	var ingredients []model.Ingredient
	if err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).
		Order("created_at ASC").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

func (r *CookRepository) DeleteIngredient(ctx context.Context, ingredientID uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Ingredient{}, ingredientID)
	if res.Error != nil {
		return persistErr("delete ingredient", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("ingredient %d: %w", ingredientID, apperr.ErrNotFound)
	}
	r.notify("ingredient", events.OpDelete, ingredientID)
	return nil
}

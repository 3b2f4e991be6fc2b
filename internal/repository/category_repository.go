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

// CategoryRepository manages study categories and owns the task cascade.
type CategoryRepository struct {
	db     *gorm.DB
	broker *events.Broker
}

func NewCategoryRepository(db *gorm.DB, broker *events.Broker) *CategoryRepository {
	return &CategoryRepository{db: db, broker: broker}
}

func (r *CategoryRepository) notify(op events.Op, id uint) {
	r.broker.Publish(events.Event{Entity: "category", Op: op, ID: id})
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrConstraintViolation, err)
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return persistErr("create category", err)
	}
	r.notify(events.OpInsert, category.ID)
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, categoryID uint) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).First(&category, categoryID).Error
	switch {
	case err == nil:
		return &category, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("category %d: %w", categoryID, apperr.ErrNotFound)
	default:
		return nil, fmt.Errorf("find category: %w", err)
	}
}

// List returns all categories in creation order, the default display order.
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrConstraintViolation, err)
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", category.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("category %d: %w", category.ID, apperr.ErrNotFound)
	}
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return persistErr("update category", err)
	}
	r.notify(events.OpUpdate, category.ID)
	return nil
}

// Delete removes a category together with every task that references it.
// The cascade runs in one transaction, so a partial cascade is never
// observable: either the category and all its tasks go, or nothing changes.
func (r *CategoryRepository) Delete(ctx context.Context, categoryID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", categoryID).
			Delete(&model.Task{}).Error; err != nil {
			return persistErr("cascade tasks", err)
		}
		res := tx.Delete(&model.Category{}, categoryID)
		if res.Error != nil {
			return persistErr("delete category", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("category %d: %w", categoryID, apperr.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.notify(events.OpDelete, categoryID)
	return nil
}

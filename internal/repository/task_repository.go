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

// TaskRepository handles CRUD and manual ordering for tasks.
type TaskRepository struct {
	db     *gorm.DB
	broker *events.Broker
}

func NewTaskRepository(db *gorm.DB, broker *events.Broker) *TaskRepository {
	return &TaskRepository{db: db, broker: broker}
}

func (r *TaskRepository) notify(op events.Op, id uint) {
	r.broker.Publish(events.Event{Entity: "task", Op: op, ID: id})
}

// checkCategoryRef rejects tasks that would violate referential integrity:
// any set CategoryID must resolve, and secondary-section tasks must have one.
func (r *TaskRepository) checkCategoryRef(ctx context.Context, task *model.Task) error {
	if task.Section == model.SectionSecondary && task.CategoryID == nil {
		return fmt.Errorf("%w: secondary task requires a category", apperr.ErrConstraintViolation)
	}
	if task.CategoryID == nil {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", *task.CategoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: category %d does not exist", apperr.ErrConstraintViolation, *task.CategoryID)
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrConstraintViolation, err)
	}
	if err := r.checkCategoryRef(ctx, task); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return persistErr("create task", err)
	}
	r.notify(events.OpInsert, task.ID)
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, taskID).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("task %d: %w", taskID, apperr.ErrNotFound)
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

// List returns every task, newest first.
func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListBySection returns tasks of one section. The hidden section comes back
// in manual order; everything else newest first.
func (r *TaskRepository) ListBySection(ctx context.Context, section model.Section) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("section = ?", section)
	if section == model.SectionHidden {
		q = q.Order("sort_order ASC")
	} else {
		q = q.Order("created_at DESC")
	}
	var tasks []model.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list %s tasks: %w", section, err)
	}
	return tasks, nil
}

// ListByCategory returns the tasks owned by a category, newest first.
func (r *TaskRepository) ListByCategory(ctx context.Context, categoryID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).
		Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list category tasks: %w", err)
	}
	return tasks, nil
}

// Update persists field changes to an existing task.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrConstraintViolation, err)
	}
	if err := r.checkCategoryRef(ctx, task); err != nil {
		return err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", task.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("check task: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("task %d: %w", task.ID, apperr.ErrNotFound)
	}
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return persistErr("update task", err)
	}
	r.notify(events.OpUpdate, task.ID)
	return nil
}

// SetCompleted flips the completion flag of one task.
func (r *TaskRepository) SetCompleted(ctx context.Context, taskID uint, done bool) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).Update("is_completed", done)
	if res.Error != nil {
		return persistErr("set task completed", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task %d: %w", taskID, apperr.ErrNotFound)
	}
	r.notify(events.OpUpdate, taskID)
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, taskID uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, taskID)
	if res.Error != nil {
		return persistErr("delete task", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task %d: %w", taskID, apperr.ErrNotFound)
	}
	r.notify(events.OpDelete, taskID)
	return nil
}

// Reorder rewrites the manual order of the hidden section. ids must contain
// exactly the current hidden task ids; on success their SortOrder becomes the
// dense sequence 0..n-1 in the order given. Applied in one transaction: either
// every row is renumbered or none are.
func (r *TaskRepository) Reorder(ctx context.Context, ids []uint) error {
	var current []model.Task
	if err := r.db.WithContext(ctx).Where("section = ?", model.SectionHidden).
		Find(&current).Error; err != nil {
		return fmt.Errorf("load hidden tasks: %w", err)
	}

	existing := make(map[uint]struct{}, len(current))
	for _, t := range current {
		existing[t.ID] = struct{}{}
	}
	if len(ids) != len(current) {
		return fmt.Errorf("%w: got %d ids, hidden section has %d tasks",
			apperr.ErrInvalidReorder, len(ids), len(current))
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %d", apperr.ErrInvalidReorder, id)
		}
		seen[id] = struct{}{}
		if _, ok := existing[id]; !ok {
			return fmt.Errorf("%w: id %d is not a hidden task", apperr.ErrInvalidReorder, id)
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for pos, id := range ids {
			if err := tx.Model(&model.Task{}).Where("id = ?", id).
				Update("sort_order", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return persistErr("apply reorder", err)
	}
	r.notify(events.OpUpdate, 0)
	return nil
}

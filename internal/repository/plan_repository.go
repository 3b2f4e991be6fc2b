package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pocket-organizer/internal/dateutil"
	"pocket-organizer/internal/events"
	"pocket-organizer/internal/model"
)

// PlanRepository implements find-or-create for the date-keyed plan records.
// Keys are normalized to the start of their calendar unit on both the read
// and the write path; that is what keeps one row per key without any unique
// constraint in the schema.
type PlanRepository struct {
	db     *gorm.DB
	broker *events.Broker
}

func NewPlanRepository(db *gorm.DB, broker *events.Broker) *PlanRepository {
	return &PlanRepository{db: db, broker: broker}
}

func (r *PlanRepository) notify(entity string, op events.Op, id uint) {
	r.broker.Publish(events.Event{Entity: entity, Op: op, ID: id})
}

// MealPlanFor returns the plan for (day, kind), or nil if none was saved.
func (r *PlanRepository) MealPlanFor(ctx context.Context, day time.Time, kind model.MealKind) (*model.MealPlan, error) {
	var plan model.MealPlan
	err := r.db.WithContext(ctx).
		Where("day = ? AND kind = ?", dateutil.StartOfDay(day), kind).
		First(&plan).Error
	switch {
	case err == nil:
		return &plan, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find meal plan: %w", err)
	}
}

// UpsertMealPlan writes the plan for (day, kind). An existing row is updated
// in place; a missing row is created only when content is non-empty, since an
// empty plan need not be persisted. Returns the resulting row, nil if nothing
// was stored.
func (r *PlanRepository) UpsertMealPlan(ctx context.Context, day time.Time, kind model.MealKind, content string) (*model.MealPlan, error) {
	dayStart := dateutil.StartOfDay(day)

	var plan model.MealPlan
	db := r.db.WithContext(ctx)
	err := db.Where("day = ? AND kind = ?", dayStart, kind).First(&plan).Error
	switch {
	case err == nil:
		plan.Content = content
		if err := db.Save(&plan).Error; err != nil {
			return nil, persistErr("update meal plan", err)
		}
		r.notify("meal_plan", events.OpUpdate, plan.ID)
		return &plan, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if content == "" {
			return nil, nil
		}
		plan = model.MealPlan{Day: dayStart, Kind: kind, Content: content}
		if err := db.Create(&plan).Error; err != nil {
			return nil, persistErr("create meal plan", err)
		}
		r.notify("meal_plan", events.OpInsert, plan.ID)
		return &plan, nil
	default:
		return nil, fmt.Errorf("find meal plan: %w", err)
	}
}

// periodStart applies the kind's normalization rule.
func periodStart(kind model.PeriodKind, ref time.Time) time.Time {
	if kind == model.PeriodMonthly {
		return dateutil.StartOfMonth(ref)
	}
	return dateutil.StartOfWeek(ref)
}

// PeriodPlanFor returns the weekly or monthly plan covering ref, or nil.
func (r *PlanRepository) PeriodPlanFor(ctx context.Context, kind model.PeriodKind, ref time.Time) (*model.PeriodPlan, error) {
	var plan model.PeriodPlan
	err := r.db.WithContext(ctx).
		Where("kind = ? AND start_date = ?", kind, periodStart(kind, ref)).
		First(&plan).Error
	switch {
	case err == nil:
		return &plan, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find period plan: %w", err)
	}
}

// UpsertPeriodPlan writes the plan for the period covering ref. Same contract
// as UpsertMealPlan: update in place, create only for non-empty content.
func (r *PlanRepository) UpsertPeriodPlan(ctx context.Context, kind model.PeriodKind, ref time.Time, content string) (*model.PeriodPlan, error) {
	start := periodStart(kind, ref)

	var plan model.PeriodPlan
	db := r.db.WithContext(ctx)
	err := db.Where("kind = ? AND start_date = ?", kind, start).First(&plan).Error
	switch {
	case err == nil:
		plan.Content = content
		if err := db.Save(&plan).Error; err != nil {
			return nil, persistErr("update period plan", err)
		}
		r.notify("period_plan", events.OpUpdate, plan.ID)
		return &plan, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if content == "" {
			return nil, nil
		}
		plan = model.PeriodPlan{Kind: kind, StartDate: start, Content: content}
		if err := db.Create(&plan).Error; err != nil {
			return nil, persistErr("create period plan", err)
		}
		r.notify("period_plan", events.OpInsert, plan.ID)
		return &plan, nil
	default:
		return nil, fmt.Errorf("find period plan: %w", err)
	}
}

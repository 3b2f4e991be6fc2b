package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pocket-organizer/internal/apperr"
	"pocket-organizer/internal/dateutil"
	"pocket-organizer/internal/events"
	"pocket-organizer/internal/model"
)

// FitnessRepository manages exercise presets and per-day exercise entries.
type FitnessRepository struct {
	db     *gorm.DB
	broker *events.Broker
}

func NewFitnessRepository(db *gorm.DB, broker *events.Broker) *FitnessRepository {
	return &FitnessRepository{db: db, broker: broker}
}

func (r *FitnessRepository) notify(entity string, op events.Op, id uint) {
	r.broker.Publish(events.Event{Entity: entity, Op: op, ID: id})
}

func (r *FitnessRepository) CreatePreset(ctx context.Context, preset *model.ExercisePreset) error {
	if err := preset.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrConstraintViolation, err)
	}
	if err := r.db.WithContext(ctx).Create(preset).Error; err != nil {
		return persistErr("create preset", err)
	}
	r.notify("exercise_preset", events.OpInsert, preset.ID)
	return nil
}

// ListPresets returns all presets in creation order, built-ins naturally
// first because seeding runs before any user row exists.
func (r *FitnessRepository) ListPresets(ctx context.Context) ([]model.ExercisePreset, error) {
	var presets []model.ExercisePreset
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&presets).Error; err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return presets, nil
}

// DeletePreset removes a preset and nulls the reference in any day entry
// that used it, so past days keep their history.
func (r *FitnessRepository) DeletePreset(ctx context.Context, presetID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ExerciseEntry{}).
			Where("preset_id = ?", presetID).
			Update("preset_id", nil).Error; err != nil {
			return persistErr("detach entries", err)
		}
		res := tx.Delete(&model.ExercisePreset{}, presetID)
		if res.Error != nil {
			return persistErr("delete preset", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("preset %d: %w", presetID, apperr.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.notify("exercise_preset", events.OpDelete, presetID)
	return nil
}

// AddEntry plans an exercise for the given day. The day is truncated to
// midnight so all lookups for that day hit.
func (r *FitnessRepository) AddEntry(ctx context.Context, presetID uint, day time.Time) (*model.ExerciseEntry, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ExercisePreset{}).
		Where("id = ?", presetID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check preset: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: preset %d does not exist", apperr.ErrConstraintViolation, presetID)
	}

	entry := model.ExerciseEntry{
		PresetID: &presetID,
		Day:      dateutil.StartOfDay(day),
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, persistErr("create entry", err)
	}
	r.notify("exercise_entry", events.OpInsert, entry.ID)
	return &entry, nil
}

// ListEntries returns the entries planned for one calendar day,
// with their presets loaded.
func (r *FitnessRepository) ListEntries(ctx context.Context, day time.Time) ([]model.ExerciseEntry, error) {
	var entries []model.ExerciseEntry
	if err := r.db.WithContext(ctx).Preload("Preset").
		Where("day = ?", dateutil.StartOfDay(day)).
		Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func (r *FitnessRepository) FindEntry(ctx context.Context, entryID uint) (*model.ExerciseEntry, error) {
	var entry model.ExerciseEntry
	err := r.db.WithContext(ctx).Preload("Preset").First(&entry, entryID).Error
	switch {
	case err == nil:
		return &entry, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("entry %d: %w", entryID, apperr.ErrNotFound)
	default:
		return nil, fmt.Errorf("find entry: %w", err)
	}
}

// SetEntryCompleted flips the done flag on one day entry.
func (r *FitnessRepository) SetEntryCompleted(ctx context.Context, entryID uint, done bool) error {
	res := r.db.WithContext(ctx).Model(&model.ExerciseEntry{}).
		Where("id = ?", entryID).Update("is_completed", done)
	if res.Error != nil {
		return persistErr("set entry completed", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("entry %d: %w", entryID, apperr.ErrNotFound)
	}
	r.notify("exercise_entry", events.OpUpdate, entryID)
	return nil
}

func (r *FitnessRepository) DeleteEntry(ctx context.Context, entryID uint) error {
	res := r.db.WithContext(ctx).Delete(&model.ExerciseEntry{}, entryID)
	if res.Error != nil {
		return persistErr("delete entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("entry %d: %w", entryID, apperr.ErrNotFound)
	}
	r.notify("exercise_entry", events.OpDelete, entryID)
	return nil
}

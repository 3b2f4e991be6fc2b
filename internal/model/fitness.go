package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ExercisePreset is a reusable exercise option shown in the picker. Built-in
// rows are seeded on first run; the store treats them like user-created ones,
// so guarding their deletion is the caller's job.
type ExercisePreset struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Icon      string
	IsBuiltIn bool `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p ExercisePreset) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
	)
}

// ExerciseEntry is one exercise planned for a calendar day. Day is always
// truncated to midnight. PresetID goes nil if the preset is later deleted.
type ExerciseEntry struct {
	ID          uint            `gorm:"primaryKey"`
	PresetID    *uint           `gorm:"index"`
	Preset      *ExercisePreset `gorm:"foreignKey:PresetID"`
	IsCompleted bool            `gorm:"default:false"`
	Day         time.Time       `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PeriodPlan holds free-text weekly or monthly planning notes. At most one
// row exists per (Kind, StartDate); PlanRepository enforces that.
type PeriodPlan struct {
	ID        uint       `gorm:"primaryKey"`
	Kind      PeriodKind `gorm:"index:idx_period_plan_key"`
	StartDate time.Time  `gorm:"index:idx_period_plan_key"`
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

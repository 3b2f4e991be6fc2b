package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// IngredientCategory groups ingredients on the cooking screen. Deleting one
// cascades to its ingredients, so an ingredient is never seen orphaned.
type IngredientCategory struct {
	ID          uint `gorm:"primaryKey"`
	Name        string
	Icon        string
	ColorHex    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Ingredients []Ingredient `gorm:"foreignKey:CategoryID"`
}

func (c IngredientCategory) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.ColorHex, validation.Required, colorHexRule),
	)
}

// Ingredient is a single item inside an ingredient category.
type Ingredient struct {
	ID         uint  `gorm:"primaryKey"`
	CategoryID *uint `gorm:"index"`
	Name       string
	Icon       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (i Ingredient) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.Required),
	)
}

// MealPlan is the free-text plan for one meal of one calendar day. Day is
// always truncated to midnight; at most one row exists per (Day, Kind).
type MealPlan struct {
	ID        uint      `gorm:"primaryKey"`
	Day       time.Time `gorm:"index:idx_meal_plan_key"`
	Kind      MealKind  `gorm:"index:idx_meal_plan_key"`
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Category groups study tasks and carries the accent color the UI renders
// them with. CreatedAt doubles as the default display order.
type Category struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Icon      string
	ColorHex  string
	CreatedAt time.Time
	UpdatedAt time.Time
	Tasks     []Task `gorm:"foreignKey:CategoryID"`
}

func (c Category) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.ColorHex, validation.Required, colorHexRule),
	)
}

package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Task represents a single todo item. SortOrder is meaningful only inside the
// hidden section, where TaskRepository.Reorder keeps it dense and gap-free.
type Task struct {
	ID          uint  `gorm:"primaryKey"`
	CategoryID  *uint `gorm:"index"`
	Title       string
	Notes       string
	IsCompleted bool `gorm:"default:false"`
	DueDate     *time.Time
	Priority    Priority `gorm:"default:1"`
	Section     Section  `gorm:"index;default:0"`
	SortOrder   int      `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks field-level constraints. Referential checks (a secondary
// task pointing at a live category) belong to the repository.
func (t Task) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Title, validation.Required),
		validation.Field(&t.Priority, validation.By(validEnum(t.Priority.Valid, "priority"))),
		validation.Field(&t.Section, validation.By(validEnum(t.Section.Valid, "section"))),
	)
}

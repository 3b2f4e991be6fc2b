package repository

import (
	"fmt"

	"pocket-organizer/internal/apperr"
)

// persistErr tags a failed write with apperr.ErrPersistence so callers can
// tell storage faults from domain errors. SQLite rolls a failed statement or
// transaction back, so in-memory state never diverges from what was stored.
func persistErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrPersistence, err)
}

package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens an isolated SQLite database in a per-test temp dir. Using a
// real file keeps the restart round-trip testable with a second open.
func newTestDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "organizer.db")
	db, err := NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db, path
}

func uintPtr(v uint) *uint { return &v }

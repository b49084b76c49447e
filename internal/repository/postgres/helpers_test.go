package postgres_test

import (
	"testing"

	"github.com/dom/whats-cookin/internal/testutil"
	"gorm.io/gorm"
)

// forEachDB runs fn against SQLite and, when a container runtime is available, PostgreSQL.
func forEachDB(t *testing.T, fn func(t *testing.T, db *gorm.DB)) {
	t.Run("sqlite", func(t *testing.T) {
		fn(t, testutil.NewSQLiteDB(t))
	})
	t.Run("postgres", func(t *testing.T) {
		if testing.Short() {
			t.Skip("skipping container test in short mode")
		}
		fn(t, testutil.NewTestDB(t).DB)
	})
}

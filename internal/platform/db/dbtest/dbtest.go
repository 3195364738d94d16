// Package dbtest opens throwaway sqlite databases with the application schema applied.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"booklend/internal/platform/db"
)

// Open returns a migrated sqlite database living in t.TempDir().
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Connect(db.DatabaseConfig{
		Driver: db.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "booklend.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

package database

import (
	"testing"

	"github.com/pokemon-tcg/internal/config"
	"gorm.io/gorm"
)

// OpenTest returns a fresh in-memory SQLite database with foreign keys enforced.
// Each call gets its own database; it is closed when the test ends.
func OpenTest(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "release"},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
	}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = Close(db)
	})

	return db
}

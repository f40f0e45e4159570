package testhelpers

import (
	"fmt"
	"regexp"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/migrations"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// SetupSQLite returns an in-memory SQLite database private to the test,
// migrated from the gorm models.
func SetupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	return OpenSQLite(t).DB
}

// OpenSQLite is SetupSQLite keeping the pool wrapper, for code that needs health checks or pool stats
func OpenSQLite(t *testing.T) *database.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", unsafeName.ReplaceAllString(t.Name(), "_"))
	// A single connection keeps the in-memory database alive and serializes writers.
	db, err := database.Open(sqlite.Open(dsn), zap.NewNop(), database.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.RunMigrations(db.DB, migrations.FS, zap.NewNop()); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return db
}

package database

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

const rollbackSuffix = "_rollback.sql"

// ErrNoMigrations is returned by Rollback when nothing has been applied
var ErrNoMigrations = errors.New("no applied migrations")

// AppliedMigration is a row of the migrations bookkeeping table
type AppliedMigration struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;not null;uniqueIndex"`
	AppliedAt time.Time `gorm:"not null"`
}

func (AppliedMigration) TableName() string {
	return "migrations"
}

// MigrationStatus reports whether a migration file has been applied
type MigrationStatus struct {
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// RunMigrations executes all pending SQL migration files from fsys in name order.
// SQLite, used by tests, is migrated from the gorm models instead.
func RunMigrations(db *gorm.DB, fsys fs.FS, zl *zap.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		zl.Debug("using gorm auto-migration for sqlite")
		return db.AutoMigrate(model.All()...)
	}

	names, err := migrationFiles(fsys)
	if err != nil {
		return err
	}

	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	for _, name := range names {
		var count int64
		if err := db.Model(&AppliedMigration{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			zl.Debug("skipping migration", zap.String("name", name))
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Create(&AppliedMigration{Name: name, AppliedAt: time.Now().UTC()}).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		zl.Info("applied migration", zap.String("name", name))
	}

	return nil
}

// Rollback reverts the most recently applied migration using its _rollback.sql file
func Rollback(db *gorm.DB, fsys fs.FS, zl *zap.Logger) (string, error) {
	if err := ensureMigrationsTable(db); err != nil {
		return "", err
	}

	var last AppliedMigration
	err := db.Order("name DESC").Limit(1).Find(&last).Error
	if err != nil {
		return "", fmt.Errorf("failed to find last migration: %w", err)
	}
	if last.ID == 0 {
		return "", ErrNoMigrations
	}

	rollbackName := strings.TrimSuffix(last.Name, ".sql") + rollbackSuffix
	content, err := fs.ReadFile(fsys, rollbackName)
	if err != nil {
		return "", fmt.Errorf("failed to read rollback file %s: %w", rollbackName, err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("failed to execute rollback %s: %w", rollbackName, err)
		}
		return tx.Delete(&AppliedMigration{}, last.ID).Error
	})
	if err != nil {
		return "", err
	}

	zl.Info("rolled back migration", zap.String("name", last.Name))
	return last.Name, nil
}

// Status lists every migration file together with its applied state
func Status(db *gorm.DB, fsys fs.FS) ([]MigrationStatus, error) {
	names, err := migrationFiles(fsys)
	if err != nil {
		return nil, err
	}
	if err := ensureMigrationsTable(db); err != nil {
		return nil, err
	}

	var applied []AppliedMigration
	if err := db.Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	byName := make(map[string]time.Time, len(applied))
	for _, m := range applied {
		byName[m.Name] = m.AppliedAt
	}

	out := make([]MigrationStatus, 0, len(names))
	for _, name := range names {
		at, ok := byName[name]
		out = append(out, MigrationStatus{Name: name, Applied: ok, AppliedAt: at})
	}
	return out, nil
}

func ensureMigrationsTable(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// migrationFiles returns the forward migration files sorted by name
func migrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") || strings.HasSuffix(name, rollbackSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

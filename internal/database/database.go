package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/recipe-catalog/backend/config"
)

// DB represents the database connection pool
type DB struct {
	*gorm.DB
	sqlDB *sql.DB
}

// PoolConfig bounds the connection pool shared by all requests
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPool mirrors the settings used when nothing is configured
var DefaultPool = PoolConfig{MaxOpenConns: 25, MaxIdleConns: 25, ConnMaxLifetime: 5 * time.Minute}

// New creates a new PostgreSQL connection pool
func New(cfg *config.Config, zl *zap.Logger) (*DB, error) {
	zl.Info("connecting to database",
		zap.String("host", cfg.DBHost),
		zap.String("port", cfg.DBPort),
		zap.String("user", cfg.DBUser),
		zap.String("dbname", cfg.DBName),
	)

	db, err := Open(postgres.Open(cfg.DSN()), zl, PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	zl.Info("connected to database")
	return db, nil
}

// Open connects through any gorm dialector, applies the pool limits and pings.
func Open(dialector gorm.Dialector, zl *zap.Logger, pool PoolConfig) (*DB, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(zl),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	return &DB{DB: gdb, sqlDB: sqlDB}, nil
}

// SQL exposes the underlying pool, e.g. for pool statistics
func (db *DB) SQL() *sql.DB {
	return db.sqlDB
}

// HealthCheck checks if the database is accessible
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.sqlDB.PingContext(ctx)
}

// Close releases every pooled connection
func (db *DB) Close() error {
	return db.sqlDB.Close()
}

// NewGormLogger routes gorm's warnings and slow queries through zap
func NewGormLogger(zl *zap.Logger) logger.Interface {
	return logger.New(zap.NewStdLog(zl.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	_ "github.com/lib/pq"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/logging"
	"github.com/pageza/recipe-catalog/backend/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "migrate",
		Usage: "Apply, roll back and inspect the database schema migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "PostgreSQL connection string (default: built from POSTGRES_* variables)",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply every pending migration",
				Action: withDB(up),
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recently applied migration",
				Action: withDB(rollback),
			},
			{
				Name:   "status",
				Usage:  "List migrations and whether they are applied",
				Action: withDB(status),
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type dbAction func(ctx context.Context, cmd *cli.Command, db *gorm.DB, zl *zap.Logger) error

// withDB opens the database named by the root flags around action
func withDB(action dbAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		root := cmd.Root()
		zl, err := logging.New(config.GetEnvironment(), root.String("log-level"))
		if err != nil {
			return err
		}
		defer func() { _ = zl.Sync() }()

		dsn := root.String("database-url")
		if dsn == "" {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			dsn = cfg.DSN()
		}

		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer sqlDB.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
			Logger: database.NewGormLogger(zl),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize gorm: %w", err)
		}

		return action(ctx, cmd, db.WithContext(ctx), zl)
	}
}

func up(_ context.Context, _ *cli.Command, db *gorm.DB, zl *zap.Logger) error {
	if err := database.RunMigrations(db, migrations.FS, zl); err != nil {
		return err
	}
	fmt.Println("All migrations applied successfully.")
	return nil
}

func rollback(_ context.Context, _ *cli.Command, db *gorm.DB, zl *zap.Logger) error {
	name, err := database.Rollback(db, migrations.FS, zl)
	if errors.Is(err, database.ErrNoMigrations) {
		fmt.Println("No migrations to roll back.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Successfully rolled back migration: %s\n", name)
	return nil
}

func status(_ context.Context, cmd *cli.Command, db *gorm.DB, _ *zap.Logger) error {
	statuses, err := database.Status(db, migrations.FS)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MIGRATION\tSTATUS\tAPPLIED AT")
	for _, s := range statuses {
		state, at := "pending", "-"
		if s.Applied {
			state, at = "applied", s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, state, at)
	}
	return w.Flush()
}

package main

import (
	"flag"
	"log"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/internal/infrastructure/database"
	"github.com/johnquangdev/peopleops/pkg/config"
)

// migrate applies or rolls back the SQL files in DB_MIGRATIONS_DIR.
//
//	go run ./cmd/migrate            apply all pending
//	go run ./cmd/migrate -down -n 1 roll back one step
//	go run ./cmd/migrate -status    list applied migrations
func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("n", 0, "maximum number of migrations to run (0 = all)")
	status := flag.Bool("status", false, "print applied migrations and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db) //nolint:errcheck

	if *status {
		records, err := database.MigrationStatus(db)
		if err != nil {
			logger.Fatal("failed to read migration status", zap.Error(err))
		}
		for _, r := range records {
			logger.Info("applied", zap.String("id", r.Id), zap.Time("at", r.AppliedAt))
		}
		return
	}

	direction := migrate.Up
	if *down {
		direction = migrate.Down
	}

	n, err := database.Migrate(db, cfg.Database.MigrationsDir, direction, *steps)
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("migrations done", zap.Int("count", n), zap.Bool("down", *down))
}

// Command dbhealth verifies database connectivity and prints job counts.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/dianabombi/student-advisor-sub000/constants"
	"github.com/dianabombi/student-advisor-sub000/internal/common"
	"github.com/dianabombi/student-advisor-sub000/internal/repository"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("migrating database", "error", err)
		os.Exit(1)
	}
	if err := db.HealthCheck(ctx, 1*time.Second); err != nil {
		logger.Error("database health failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database health ok", "driver", db.Driver)

	jobs := repository.NewJobRepository(db)
	for _, status := range []constants.JobStatus{
		constants.JobStatusPending,
		constants.JobStatusProcessing,
		constants.JobStatusCompleted,
		constants.JobStatusFailed,
	} {
		rows, err := jobs.ListByStatus(ctx, status, 1000)
		if err != nil {
			logger.Error("listing jobs", "status", status, "error", err)
			os.Exit(1)
		}
		logger.Info("job count", "status", status, "count", len(rows))
	}
}

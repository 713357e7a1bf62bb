// Command exportjobs writes an XLSX summary of completed jobs.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/dianabombi/student-advisor-sub000/internal/common"
	"github.com/dianabombi/student-advisor-sub000/internal/export"
	"github.com/dianabombi/student-advisor-sub000/internal/repository"
)

func main() {
	_ = godotenv.Load()

	out := flag.String("o", "documents.xlsx", "output path")
	limit := flag.Int("limit", 1000, "maximum rows")
	flag.Parse()

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

	svc := export.NewService(repository.NewJobRepository(db), repository.NewFileRepository(db), logger)
	data, err := svc.ExportCompletedXLSX(ctx, *limit)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("writing workbook", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("workbook written", "path", *out, "bytes", len(data))
}

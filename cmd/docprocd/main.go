package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dianabombi/student-advisor-sub000/internal/async"
	"github.com/dianabombi/student-advisor-sub000/internal/classify"
	"github.com/dianabombi/student-advisor-sub000/internal/common"
	"github.com/dianabombi/student-advisor-sub000/internal/fields"
	"github.com/dianabombi/student-advisor-sub000/internal/ingest"
	"github.com/dianabombi/student-advisor-sub000/internal/ocr"
	"github.com/dianabombi/student-advisor-sub000/internal/pipeline"
	"github.com/dianabombi/student-advisor-sub000/internal/repository"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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
	if err := db.HealthCheck(ctx, 3*time.Second); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	filesRepo := repository.NewFileRepository(db)
	jobsRepo := repository.NewJobRepository(db)

	proc := buildProcessor(cfg, filesRepo, jobsRepo, logger)
	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Worker.Workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithProcessTimeout(cfg.Worker.ProcessTimeout),
	)

	ingestor := ingest.NewFSIngestor(filesRepo, logger)
	if len(cfg.Worker.WatchRoots) > 0 {
		startWatcher(ctx, cfg, ingestor, queue, logger)
	}

	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	logger.Info("grpc serving", "addr", cfg.Server.GRPCAddr)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)
	logger.Info("stopped")
}

func buildProcessor(cfg *common.Config, filesRepo *repository.FileRepository, jobsRepo *repository.JobRepository, logger *slog.Logger) *pipeline.Processor {
	if err := ocr.EnsureArtifactDir(cfg.OCR.ArtifactDir); err != nil {
		logger.Error("creating artifact dir", "dir", cfg.OCR.ArtifactDir, "error", err)
		os.Exit(1)
	}
	engines := []ocr.Engine{
		ocr.NewTesseractEngine(ocr.TesseractConfig{
			Binary:      cfg.OCR.Tesseract,
			TessdataDir: cfg.OCR.TessdataDir,
			ArtifactDir: cfg.OCR.ArtifactDir,
			PSM:         cfg.OCR.PSM,
			OEM:         cfg.OCR.OEM,
		}),
	}
	if cfg.OCR.UseNative {
		engines = append(engines, ocr.NewGosseractEngine(cfg.OCR.TessdataDir))
	}
	adapter := ocr.NewAdapter(logger, engines...)

	validator := ocr.NewValidator(ocr.ValidatorConfig{MinChars: cfg.OCR.MinChars})
	retryer := ocr.NewRetryer(adapter, validator, cfg.OCR.MaxAttempts, logger)

	pdf := ocr.NewPDF(ocr.PDFConfig{
		Pdftotext: cfg.OCR.Pdftotext,
		Pdftoppm:  cfg.OCR.Pdftoppm,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)

	classifier := classify.NewClassifier(classify.DefaultTaxonomy(), classify.Config{}, logger)
	extractor := fields.NewExtractor(logger)

	return pipeline.NewProcessor(pdf, retryer, classifier, extractor, filesRepo, jobsRepo, cfg.OCR.Languages, logger)
}

func startWatcher(ctx context.Context, cfg *common.Config, ingestor *ingest.FSIngestor, queue async.Queue, logger *slog.Logger) {
	evCh, errCh, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Worker.WatchRoots,
		InitialScan: cfg.Worker.InitialScan,
		Debounce:    cfg.Worker.Debounce,
	}, logger)
	if err != nil {
		logger.Error("starting watcher", "roots", cfg.Worker.WatchRoots, "error", err)
		os.Exit(1)
	}
	logger.Info("watching directories", "roots", cfg.Worker.WatchRoots)

	go func() {
		for path := range evCh {
			res, err := ingestor.IngestPath(ctx, path)
			if err != nil {
				logger.Warn("ingest failed", "path", path, "error", err)
				continue
			}
			if res.Deduplicated {
				logger.Debug("skipping known file", "path", path, "file_id", res.FileID)
				continue
			}
			fileID, err := uuid.Parse(res.FileID)
			if err != nil {
				logger.Error("bad file id from ingest", "file_id", res.FileID, "error", err)
				continue
			}
			_ = queue.Enqueue(ctx, async.Job{FileID: fileID, SubmittedAt: time.Now()})
		}
	}()
	go func() {
		for err := range errCh {
			logger.Warn("watcher error", "error", err)
		}
	}()
}

// Command runpipeline runs the document pipeline on a single file and
// prints the analysis as JSON. No database required.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dianabombi/student-advisor-sub000/constants"
	"github.com/dianabombi/student-advisor-sub000/internal/classify"
	"github.com/dianabombi/student-advisor-sub000/internal/common"
	"github.com/dianabombi/student-advisor-sub000/internal/fields"
	"github.com/dianabombi/student-advisor-sub000/internal/ocr"
	"github.com/dianabombi/student-advisor-sub000/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	langFlag := flag.String("lang", "", "comma-separated OCR language codes (default from OCR_LANGUAGES)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: runpipeline [-lang eng,deu] [-v] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	languages := cfg.OCR.Languages
	if *langFlag != "" {
		languages = nil
		for _, l := range strings.Split(*langFlag, ",") {
			if l = strings.TrimSpace(l); l != "" {
				languages = append(languages, l)
			}
		}
	}

	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		fmt.Fprintf(os.Stderr, "unsupported file type: %s\n", path)
		os.Exit(2)
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

	proc := pipeline.NewProcessor(pdf, retryer, classifier, extractor, nil, nil, languages, logger)

	analysis, err := proc.Analyze(context.Background(), path, filepath.Base(path), format)
	if err != nil {
		logger.Error("pipeline failed", "file", path, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(analysis); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
}

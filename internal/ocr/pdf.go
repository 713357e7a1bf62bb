package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/dianabombi/student-advisor-sub000/internal/imaging"
)

// PDFConfig configures the poppler binaries used for text extraction and
// rasterization of paged documents.
type PDFConfig struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	DPI       int    // rasterization DPI for scanned PDFs, default 300
	MaxPages  int    // 0 = no limit
}

// PDF handles paged source documents: the embedded-text shortcut and
// per-page rasterization for OCR.
type PDF struct {
	cfg    PDFConfig
	runner Runner
	logger *slog.Logger
}

func NewPDF(cfg PDFConfig, logger *slog.Logger) *PDF {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PDF{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Validate checks the document structure and returns the page count.
func (p *PDF) Validate(path string) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return 0, fmt.Errorf("pdf validate: %w", err)
	}
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf page count: %w", err)
	}
	return n, nil
}

// EmbeddedText attempts the page-level text-extraction shortcut. Returns
// one string per page; a page whose string is non-blank needs no OCR.
func (p *PDF) EmbeddedText(ctx context.Context, path string) ([]string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := p.runner.Run(ctx, p.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w (%s)", err, truncate(string(errb), 512))
	}
	// a form-feed \f is the page separator
	pages := strings.Split(string(out), "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1] // trailing form feed after the last page
	}
	if p.cfg.MaxPages > 0 && len(pages) > p.cfg.MaxPages {
		pages = pages[:p.cfg.MaxPages]
	}
	return pages, nil
}

// Rasterize renders each page to a grayscale raster. The returned cleanup
// func releases the scratch directory and must be called on every exit
// path; the decoded pages stay usable afterwards.
func (p *PDF) Rasterize(ctx context.Context, path string) ([]*imaging.Page, func(), error) {
	nop := func() {}

	pageCount, err := p.Validate(path)
	if err != nil {
		return nil, nop, err
	}

	tmpDir, err := os.MkdirTemp("", "docproc-pp-*")
	if err != nil {
		return nil, nop, err
	}
	cleanup := func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			p.logger.Warn("failed to remove raster scratch dir", "dir", tmpDir, "error", rmErr)
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -gray -png <in.pdf> <tmp/page>
	_, errb, err := p.runner.Run(ctx, p.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", p.cfg.DPI), "-gray", "-png", path, prefix)
	if err != nil {
		cleanup()
		return nil, nop, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if p.cfg.MaxPages > 0 && len(matches) > p.cfg.MaxPages {
		matches = matches[:p.cfg.MaxPages]
	}
	if len(matches) == 0 {
		cleanup()
		return nil, nop, fmt.Errorf("pdftoppm produced no images for %d page(s)", pageCount)
	}

	pages := make([]*imaging.Page, 0, len(matches))
	for _, img := range matches {
		f, err := os.Open(img)
		if err != nil {
			cleanup()
			return nil, nop, err
		}
		page, err := imaging.Decode(f)
		_ = f.Close()
		if err != nil {
			cleanup()
			return nil, nop, fmt.Errorf("decode %s: %w", filepath.Base(img), err)
		}
		pages = append(pages, page)
	}
	return pages, cleanup, nil
}

package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)

// TesseractConfig configures the external tesseract binary engine.
type TesseractConfig struct {
	Binary      string // binary name or absolute path; if empty -> "tesseract"
	TessdataDir string
	ArtifactDir string // scratch dir for page rasters, default os.TempDir()
	PSM         int    // e.g. 6 is good for a uniform block of text
	OEM         int    // 1 = LSTM; leave 0 to use default
}

// TesseractEngine shells out to the tesseract binary. General-purpose
// default engine.
type TesseractEngine struct {
	cfg    TesseractConfig
	runner Runner
}

func NewTesseractEngine(cfg TesseractConfig) *TesseractEngine {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	return &TesseractEngine{cfg: cfg, runner: execRunner{}}
}

func (e *TesseractEngine) Name() string   { return "tesseract" }
func (e *TesseractEngine) NonLatin() bool { return false }

// Recognize writes the raster to a scratch file, runs tesseract on it, and
// removes the file before returning, on every exit path.
func (e *TesseractEngine) Recognize(ctx context.Context, in Input) (string, error) {
	dir := e.cfg.ArtifactDir
	if dir == "" {
		dir = os.TempDir()
	}
	tmp, err := os.CreateTemp(dir, "ocr-page-*.png")
	if err != nil {
		return "", fmt.Errorf("tesseract scratch file: %w", err)
	}
	path := tmp.Name()
	defer func() { _ = os.Remove(path) }()

	if _, err := tmp.Write(in.PNG); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("tesseract scratch write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	args := []string{path, "stdout"}
	if langs := joinLangs(in.Languages); langs != "" {
		args = append(args, "-l", langs)
	}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}

	// minor cleanup of obvious line noise
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}

func joinLangs(langs []string) string {
	cleaned := make([]string, 0, len(langs))
	for _, l := range langs {
		if l = strings.TrimSpace(l); l != "" {
			cleaned = append(cleaned, l)
		}
	}
	return strings.Join(cleaned, "+")
}

// ensure scratch dir exists at startup so workers do not race on mkdir.
func EnsureArtifactDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(filepath.Clean(dir), 0o755)
}

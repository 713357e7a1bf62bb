// Package ocr provides the text-recognition stage of the document pipeline:
// interchangeable OCR engines behind one adapter, plausibility validation of
// recognized text, and an escalating preprocess-and-retry loop. Engines can
// be backed by local binaries or native libraries without leaking
// engine-specific concerns into callers.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dianabombi/student-advisor-sub000/internal/imaging"
)

// ErrNoBackendAvailable reports that every configured OCR engine failed or
// none is configured. Fatal for the page's OCR stage only; a multi-page
// document still reports partial results.
var ErrNoBackendAvailable = errors.New("no OCR backend available")

// Input encapsulates a single page raster submitted for recognition.
type Input struct {
	// PNG is the encoded page raster.
	PNG []byte
	// Languages is a list of tesseract-style language hints (e.g. "eng", "deu").
	Languages []string
	// PageIndex links the input back to the zero-based page it came from.
	PageIndex int
}

// Engine is the OCR provider contract: one image in, plain text out.
type Engine interface {
	Name() string
	// NonLatin reports whether the engine is the preferred choice for
	// non-Latin scripts.
	NonLatin() bool
	Recognize(ctx context.Context, in Input) (string, error)
}

// languages whose scripts push non-Latin-capable engines to the front.
var nonLatinHints = map[string]struct{}{
	"ara": {}, "fas": {}, "heb": {}, "rus": {}, "ukr": {}, "bul": {},
	"srp": {}, "mkd": {}, "ell": {}, "jpn": {}, "kor": {}, "tha": {},
	"chi_sim": {}, "chi_tra": {}, "hin": {}, "ben": {},
}

func wantsNonLatin(langs []string) bool {
	for _, l := range langs {
		if _, ok := nonLatinHints[strings.ToLower(strings.TrimSpace(l))]; ok {
			return true
		}
	}
	return false
}

// Adapter presents one call surface over an ordered list of OCR engines.
// The list is fixed at construction; unavailable engines are simply absent.
type Adapter struct {
	engines []Engine
	logger  *slog.Logger
}

func NewAdapter(logger *slog.Logger, engines ...Engine) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{engines: engines, logger: logger}
}

// Engines returns the configured engine names in default priority order.
func (a *Adapter) Engines() []string {
	names := make([]string, len(a.engines))
	for i, e := range a.engines {
		names[i] = e.Name()
	}
	return names
}

// order returns engines re-prioritized for the requested languages: engines
// tuned for non-Latin scripts lead when the hints include one.
func (a *Adapter) order(langs []string) []Engine {
	if !wantsNonLatin(langs) {
		return a.engines
	}
	ordered := make([]Engine, 0, len(a.engines))
	for _, e := range a.engines {
		if e.NonLatin() {
			ordered = append(ordered, e)
		}
	}
	for _, e := range a.engines {
		if !e.NonLatin() {
			ordered = append(ordered, e)
		}
	}
	return ordered
}

// ExtractText runs the page through the configured engines in priority
// order, falling through on engine failure. Returns the recognized text and
// the name of the engine that produced it.
func (a *Adapter) ExtractText(ctx context.Context, page *imaging.Page, langs []string) (string, string, error) {
	if len(a.engines) == 0 {
		return "", "", ErrNoBackendAvailable
	}
	png, err := page.PNGBytes()
	if err != nil {
		return "", "", fmt.Errorf("encode page: %w", err)
	}
	in := Input{PNG: png, Languages: langs}

	var lastErr error
	for _, e := range a.order(langs) {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		text, err := e.Recognize(ctx, in)
		if err != nil {
			a.logger.Warn("ocr engine failed, falling through", "engine", e.Name(), "error", err)
			lastErr = err
			continue
		}
		return text, e.Name(), nil
	}
	return "", "", fmt.Errorf("%w: %v", ErrNoBackendAvailable, lastErr)
}

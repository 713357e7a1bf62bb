package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine runs Tesseract in-process through libtesseract. It keeps
// trained models warm across calls, which makes it the preferred engine for
// non-Latin scripts where model loading dominates per-page cost.
type GosseractEngine struct {
	tessdataDir string
}

func NewGosseractEngine(tessdataDir string) *GosseractEngine {
	return &GosseractEngine{tessdataDir: tessdataDir}
}

func (e *GosseractEngine) Name() string   { return "gosseract" }
func (e *GosseractEngine) NonLatin() bool { return true }

func (e *GosseractEngine) Recognize(ctx context.Context, in Input) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if e.tessdataDir != "" {
		if err := client.SetTessdataPrefix(e.tessdataDir); err != nil {
			return "", fmt.Errorf("gosseract tessdata: %w", err)
		}
	}
	if len(in.Languages) > 0 {
		if err := client.SetLanguage(in.Languages...); err != nil {
			return "", fmt.Errorf("gosseract language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(in.PNG); err != nil {
		return "", fmt.Errorf("gosseract set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract recognize: %w", err)
	}
	return text, nil
}

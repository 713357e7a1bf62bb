package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dianabombi/student-advisor-sub000/constants"
	"github.com/dianabombi/student-advisor-sub000/internal/classify"
	"github.com/dianabombi/student-advisor-sub000/internal/fields"
	"github.com/dianabombi/student-advisor-sub000/internal/imaging"
	"github.com/dianabombi/student-advisor-sub000/internal/ocr"
)

type scriptedEngine struct {
	text string
	err  error
}

func (s *scriptedEngine) Name() string   { return "scripted" }
func (s *scriptedEngine) NonLatin() bool { return false }
func (s *scriptedEngine) Recognize(_ context.Context, _ ocr.Input) (string, error) {
	return s.text, s.err
}

func newTestProcessor(t *testing.T, eng ocr.Engine) *Processor {
	t.Helper()
	adapter := ocr.NewAdapter(nil, eng)
	retryer := ocr.NewRetryer(adapter, ocr.NewValidator(ocr.ValidatorConfig{}), 3, nil)
	classifier := classify.NewClassifier(nil, classify.Config{}, nil)
	extractor := fields.NewExtractor(nil)
	return NewProcessor(nil, retryer, classifier, extractor, nil, nil, []string{"eng"}, nil)
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	p, err := imaging.NewPage(48, 48)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	for i := range p.Pix {
		p.Pix[i] = 240
	}
	png, err := p.PNGBytes()
	if err != nil {
		t.Fatalf("PNGBytes: %v", err)
	}
	path := filepath.Join(t.TempDir(), "scan_invoice.png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func TestAnalyzeImageDocument(t *testing.T) {
	text := `INVOICE
Invoice number: 2024-00099
Supplier: Orbit Services Ltd
Due date: 20.05.2024
Total 540,00 EUR
Variable symbol: 202400099
Payment terms apply, VAT included in the total amount.`
	proc := newTestProcessor(t, &scriptedEngine{text: text})

	a, err := proc.Analyze(context.Background(), writeTestImage(t), "scan_invoice.png", constants.IMAGE)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Pages != 1 {
		t.Fatalf("pages = %d, want 1", a.Pages)
	}
	if a.Classification.Type != constants.Invoice {
		t.Fatalf("type = %q, want invoice (scores %v)", a.Classification.Type, a.Classification.Scores)
	}
	if a.LowConfidence {
		t.Fatalf("unexpected low-confidence result")
	}
	if !strings.Contains(a.Text, "2024-00099") {
		t.Fatalf("text lost: %q", a.Text)
	}
	if len(a.ExtractedJSON) == 0 {
		t.Fatalf("extraction payload missing")
	}
	var res fields.Result
	if err := json.Unmarshal(a.ExtractedJSON, &res); err != nil {
		t.Fatalf("extraction payload invalid: %v", err)
	}
	if ms := res.Fields["invoice_number"]; len(ms) == 0 || ms[0].Value != "2024-00099" {
		t.Fatalf("invoice_number = %+v", ms)
	}
}

func TestAnalyzeMarksLowConfidenceOutput(t *testing.T) {
	proc := newTestProcessor(t, &scriptedEngine{text: "@@ ## %%"})

	a, err := proc.Analyze(context.Background(), writeTestImage(t), "noise.png", constants.IMAGE)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !a.LowConfidence {
		t.Fatalf("expected low-confidence flag for garbage OCR output")
	}
	if a.Classification.Type != constants.Unclassified {
		t.Fatalf("type = %q, want unclassified", a.Classification.Type)
	}
	if a.Classification.Confidence != 0.0 {
		t.Fatalf("confidence = %v, want 0", a.Classification.Confidence)
	}
}

func TestAnalyzeUnsupportedFormat(t *testing.T) {
	proc := newTestProcessor(t, &scriptedEngine{text: "x"})
	if _, err := proc.Analyze(context.Background(), "nope.xyz", "nope.xyz", ""); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

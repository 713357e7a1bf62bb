package ocr

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dianabombi/student-advisor-sub000/internal/imaging"
)

// Method tags which page variant an OCR attempt ran on.
type Method string

const (
	MethodOriginal Method = "original"
	MethodBasic    Method = "basic-preprocessed"
	MethodFull     Method = "full-preprocessed"
)

// escalation order: cheaper corrections first, rotation only when the
// earlier attempts failed validation.
type strategy struct {
	method     Method
	preprocess bool
	opts       imaging.Options
}

func strategies() []strategy {
	return []strategy{
		{method: MethodOriginal},
		{method: MethodBasic, preprocess: true, opts: imaging.BasicOptions()},
		{method: MethodFull, preprocess: true, opts: imaging.FullOptions()},
	}
}

// Attempt is one OCR run on one page variant, retained for diagnostics.
type Attempt struct {
	Method Method `json:"method"`
	Engine string `json:"engine,omitempty"`
	Text   string `json:"-"`
	Validation
}

// Outcome is the terminal result of the retry loop for one page.
// LowConfidence marks budget exhaustion without a validator pass; the best
// scoring attempt is still returned rather than an error.
type Outcome struct {
	Text          string
	Method        Method
	Engine        string
	Confidence    float64
	LowConfidence bool
	Attempts      []Attempt
}

// Retryer drives preprocessing, the engine adapter, and the validator
// through the escalating strategy until validation passes or the attempt
// budget is exhausted.
type Retryer struct {
	adapter     *Adapter
	validator   Validator
	maxAttempts int
	logger      *slog.Logger
}

func NewRetryer(adapter *Adapter, validator Validator, maxAttempts int, logger *slog.Logger) *Retryer {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retryer{adapter: adapter, validator: validator, maxAttempts: maxAttempts, logger: logger}
}

// Run OCRs the page, escalating through original, basic-preprocessed and
// full-preprocessed variants. Stops at the first attempt that passes
// validation. Never exceeds the configured budget; exhaustion returns the
// highest-confidence attempt tagged low-confidence, not an error. A backend
// failure mid-escalation likewise keeps the best recorded attempt; an error
// comes back only when no attempt produced text or the context ended.
func (r *Retryer) Run(ctx context.Context, page *imaging.Page, langs []string) (Outcome, error) {
	var attempts []Attempt
	bestIdx := -1

	for i, st := range strategies() {
		if i >= r.maxAttempts {
			break
		}
		if err := ctx.Err(); err != nil {
			return Outcome{Attempts: attempts}, err
		}

		variant := page
		if st.preprocess {
			pre, err := imaging.Preprocess(page, st.opts)
			if err != nil {
				r.logger.Warn("preprocess failed, skipping strategy", "method", st.method, "error", err)
				continue
			}
			variant = pre
		}

		text, engine, err := r.adapter.ExtractText(ctx, variant, langs)
		variant = nil // intermediate raster is not needed past this point
		if err != nil {
			if len(attempts) == 0 || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return Outcome{Attempts: attempts}, err
			}
			// a backend failure must not discard text an earlier attempt
			// already produced; stop escalating and keep the best so far
			r.logger.Warn("ocr backend failed mid-escalation, keeping best attempt",
				"method", st.method, "error", err)
			break
		}

		text = Normalize(text)
		att := Attempt{Method: st.method, Engine: engine, Text: text, Validation: r.validator.Assess(text)}
		attempts = append(attempts, att)

		r.logger.Debug("ocr attempt",
			"method", st.method,
			"engine", engine,
			"chars", att.CharCount,
			"confidence", att.Confidence,
			"valid", att.Valid,
		)

		if att.Valid {
			return Outcome{
				Text:       att.Text,
				Method:     att.Method,
				Engine:     att.Engine,
				Confidence: att.Confidence,
				Attempts:   attempts,
			}, nil
		}
		if bestIdx < 0 || att.Confidence > attempts[bestIdx].Confidence {
			bestIdx = len(attempts) - 1
		}
	}

	if bestIdx < 0 {
		return Outcome{LowConfidence: true, Attempts: attempts}, nil
	}
	best := attempts[bestIdx]
	r.logger.Warn("ocr retry budget exhausted, keeping best attempt",
		"method", best.Method, "confidence", best.Confidence, "attempts", len(attempts))
	return Outcome{
		Text:          best.Text,
		Method:        best.Method,
		Engine:        best.Engine,
		Confidence:    best.Confidence,
		LowConfidence: true,
		Attempts:      attempts,
	}, nil
}

package ocr

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidatorConfig holds the plausibility thresholds. Zero values fall back
// to the defaults below.
type ValidatorConfig struct {
	MinChars        int     // minimum character count, default 50
	MinAlnumRatio   float64 // minimum alphanumeric ratio, default 0.5
	MaxSpecialRatio float64 // maximum special-character ratio, default 0.3
	HardFailBelow   float64 // confidence below which a retry is worthwhile, default 0.3
}

func (c ValidatorConfig) withDefaults() ValidatorConfig {
	if c.MinChars <= 0 {
		c.MinChars = 50
	}
	if c.MinAlnumRatio <= 0 {
		c.MinAlnumRatio = 0.5
	}
	if c.MaxSpecialRatio <= 0 {
		c.MaxSpecialRatio = 0.3
	}
	if c.HardFailBelow <= 0 {
		c.HardFailBelow = 0.3
	}
	return c
}

// Validation is the plausibility verdict for one OCR attempt. Computed
// purely from the text; identical input yields identical output.
type Validation struct {
	Valid        bool     `json:"is_valid"`
	Confidence   float64  `json:"confidence"` // 0..1
	Issues       []string `json:"issues,omitempty"`
	NeedsRetry   bool     `json:"needs_retry"`
	CharCount    int      `json:"char_count"`
	WordCount    int      `json:"word_count"`
	LineCount    int      `json:"line_count"`
	AlnumRatio   float64  `json:"alphanumeric_ratio"`
	SpecialRatio float64  `json:"special_char_ratio"`
}

// Validator scores raw OCR output for plausibility without ground truth.
type Validator struct {
	cfg ValidatorConfig
}

func NewValidator(cfg ValidatorConfig) Validator {
	return Validator{cfg: cfg.withDefaults()}
}

// Assess computes counts, character-class ratios, and the resulting
// confidence for the given text.
//
// Confidence is min(alnumRatio, 1-specialRatio, charCount/minChars capped
// at 1). A failed validation with confidence below the hard-failure
// threshold requests a retry with stronger preprocessing; a marginal
// failure keeps its result.
func (v Validator) Assess(text string) Validation {
	var total, alnum, special int
	for _, r := range text {
		total++
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			alnum++
		case unicode.IsSpace(r):
		default:
			special++
		}
	}

	res := Validation{
		CharCount: total,
		WordCount: len(strings.Fields(text)),
	}
	if strings.TrimSpace(text) != "" {
		res.LineCount = len(strings.Split(strings.TrimSpace(text), "\n"))
	}
	if total > 0 {
		res.AlnumRatio = float64(alnum) / float64(total)
		res.SpecialRatio = float64(special) / float64(total)
	}

	res.Valid = true
	if total < v.cfg.MinChars {
		res.Valid = false
		res.Issues = append(res.Issues, fmt.Sprintf("too little text: %d chars < %d", total, v.cfg.MinChars))
	}
	if res.AlnumRatio < v.cfg.MinAlnumRatio {
		res.Valid = false
		res.Issues = append(res.Issues, fmt.Sprintf("low alphanumeric ratio: %.2f", res.AlnumRatio))
	}
	if res.SpecialRatio > v.cfg.MaxSpecialRatio {
		res.Valid = false
		res.Issues = append(res.Issues, fmt.Sprintf("high special character ratio: %.2f", res.SpecialRatio))
	}

	sizeScore := float64(total) / float64(v.cfg.MinChars)
	if sizeScore > 1.0 {
		sizeScore = 1.0
	}
	res.Confidence = min3(res.AlnumRatio, 1.0-res.SpecialRatio, sizeScore)

	res.NeedsRetry = !res.Valid && res.Confidence < v.cfg.HardFailBelow
	return res
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

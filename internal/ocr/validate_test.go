package ocr

import (
	"math"
	"strings"
	"testing"
)

func TestAssessAcceptsCleanText(t *testing.T) {
	v := NewValidator(ValidatorConfig{})
	text := strings.Repeat("This invoice covers consulting services for March. ", 3)

	res := v.Assess(text)
	if !res.Valid {
		t.Fatalf("expected valid, got issues: %v", res.Issues)
	}
	if res.NeedsRetry {
		t.Fatalf("valid text must not request a retry")
	}
	if res.Confidence <= 0 || res.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", res.Confidence)
	}
}

func TestAssessRejectsShortText(t *testing.T) {
	v := NewValidator(ValidatorConfig{})

	res := v.Assess("short")
	if res.Valid {
		t.Fatalf("expected invalid for %d chars", res.CharCount)
	}
	if len(res.Issues) == 0 {
		t.Fatalf("expected at least one issue")
	}
}

func TestAssessRejectsGarbage(t *testing.T) {
	v := NewValidator(ValidatorConfig{})
	garbage := strings.Repeat("@#$%^&*()!~ ", 10)

	res := v.Assess(garbage)
	if res.Valid {
		t.Fatalf("expected invalid for special-character noise")
	}
	if !res.NeedsRetry {
		t.Fatalf("expected retry request, confidence %v", res.Confidence)
	}
	if res.SpecialRatio <= 0.3 {
		t.Fatalf("special ratio = %v, want > 0.3", res.SpecialRatio)
	}
}

func TestAssessConfidenceFormula(t *testing.T) {
	v := NewValidator(ValidatorConfig{})
	text := strings.Repeat("ab1 ", 30) // 120 chars, all alnum or space

	res := v.Assess(text)
	want := min3(res.AlnumRatio, 1.0-res.SpecialRatio, 1.0)
	if math.Abs(res.Confidence-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", res.Confidence, want)
	}
}

func TestAssessEmptyText(t *testing.T) {
	v := NewValidator(ValidatorConfig{})

	res := v.Assess("")
	if res.Valid {
		t.Fatalf("empty text must be invalid")
	}
	if res.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", res.Confidence)
	}
	if res.CharCount != 0 || res.WordCount != 0 || res.LineCount != 0 {
		t.Fatalf("counts should be zero: %+v", res)
	}
}

func TestAssessIsPure(t *testing.T) {
	v := NewValidator(ValidatorConfig{})
	text := "Contract No. 2024/17 between the parties named below."

	a := v.Assess(text)
	b := v.Assess(text)
	if a.Confidence != b.Confidence || a.Valid != b.Valid || a.CharCount != b.CharCount {
		t.Fatalf("assessment not deterministic: %+v vs %+v", a, b)
	}
}

func TestAssessCounts(t *testing.T) {
	v := NewValidator(ValidatorConfig{MinChars: 5})

	res := v.Assess("one two\nthree four")
	if res.WordCount != 4 {
		t.Fatalf("word count = %d, want 4", res.WordCount)
	}
	if res.LineCount != 2 {
		t.Fatalf("line count = %d, want 2", res.LineCount)
	}
}

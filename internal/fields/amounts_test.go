package fields

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1 234,56", 1234.56},
		{"1 234,56 €", 1234.56},
		{"1,234.56", 1234.56},
		{"1.234,56", 1234.56},
		{"1234", 1234},
		{"12,5", 12.5},
		{"12.5", 12.5},
		{"0,99", 0.99},
		{"EUR 2 500", 2500},
		{"1,234", 1234},
		{"10 000 000,00", 10000000},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", tc.in, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseAmountRejectsNonNumeric(t *testing.T) {
	for _, in := range []string{"", "EUR", "n/a"} {
		if _, err := ParseAmount(in); err == nil {
			t.Fatalf("ParseAmount(%q) succeeded, want error", in)
		}
	}
}

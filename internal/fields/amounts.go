package fields

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount normalizes a raw monetary string to a float. Both European
// ("1 234,56") and Anglo ("1,234.56") layouts are accepted; whichever of
// ',' and '.' occurs last in the string is taken as the decimal separator
// and the other, along with spaces, is treated as grouping.
func ParseAmount(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			return r
		default:
			return -1
		}
	}, raw)
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in %q", raw)
	}

	lastComma := strings.LastIndexByte(cleaned, ',')
	lastDot := strings.LastIndexByte(cleaned, '.')

	var decimal byte
	switch {
	case lastComma < 0 && lastDot < 0:
		// integer amount
	case lastComma > lastDot:
		decimal = ','
	default:
		decimal = '.'
	}

	// "1,234" is ambiguous; a three-digit tail reads as grouping, since
	// monetary fractions are one or two digits.
	if decimal != 0 {
		frac := cleaned[strings.LastIndexByte(cleaned, decimal)+1:]
		if len(frac) >= 3 {
			decimal = 0
		}
	}

	var b strings.Builder
	for i := 0; i < len(cleaned); i++ {
		c := cleaned[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		case decimal != 0 && c == decimal && i == strings.LastIndexByte(cleaned, decimal):
			b.WriteByte('.')
		}
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return v, nil
}

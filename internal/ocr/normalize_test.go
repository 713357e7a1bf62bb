package ocr

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"tabs and runs", "a\t\tb   c", "a b c"},
		{"blank line collapse", "a\n\n\n\n\nb", "a\n\nb"},
		{"trailing spaces", "a   \nb\t", "a\nb"},
		{"surrounding whitespace", "  \n hello \n ", "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

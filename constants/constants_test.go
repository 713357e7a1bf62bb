package constants

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want DocumentType
		ok   bool
	}{
		{"invoice", Invoice, true},
		{"Invoice", Invoice, true},
		{"faktura", Invoice, true},
		{"employment contract", Contract, true},
		{"employment-contract", Contract, true},
		{"pay slip", Payslip, true},
		{"poa", PowerOfAttorney, true},
		{"power of attorney", PowerOfAttorney, true},
		{"diploma", Certificate, true},
		{"", Unclassified, false},
		{"shopping list", Unclassified, false},
	}
	for _, tc := range cases {
		got, ok := Canonicalize(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("Canonicalize(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMapExtToFormat(t *testing.T) {
	cases := []struct {
		ext  string
		want FileFormat
	}{
		{"pdf", PDF},
		{".PDF", PDF},
		{"jpg", IMAGE},
		{".TIFF", IMAGE},
		{"bmp", IMAGE},
		{"docx", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := MapExtToFormat(tc.ext); got != tc.want {
			t.Fatalf("MapExtToFormat(%q) = %q, want %q", tc.ext, got, tc.want)
		}
	}
}

func TestJobStatusValues(t *testing.T) {
	want := map[JobStatus]string{
		JobStatusPending:    "PENDING",
		JobStatusProcessing: "PROCESSING",
		JobStatusCompleted:  "COMPLETED",
		JobStatusFailed:     "FAILED",
	}
	for status, s := range want {
		if string(status) != s {
			t.Fatalf("status %q != %q", status, s)
		}
	}
}

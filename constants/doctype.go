package constants

import (
	"strings"
)

// DocumentType is the closed set of document kinds the classifier can emit.
type DocumentType string

const (
	Contract        DocumentType = "contract"
	Invoice         DocumentType = "invoice"
	Receipt         DocumentType = "receipt"
	Payslip         DocumentType = "payslip"
	BankStatement   DocumentType = "bank_statement"
	CourtDecision   DocumentType = "court_decision"
	PowerOfAttorney DocumentType = "power_of_attorney"
	Certificate     DocumentType = "certificate"
	// Unclassified is the fallback when no taxonomy keyword matches.
	Unclassified DocumentType = "unclassified"
)

var allDocumentTypes = []DocumentType{
	Contract,
	Invoice,
	Receipt,
	Payslip,
	BankStatement,
	CourtDecision,
	PowerOfAttorney,
	Certificate,
	Unclassified,
}

func AllDocumentTypes() []DocumentType {
	out := make([]DocumentType, len(allDocumentTypes))
	copy(out, allDocumentTypes)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// Canonicalize maps free-form labels (filename hints, caller metadata) to a
// taxonomy tag. Returns Unclassified,false when the label is unknown.
func Canonicalize(input string) (DocumentType, bool) {
	if input == "" {
		return Unclassified, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	// synonyms map
	synonyms := map[string]DocumentType{
		"employment_contract": Contract,
		"work_contract":       Contract,
		"agreement":           Contract,
		"lease":               Contract,
		"bill":                Invoice,
		"faktura":             Invoice,
		"proforma":            Invoice,
		"pay_slip":            Payslip,
		"wage_slip":           Payslip,
		"salary_slip":         Payslip,
		"statement":           BankStatement,
		"judgment":            CourtDecision,
		"ruling":              CourtDecision,
		"verdict":             CourtDecision,
		"poa":                 PowerOfAttorney,
		"proxy":               PowerOfAttorney,
		"diploma":             Certificate,
		"attestation":         Certificate,
	}

	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range allDocumentTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}

	return Unclassified, false
}

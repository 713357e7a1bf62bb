package classify

import (
	"regexp"

	"github.com/dianabombi/student-advisor-sub000/constants"
)

// FieldType is the semantic type of a declared field.
type FieldType string

const (
	FieldText         FieldType = "text"
	FieldDate         FieldType = "date"
	FieldAmount       FieldType = "amount"
	FieldPerson       FieldType = "person"
	FieldOrganization FieldType = "organization"
	FieldAddress      FieldType = "address"
	FieldIdentifier   FieldType = "identifier"
	FieldPeriod       FieldType = "period"
	FieldBoolean      FieldType = "boolean"
)

// FieldSpec declares a field a document type is expected to carry.
// Required-vs-optional is metadata for callers; extraction never enforces it.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool
}

// TypeSpec is one taxonomy entry: a tag, its keyword vocabulary with a
// per-type weight reflecting how discriminative that vocabulary is, and the
// fields the type declares.
type TypeSpec struct {
	Tag      constants.DocumentType
	Weight   float64
	Keywords []string
	Fields   []FieldSpec

	patterns []*regexp.Regexp // compiled whole-word matchers, one per keyword
}

// Taxonomy is the closed set of supported document kinds. Built once at
// process start and read-only afterwards.
type Taxonomy struct {
	types []TypeSpec
	byTag map[constants.DocumentType]*TypeSpec
}

func (t *Taxonomy) Types() []TypeSpec { return t.types }

// Lookup returns the spec for a tag, or nil for unknown tags (including
// the unclassified fallback, which declares no fields).
func (t *Taxonomy) Lookup(tag constants.DocumentType) *TypeSpec {
	return t.byTag[tag]
}

func newTaxonomy(specs []TypeSpec) *Taxonomy {
	tax := &Taxonomy{types: specs, byTag: make(map[constants.DocumentType]*TypeSpec, len(specs))}
	for i := range tax.types {
		ts := &tax.types[i]
		ts.patterns = make([]*regexp.Regexp, len(ts.Keywords))
		for j, kw := range ts.Keywords {
			ts.patterns[j] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
		tax.byTag[ts.Tag] = ts
	}
	return tax
}

// DefaultTaxonomy returns the built-in document-type taxonomy.
func DefaultTaxonomy() *Taxonomy {
	return newTaxonomy([]TypeSpec{
		{
			Tag:    constants.Contract,
			Weight: 1.0,
			Keywords: []string{
				"contract", "agreement", "employer", "employee", "parties",
				"hereinafter", "undersigned", "termination", "employment",
				"obligations", "concluded",
			},
			Fields: []FieldSpec{
				{Name: "contract_number", Type: FieldIdentifier, Required: true},
				{Name: "employer", Type: FieldOrganization, Required: true},
				{Name: "employee", Type: FieldPerson, Required: true},
				{Name: "contract_date", Type: FieldDate, Required: true},
				{Name: "start_date", Type: FieldDate},
				{Name: "end_date", Type: FieldDate},
				{Name: "salary", Type: FieldAmount},
				{Name: "position", Type: FieldText},
			},
		},
		{
			Tag:    constants.Invoice,
			Weight: 1.2,
			Keywords: []string{
				"invoice", "invoice number", "vat", "due date", "subtotal",
				"total amount", "supplier", "customer", "bill to", "iban",
				"variable symbol", "payment terms",
			},
			Fields: []FieldSpec{
				{Name: "invoice_number", Type: FieldIdentifier, Required: true},
				{Name: "invoice_date", Type: FieldDate, Required: true},
				{Name: "total_amount", Type: FieldAmount, Required: true},
				{Name: "due_date", Type: FieldDate},
				{Name: "supplier", Type: FieldOrganization},
				{Name: "customer", Type: FieldOrganization},
				{Name: "vat_amount", Type: FieldAmount},
				{Name: "iban", Type: FieldIdentifier},
				{Name: "variable_symbol", Type: FieldIdentifier},
			},
		},
		{
			Tag:    constants.Receipt,
			Weight: 1.0,
			Keywords: []string{
				"receipt", "cash", "change", "cashier", "thank you",
				"purchase", "till", "card payment",
			},
			Fields: []FieldSpec{
				{Name: "merchant", Type: FieldOrganization, Required: true},
				{Name: "total_amount", Type: FieldAmount, Required: true},
				{Name: "receipt_date", Type: FieldDate, Required: true},
				{Name: "tax_amount", Type: FieldAmount},
				{Name: "payment_method", Type: FieldText},
			},
		},
		{
			Tag:    constants.Payslip,
			Weight: 1.3,
			Keywords: []string{
				"payslip", "net pay", "gross pay", "deductions", "pay period",
				"wage", "social security", "health insurance",
			},
			Fields: []FieldSpec{
				{Name: "employee", Type: FieldPerson, Required: true},
				{Name: "period", Type: FieldPeriod, Required: true},
				{Name: "net_pay", Type: FieldAmount, Required: true},
				{Name: "employer", Type: FieldOrganization},
				{Name: "gross_pay", Type: FieldAmount},
				{Name: "tax_amount", Type: FieldAmount},
			},
		},
		{
			Tag:    constants.BankStatement,
			Weight: 1.1,
			Keywords: []string{
				"statement", "account number", "opening balance",
				"closing balance", "debit", "credit", "transaction",
				"statement period",
			},
			Fields: []FieldSpec{
				{Name: "account_number", Type: FieldIdentifier, Required: true},
				{Name: "period", Type: FieldPeriod, Required: true},
				{Name: "opening_balance", Type: FieldAmount},
				{Name: "closing_balance", Type: FieldAmount},
				{Name: "iban", Type: FieldIdentifier},
			},
		},
		{
			Tag:    constants.CourtDecision,
			Weight: 1.2,
			Keywords: []string{
				"court", "judgment", "ruling", "plaintiff", "defendant",
				"case number", "hereby decides", "pursuant", "appeal",
			},
			Fields: []FieldSpec{
				{Name: "case_number", Type: FieldIdentifier, Required: true},
				{Name: "decision_date", Type: FieldDate, Required: true},
				{Name: "court", Type: FieldOrganization},
				{Name: "parties", Type: FieldText},
			},
		},
		{
			Tag:    constants.PowerOfAttorney,
			Weight: 1.4,
			Keywords: []string{
				"power of attorney", "principal", "attorney-in-fact", "agent",
				"authorize", "on behalf", "revoke",
			},
			Fields: []FieldSpec{
				{Name: "principal", Type: FieldPerson, Required: true},
				{Name: "agent", Type: FieldPerson, Required: true},
				{Name: "signature_date", Type: FieldDate, Required: true},
				{Name: "scope", Type: FieldText},
				{Name: "expiry_date", Type: FieldDate},
			},
		},
		{
			Tag:    constants.Certificate,
			Weight: 1.0,
			Keywords: []string{
				"certificate", "certify", "certified", "awarded", "issued",
				"holder", "hereby confirms",
			},
			Fields: []FieldSpec{
				{Name: "holder", Type: FieldPerson, Required: true},
				{Name: "issue_date", Type: FieldDate, Required: true},
				{Name: "issuer", Type: FieldOrganization},
				{Name: "certificate_number", Type: FieldIdentifier},
			},
		},
	})
}

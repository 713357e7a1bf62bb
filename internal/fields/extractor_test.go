package fields

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dianabombi/student-advisor-sub000/constants"
)

const invoiceText = `INVOICE
Invoice number: 2024-00017
Supplier: Acme Consulting s.r.o.
Customer: Bright Futures Ltd.
VAT: CZ12345678
Invoice date 02.03.2024
Due date: 16.03.2024
Subtotal 1 000,00 EUR
VAT amount 210,00 EUR
Total 1 210,00 EUR
IBAN: CZ65 0800 0000 1920 0014 5399
Variable symbol: 202400017
Contact: billing@acme.example, phone +420 222 333 444`

func TestExtractInvoiceFields(t *testing.T) {
	e := NewExtractor(nil)

	res := e.Extract(invoiceText, constants.Invoice)

	assertFirst(t, res, "invoice_number", "2024-00017")
	assertFirst(t, res, "invoice_date", "02.03.2024")
	assertFirst(t, res, "due_date", "16.03.2024")
	assertFirst(t, res, "variable_symbol", "202400017")
	assertFirst(t, res, "supplier", "Acme Consulting s.r.o")
	assertFirst(t, res, "customer", "Bright Futures Ltd")

	total, ok := first(res, "total_amount")
	if !ok {
		t.Fatalf("total_amount missing: %v", keys(res))
	}
	if total.NumericValue == nil || *total.NumericValue != 1210.0 {
		t.Fatalf("total_amount numeric = %v, want 1210", total.NumericValue)
	}

	if _, ok := first(res, "emails"); !ok {
		t.Fatalf("emails missing")
	}
	if _, ok := first(res, "phones"); !ok {
		t.Fatalf("phones missing")
	}
}

func TestExtractContractFields(t *testing.T) {
	text := `EMPLOYMENT CONTRACT
Contract number: HR/2023/42
Employer: Delta Robotics a.s.
Employee: Jana Novak
Position: Senior Engineer
This agreement is concluded on 01.02.2023 and employment starts 01.03.2023.
The monthly salary is 3 200,00 EUR.`

	e := NewExtractor(nil)
	res := e.Extract(text, constants.Contract)

	assertFirst(t, res, "contract_number", "HR/2023/42")
	assertFirst(t, res, "employer", "Delta Robotics a.s")
	assertFirst(t, res, "employee", "Jana Novak")
	assertFirst(t, res, "contract_date", "01.02.2023")
	assertFirst(t, res, "start_date", "01.03.2023")
	assertFirst(t, res, "position", "Senior Engineer")

	salary, ok := first(res, "salary")
	if !ok || salary.NumericValue == nil || *salary.NumericValue != 3200.0 {
		t.Fatalf("salary = %+v, want 3200", salary)
	}
}

func TestExtractBankStatementFields(t *testing.T) {
	text := `BANK STATEMENT
Account number: 19-2000145399
Statement period: 01.03.2024 - 31.03.2024
Opening balance 1 250,00 EUR
Closing balance 1 874,50 EUR
IBAN: CZ65 0800 0000 1920 0014 5399`

	e := NewExtractor(nil)
	res := e.Extract(text, constants.BankStatement)

	assertFirst(t, res, "account_number", "19-2000145399")
	assertFirst(t, res, "period", "01.03.2024 - 31.03.2024")

	opening, ok := first(res, "opening_balance")
	if !ok || opening.NumericValue == nil || *opening.NumericValue != 1250.0 {
		t.Fatalf("opening_balance = %+v, want 1250", opening)
	}
	closing, ok := first(res, "closing_balance")
	if !ok || closing.NumericValue == nil || *closing.NumericValue != 1874.5 {
		t.Fatalf("closing_balance = %+v, want 1874.5", closing)
	}
	if _, ok := first(res, "iban"); !ok {
		t.Fatalf("iban missing (have %v)", keys(res))
	}
}

func TestExtractCourtDecisionFields(t *testing.T) {
	text := `JUDGMENT
Case number: 12C/2023/456
The Regional Court of Ostrava hereby decides the dispute between the parties.
Plaintiff: Martin Dvorak
Defendant: Omega Logistics s.r.o.
Decided in Ostrava on 14.06.2023.`

	e := NewExtractor(nil)
	res := e.Extract(text, constants.CourtDecision)

	assertFirst(t, res, "case_number", "12C/2023/456")
	assertFirst(t, res, "court", "Regional Court of Ostrava")
	assertFirst(t, res, "decision_date", "14.06.2023")
	if len(res.Fields["parties"]) != 2 {
		t.Fatalf("parties = %+v, want plaintiff and defendant", res.Fields["parties"])
	}
}

func TestExtractNeverFailsOnMissingFields(t *testing.T) {
	e := NewExtractor(nil)

	res := e.Extract("completely unrelated text with no structure", constants.Invoice)
	if res.Metadata.DocumentType != string(constants.Invoice) {
		t.Fatalf("metadata type = %q", res.Metadata.DocumentType)
	}
	if _, ok := res.Fields["invoice_number"]; ok {
		t.Fatalf("invoice_number should be absent, not empty")
	}
}

func TestExtractContextWindowAndOffset(t *testing.T) {
	e := NewExtractor(nil)
	text := strings.Repeat("x", 100) + " 15.04.2024 " + strings.Repeat("y", 100)

	res := e.Extract(text, constants.Unclassified)
	m, ok := first(res, "dates")
	if !ok {
		t.Fatalf("date not found")
	}
	if m.Offset != 101 {
		t.Fatalf("offset = %d, want 101", m.Offset)
	}
	if !strings.Contains(m.Context, "15.04.2024") {
		t.Fatalf("context %q does not contain the match", m.Context)
	}
	if len(m.Context) > len("15.04.2024")+2*contextWindow {
		t.Fatalf("context too wide: %d chars", len(m.Context))
	}
}

func TestExtractMetadataFieldCount(t *testing.T) {
	e := NewExtractor(nil)
	res := e.Extract(invoiceText, constants.Invoice)
	if res.Metadata.FieldCount != len(res.Fields) {
		t.Fatalf("field count = %d, want %d", res.Metadata.FieldCount, len(res.Fields))
	}
	if res.Metadata.ExtractedAt.IsZero() {
		t.Fatalf("extraction timestamp missing")
	}
}

func TestMarshalValidatedRoundTrip(t *testing.T) {
	e := NewExtractor(nil)
	res := e.Extract(invoiceText, constants.Invoice)

	data, err := MarshalValidated(res)
	if err != nil {
		t.Fatalf("MarshalValidated: %v", err)
	}
	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Metadata.DocumentType != string(constants.Invoice) {
		t.Fatalf("document type lost in round trip")
	}
}

func TestValidateJSONRejectsBadPayload(t *testing.T) {
	bad := []byte(`{"fields": {"dates": [{"context": "x", "offset": -1}]}, "metadata": {"document_type": "invoice", "extracted_at": "2024-01-01T00:00:00Z", "field_count": 1}}`)
	if err := ValidateJSON(BuildResultSchema(), bad); err == nil {
		t.Fatalf("expected validation failure for missing value and negative offset")
	}
}

func assertFirst(t *testing.T, res Result, field, want string) {
	t.Helper()
	m, ok := first(res, field)
	if !ok {
		t.Fatalf("field %q missing (have %v)", field, keys(res))
	}
	if m.Value != want {
		t.Fatalf("%s = %q, want %q", field, m.Value, want)
	}
}

func first(res Result, field string) (Match, bool) {
	ms := res.Fields[field]
	if len(ms) == 0 {
		return Match{}, false
	}
	return ms[0], true
}

func keys(res Result) []string {
	out := make([]string, 0, len(res.Fields))
	for k := range res.Fields {
		out = append(out, k)
	}
	return out
}

package fields

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/dianabombi/student-advisor-sub000/constants"
)

// contextWindow is the number of characters of surrounding text captured on
// each side of a match.
const contextWindow = 35

// Match is one extracted value with enough provenance to audit it against
// the source text.
type Match struct {
	Value        string   `json:"value"`
	NumericValue *float64 `json:"numeric_value,omitempty"`
	Context      string   `json:"context"`
	Offset       int      `json:"offset"`
}

// Metadata describes an extraction run.
type Metadata struct {
	DocumentType string    `json:"document_type"`
	ExtractedAt  time.Time `json:"extracted_at"`
	FieldCount   int       `json:"field_count"`
}

// Result maps field names to their matches. Missing fields are simply
// absent; extraction never fails because a declared field was not found.
type Result struct {
	Fields   map[string][]Match `json:"fields"`
	Metadata Metadata           `json:"metadata"`
}

// Extractor pulls typed fields out of classified document text. A generic
// pass collects dates, amounts, parties, identifiers and contact details;
// document types with a dedicated extractor get labelled fields on top.
type Extractor struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, now: time.Now}
}

// Extract runs the generic pass and, when the type has one, the dedicated
// extractor for docType. Works on normalized OCR text.
func (e *Extractor) Extract(text string, docType constants.DocumentType) Result {
	res := Result{Fields: make(map[string][]Match)}

	e.genericPass(text, res.Fields)

	if fn, ok := typedExtractors[docType]; ok {
		fn(e, text, res.Fields)
	}

	res.Metadata = Metadata{
		DocumentType: string(docType),
		ExtractedAt:  e.now().UTC(),
		FieldCount:   len(res.Fields),
	}
	e.logger.Debug("fields extracted", "type", docType, "fields", res.Metadata.FieldCount)
	return res
}

// genericPass collects type-agnostic entities present in any document.
func (e *Extractor) genericPass(text string, out map[string][]Match) {
	for _, re := range datePatterns {
		appendMatches(out, "dates", findAll(text, re, 0))
	}
	for _, re := range amountPatterns {
		appendMatches(out, "amounts", withNumbers(findAll(text, re, 1)))
	}

	for _, loc := range partyPattern.FindAllStringSubmatchIndex(text, -1) {
		role := strings.ToLower(text[loc[2]:loc[4]])
		name := strings.Trim(strings.TrimSpace(text[loc[4]:loc[5]]), ".,;")
		if name == "" {
			continue
		}
		m := Match{Value: name, Context: contextAround(text, loc[0], loc[1]), Offset: loc[4]}
		out["parties"] = append(out["parties"], m)
		out["party_"+role] = append(out["party_"+role], m)
	}

	appendMatches(out, "company_ids", findAll(text, companyIDPattern, 1))
	appendMatches(out, "tax_ids", findAll(text, taxIDPattern, 1))
	appendMatches(out, "ibans", findAll(text, ibanPattern, 0))
	appendMatches(out, "emails", findAll(text, emailPattern, 0))
	appendMatches(out, "phones", findAll(text, phonePattern, 0))
}

// typedExtractors dispatches on the classified type. Types without an entry
// keep just the generic fields.
var typedExtractors = map[constants.DocumentType]func(*Extractor, string, map[string][]Match){
	constants.Contract:      (*Extractor).extractContract,
	constants.Invoice:       (*Extractor).extractInvoice,
	constants.Receipt:       (*Extractor).extractReceipt,
	constants.Payslip:       (*Extractor).extractPayslip,
	constants.BankStatement: (*Extractor).extractBankStatement,
	constants.CourtDecision: (*Extractor).extractCourtDecision,
}

func (e *Extractor) extractContract(text string, out map[string][]Match) {
	setFirst(out, "contract_number", findAll(text, contractNumberPattern, 1))
	setFirst(out, "position", findAll(text, positionPattern, 1))
	promoteParty(out, "employer")
	promoteParty(out, "employee")

	if dates := out["dates"]; len(dates) > 0 {
		out["contract_date"] = dates[:1]
		if len(dates) > 1 {
			out["start_date"] = dates[1:2]
		}
	}
	if m, ok := amountNear(text, "salary"); ok {
		out["salary"] = []Match{m}
	}
}

func (e *Extractor) extractInvoice(text string, out map[string][]Match) {
	setFirst(out, "invoice_number", findAll(text, invoiceNumberPattern, 1))
	setFirst(out, "variable_symbol", findAll(text, variableSymbolPattern, 1))
	setFirst(out, "iban", out["ibans"])
	promoteParty(out, "supplier")
	promoteParty(out, "customer")

	if dates := out["dates"]; len(dates) > 0 {
		out["invoice_date"] = dates[:1]
		if m, ok := dateNear(text, "due date"); ok {
			out["due_date"] = []Match{m}
		} else if len(dates) > 1 {
			out["due_date"] = dates[1:2]
		}
	}
	if m, ok := amountNear(text, "total"); ok {
		out["total_amount"] = []Match{m}
	} else if m, ok := largestAmount(out["amounts"]); ok {
		out["total_amount"] = []Match{m}
	}
	if m, ok := amountNear(text, "vat"); ok {
		out["vat_amount"] = []Match{m}
	}
}

func (e *Extractor) extractReceipt(text string, out map[string][]Match) {
	if m, ok := firstLine(text); ok {
		out["merchant"] = []Match{m}
	}
	setFirst(out, "receipt_date", out["dates"])
	setFirst(out, "payment_method", findAll(text, paymentMethodPattern, 1))

	if m, ok := amountNear(text, "total"); ok {
		out["total_amount"] = []Match{m}
	} else if m, ok := largestAmount(out["amounts"]); ok {
		out["total_amount"] = []Match{m}
	}
	if m, ok := amountNear(text, "tax"); ok {
		out["tax_amount"] = []Match{m}
	}
}

func (e *Extractor) extractBankStatement(text string, out map[string][]Match) {
	setFirst(out, "account_number", findAll(text, accountNumberPattern, 1))
	setFirst(out, "period", findAll(text, periodPattern, 1))
	setFirst(out, "iban", out["ibans"])

	if m, ok := amountNear(text, "opening balance"); ok {
		out["opening_balance"] = []Match{m}
	}
	if m, ok := amountNear(text, "closing balance"); ok {
		out["closing_balance"] = []Match{m}
	}
}

func (e *Extractor) extractCourtDecision(text string, out map[string][]Match) {
	setFirst(out, "case_number", findAll(text, caseNumberPattern, 1))
	setFirst(out, "court", findAll(text, courtPattern, 1))
	setFirst(out, "decision_date", out["dates"])
}

func (e *Extractor) extractPayslip(text string, out map[string][]Match) {
	promoteParty(out, "employee")
	promoteParty(out, "employer")
	setFirst(out, "period", findAll(text, periodPattern, 1))

	if m, ok := amountNear(text, "net pay"); ok {
		out["net_pay"] = []Match{m}
	}
	if m, ok := amountNear(text, "gross pay"); ok {
		out["gross_pay"] = []Match{m}
	}
	if m, ok := amountNear(text, "tax"); ok {
		out["tax_amount"] = []Match{m}
	}
}

// findAll returns every match of re. group 0 means the whole match,
// otherwise the capture group index.
func findAll(text string, re *regexp.Regexp, group int) []Match {
	var matches []Match
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		s, end := loc[2*group], loc[2*group+1]
		if s < 0 {
			continue
		}
		val := strings.TrimSpace(text[s:end])
		if val == "" {
			continue
		}
		matches = append(matches, Match{
			Value:   val,
			Context: contextAround(text, loc[0], loc[1]),
			Offset:  s,
		})
	}
	return matches
}

// withNumbers annotates amount matches with their parsed numeric value,
// dropping matches that do not parse.
func withNumbers(in []Match) []Match {
	out := in[:0]
	for _, m := range in {
		v, err := ParseAmount(m.Value)
		if err != nil {
			continue
		}
		m.NumericValue = &v
		out = append(out, m)
	}
	return out
}

func appendMatches(out map[string][]Match, key string, matches []Match) {
	if len(matches) > 0 {
		out[key] = append(out[key], matches...)
	}
}

func setFirst(out map[string][]Match, key string, matches []Match) {
	if len(matches) > 0 {
		out[key] = matches[:1]
	}
}

// promoteParty lifts a role-anchored party from the generic pass into a
// named field.
func promoteParty(out map[string][]Match, role string) {
	if ms := out["party_"+role]; len(ms) > 0 {
		out[role] = ms[:1]
	}
}

// keywordIndex finds the first whole-word occurrence of keyword, so "total"
// does not hit inside "subtotal".
func keywordIndex(text, keyword string) int {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return -1
	}
	return loc[0]
}

// amountNear finds the first amount within 80 characters after a keyword.
func amountNear(text, keyword string) (Match, bool) {
	idx := keywordIndex(text, keyword)
	if idx < 0 {
		return Match{}, false
	}
	end := idx + len(keyword) + 80
	if end > len(text) {
		end = len(text)
	}
	window := text[idx:end]
	for _, re := range amountPatterns {
		if loc := re.FindStringSubmatchIndex(window); loc != nil {
			s, e2 := idx+loc[2], idx+loc[3]
			v, err := ParseAmount(text[s:e2])
			if err != nil {
				continue
			}
			return Match{
				Value:        strings.TrimSpace(text[s:e2]),
				NumericValue: &v,
				Context:      contextAround(text, idx+loc[0], idx+loc[1]),
				Offset:       s,
			}, true
		}
	}
	return Match{}, false
}

// dateNear finds the first date within 40 characters after a keyword.
func dateNear(text, keyword string) (Match, bool) {
	idx := keywordIndex(text, keyword)
	if idx < 0 {
		return Match{}, false
	}
	end := idx + len(keyword) + 40
	if end > len(text) {
		end = len(text)
	}
	window := text[idx:end]
	for _, re := range datePatterns {
		if loc := re.FindStringIndex(window); loc != nil {
			s, e2 := idx+loc[0], idx+loc[1]
			return Match{
				Value:   text[s:e2],
				Context: contextAround(text, s, e2),
				Offset:  s,
			}, true
		}
	}
	return Match{}, false
}

func largestAmount(amounts []Match) (Match, bool) {
	var best Match
	found := false
	for _, m := range amounts {
		if m.NumericValue == nil {
			continue
		}
		if !found || *m.NumericValue > *best.NumericValue {
			best = m
			found = true
		}
	}
	return best, found
}

// firstLine returns the first non-blank line, the usual position of a
// merchant header on till receipts.
func firstLine(text string) (Match, bool) {
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			start := offset + strings.Index(line, trimmed)
			return Match{
				Value:   trimmed,
				Context: contextAround(text, start, start+len(trimmed)),
				Offset:  start,
			}, true
		}
		offset += len(line) + 1
	}
	return Match{}, false
}

// contextAround clips a window of surrounding text for auditability.
func contextAround(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

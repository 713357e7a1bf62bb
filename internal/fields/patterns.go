package fields

import "regexp"

// Date patterns, tried in order. Each has the full date as group 0.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}[./]\s?\d{1,2}[./]\s?\d{4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}\b`),
}

// Monetary amount patterns. Group 1 captures the numeric part.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:€|\$|£|\bEUR\b|\bUSD\b|\bGBP\b|\bCZK\b)\s*(\d(?:[\d .,]*\d)?)`),
	regexp.MustCompile(`(\d(?:[\d .,]*\d)?)\s*(?:€|\$|£|\bEUR\b|\bUSD\b|\bGBP\b|\bCZK\b|\bKč\b)`),
}

// Role keywords that anchor party-name extraction. Group 1 is the role,
// group 2 the raw name text up to end of line.
var partyPattern = regexp.MustCompile(`(?i)\b(employer|employee|seller|buyer|landlord|tenant|supplier|customer|principal|agent|plaintiff|defendant|issuer|holder)\b\s*[:\-]\s*([^\n]{2,80})`)

// Business identifiers anchored by label keywords. Fixed-length numeric
// codes: 8-digit company registration, 8-10 digit tax numbers.
var (
	companyIDPattern = regexp.MustCompile(`(?i)\b(?:company\s+id|reg(?:istration)?\.?\s+no\.?|business\s+id|i[cč]o)\s*[:.]?\s*(\d{8})\b`)
	taxIDPattern     = regexp.MustCompile(`(?i)\b(?:tax\s+id|di[cč]|vat(?:\s+(?:no\.?|id|number))?)\s*[:.]?\s*((?:[A-Z]{2})?\d{8,10})\b`)
	ibanPattern      = regexp.MustCompile(`\b[A-Z]{2}\d{2}(?:\s?[A-Z0-9]{4}){3,7}\b`)
)

// Contact information.
var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(?:\+|00)\d{1,3}[ .\-]?\d{2,4}[ .\-]?\d{3}[ .\-]?\d{3,4}\b`)
)

// Type-specific label anchors.
var (
	contractNumberPattern = regexp.MustCompile(`(?i)\bcontract\s+(?:no\.?|number)\s*[:.]?\s*([A-Z0-9][A-Z0-9/\-]{1,24})`)
	invoiceNumberPattern  = regexp.MustCompile(`(?i)\binvoice\s+(?:no\.?|number)\s*[:.]?\s*([A-Z0-9][A-Z0-9/\-]{1,24})`)
	variableSymbolPattern = regexp.MustCompile(`(?i)\bvariable\s+symbol\s*[:.]?\s*(\d{1,10})\b`)
	caseNumberPattern     = regexp.MustCompile(`(?i)\bcase\s+(?:no\.?|number)\s*[:.]?\s*([A-Z0-9][A-Z0-9/\-]{1,24})`)
	accountNumberPattern  = regexp.MustCompile(`(?i)\baccount\s+(?:no\.?|number)\s*[:.]?\s*([A-Z0-9][A-Z0-9/\-]{3,34})`)
	periodPattern         = regexp.MustCompile(`(?i)\b(?:pay\s+period|statement\s+period|period)\s*[:.]?\s*([^\n]{3,40})`)
	courtPattern          = regexp.MustCompile(`(?i)\b((?:district|regional|municipal|high|appellate|supreme|constitutional)\s+court(?:\s+(?:of|in)\s+[^\s,.]{2,40})?)`)
	positionPattern       = regexp.MustCompile(`(?i)\b(?:position|job\s+title)\s*[:.]?\s*([^\n]{2,60})`)
	paymentMethodPattern  = regexp.MustCompile(`(?i)\b(cash|card payment|credit card|debit card|bank transfer|wire transfer)\b`)
)

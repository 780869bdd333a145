package invoice

import "time"

// Currency is an ISO 4217 code recognised by the detector
type Currency string

const (
	INR Currency = "INR"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

// UnknownMerchant is stored when no line qualifies as a merchant name
const UnknownMerchant = "UNKNOWN"

// Amount is a monetary value held as whole minor units (cents, paise)
type Amount struct {
	Cents    int64    `json:"cents"`
	Currency Currency `json:"currency"`
	Inferred bool     `json:"inferred,omitempty"` // true when derived instead of read
}

// LineItem is a single product or service row
type LineItem struct {
	Name     string   `json:"name"`
	Quantity int      `json:"qty"`
	Price    *Amount  `json:"price,omitempty"`
	Total    *Amount  `json:"total,omitempty"`
	Currency Currency `json:"currency"`
}

// Field names used in issues
const (
	FieldMerchant = "merchant"
	FieldDate     = "date"
	FieldTotal    = "total"
	FieldItems    = "items"
	FieldRaw      = "raw"
)

// Problems used in issues
const (
	ProblemMissing = "missing"
	ProblemEmpty   = "empty"
	ProblemNoItems = "no_items"
)

// Issue reports a field that could not be reconstructed
type Issue struct {
	Field   string `json:"field"`
	Problem string `json:"problem"`
}

// Mismatch records a declared total that disagrees with the item sum
type Mismatch struct {
	Total    int64 `json:"total"`
	ItemsSum int64 `json:"items_sum"`
}

// DisplayItem is the human formatted projection of a LineItem
type DisplayItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"qty"`
	Price    string `json:"price"`
	Total    string `json:"total"`
}

// Display holds human formatted strings for UI and export consumers.
// None of its strings contain tabs, carriage returns or newlines.
type Display struct {
	Merchant string        `json:"merchant"`
	Date     string        `json:"date"`
	Total    string        `json:"total"`
	Items    []DisplayItem `json:"items"`
}

// Record is the structured invoice reconstructed from raw text
type Record struct {
	ID         string     `json:"id"`
	Merchant   string     `json:"merchant"`
	Date       string     `json:"date,omitempty"` // YYYY-MM-DD
	Total      *Amount    `json:"total,omitempty"`
	Items      []LineItem `json:"items"`
	Raw        string     `json:"raw"`
	Issues     []Issue    `json:"issues"`
	Mismatch   *Mismatch  `json:"mismatch,omitempty"`
	Confidence int        `json:"confidence"`
	CreatedAt  time.Time  `json:"created_at"`
	Display    Display    `json:"display"`
}

// HasIssue reports whether the record carries the given issue
func (r *Record) HasIssue(field, problem string) bool {
	for _, is := range r.Issues {
		if is.Field == field && is.Problem == problem {
			return true
		}
	}
	return false
}

// ItemsSum adds up the line totals of all items
func (r *Record) ItemsSum() int64 {
	return sumItems(r.Items)
}

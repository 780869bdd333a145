package invoice

import (
	"fmt"
	"regexp"
	"strings"
)

const totalTailLines = 20

var (
	totalKeywordRE   = regexp.MustCompile(`(?i)total|grand total|net amount|amount due|balance due|payable|invoice total`)
	currencyMarkRE   = regexp.MustCompile(`₹|\$|£|€|(?i:\bRs\b|\bINR\b)`)
	summaryKeywordRE = regexp.MustCompile(`(?i)\b(sub\s*total|total|tax|gst|cgst|sgst|igst|vat|discount|round(ed)?\s*off|balance|change|cash|payable|amount due)\b`)
)

// TotalStrategy collects candidate total values from a document. An empty
// result hands over to the next strategy.
type TotalStrategy func(doc Document) []int64

// DefaultTotalStrategies favour total-bearing lines near the end, then any
// number in the document.
var DefaultTotalStrategies = []TotalStrategy{
	TailTotalCandidates,
	AnyNumberCandidates,
}

// TailTotalCandidates reads numbers from the last lines that mention a
// total keyword or a currency marker.
func TailTotalCandidates(doc Document) []int64 {
	tail := doc.Lines
	if len(tail) > totalTailLines {
		tail = tail[len(tail)-totalTailLines:]
	}
	var cand []int64
	for _, line := range tail {
		if !totalKeywordRE.MatchString(line) && !currencyMarkRE.MatchString(line) {
			continue
		}
		cand = append(cand, amountsIn(line)...)
	}
	return cand
}

// AnyNumberCandidates reads every non-zero numeric token of the raw text
func AnyNumberCandidates(doc Document) []int64 {
	var cand []int64
	for _, tok := range looseNumericRE.FindAllString(doc.Raw, -1) {
		if v, ok := ParseAmount(tok); ok && v != 0 {
			cand = append(cand, v)
		}
	}
	return cand
}

// TotalSelector chooses the declared total among candidates. Picking the
// largest value is a noise-tolerance heuristic, not a guarantee.
type TotalSelector interface {
	Select(candidates []int64) int64
}

// MaxCandidate picks the largest candidate
type MaxCandidate struct{}

func (MaxCandidate) Select(candidates []int64) int64 {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c > best {
			best = c
		}
	}
	return best
}

// LastCandidate picks the candidate read last
type LastCandidate struct{}

func (LastCandidate) Select(candidates []int64) int64 {
	return candidates[len(candidates)-1]
}

// ParseTotalSelector maps "max" or "last" to a selector
func ParseTotalSelector(name string) (TotalSelector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "max":
		return MaxCandidate{}, nil
	case "last":
		return LastCandidate{}, nil
	}
	return nil, fmt.Errorf("unknown total strategy %q", name)
}

func extractTotal(doc Document, strategies []TotalStrategy, sel TotalSelector, currency Currency) *Amount {
	for _, s := range strategies {
		cand := s(doc)
		if len(cand) == 0 {
			continue
		}
		return &Amount{Cents: sel.Select(cand), Currency: currency}
	}
	return nil
}

// isSummaryRow reports lines like "Subtotal" or "GST 18%" that restate
// amounts instead of listing goods.
func isSummaryRow(line string) bool {
	return summaryKeywordRE.MatchString(line)
}

// Package invoice reconstructs structured invoice records from noisy OCR
// or PDF text. Every field degrades to absent instead of failing; what
// could not be read is reported through issues and the confidence score.
package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator generates unique IDs for records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates time-ordered UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return "bill-" + uuid.Must(uuid.NewV7()).String()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Options tune the heuristics. The zero value matches the defaults.
type Options struct {
	// DefaultCurrency applies when the text carries no currency marker (INR when empty)
	DefaultCurrency Currency
	// TotalSelector picks the declared total among candidates (largest when nil)
	TotalSelector TotalSelector
	// ExcludeSummaryRows keeps subtotal, tax and total lines out of the items
	ExcludeSummaryRows bool

	MerchantStrategies []MerchantStrategy
	DateStrategies     []DateStrategy
	TotalStrategies    []TotalStrategy
}

// ParseOptions builds Options from textual settings such as command line
// flags. Empty values keep the defaults.
func ParseOptions(currency, totalStrategy string, excludeSummary bool) (Options, error) {
	var cur Currency
	if strings.TrimSpace(currency) != "" {
		c, err := ParseCurrency(currency)
		if err != nil {
			return Options{}, err
		}
		cur = c
	}
	sel, err := ParseTotalSelector(totalStrategy)
	if err != nil {
		return Options{}, err
	}
	return Options{
		DefaultCurrency:    cur,
		TotalSelector:      sel,
		ExcludeSummaryRows: excludeSummary,
	}, nil
}

func (o Options) withDefaults() Options {
	if o.DefaultCurrency == "" {
		o.DefaultCurrency = INR
	}
	if o.TotalSelector == nil {
		o.TotalSelector = MaxCandidate{}
	}
	if len(o.MerchantStrategies) == 0 {
		o.MerchantStrategies = DefaultMerchantStrategies
	}
	if len(o.DateStrategies) == 0 {
		o.DateStrategies = DefaultDateStrategies
	}
	if len(o.TotalStrategies) == 0 {
		o.TotalStrategies = DefaultTotalStrategies
	}
	return o
}

// Parser turns raw text into records. It holds no mutable state and is
// safe for concurrent use.
type Parser struct {
	opts        Options
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewParser creates a Parser with default ID generator and time source
func NewParser(opts Options) *Parser {
	return NewParserWithDeps(opts, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewParserWithDeps creates a Parser with custom dependencies for testing
func NewParserWithDeps(opts Options, idGen IDGenerator, timeSrc TimeSource) *Parser {
	return &Parser{
		opts:        opts.withDefaults(),
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var defaultParser = NewParser(Options{})

// Parse reconstructs a record with the default options
func Parse(raw string) *Record {
	return defaultParser.Parse(raw)
}

// Parse reconstructs a record from raw text
func (p *Parser) Parse(raw string) *Record {
	rec := &Record{
		ID:        p.idGenerator.Generate(),
		Raw:       raw,
		Items:     []LineItem{},
		Issues:    []Issue{},
		CreatedAt: p.timeSource.Now(),
	}

	doc := Normalize(raw)
	if len(doc.Lines) == 0 {
		rec.Issues = append(rec.Issues, Issue{Field: FieldRaw, Problem: ProblemEmpty})
		rec.Display = buildDisplay(rec)
		return rec
	}

	currency := DetectCurrency(doc.Raw, p.opts.DefaultCurrency)
	rec.Merchant = extractMerchant(doc, p.opts.MerchantStrategies)
	rec.Date = extractDate(doc, p.opts.DateStrategies)
	rec.Total = extractTotal(doc, p.opts.TotalStrategies, p.opts.TotalSelector, currency)
	rec.Items = extractItems(doc, currency, p.opts.ExcludeSummaryRows)

	reconcile(rec, currency)
	rec.Display = buildDisplay(rec)
	return rec
}

package invoice

import (
	"fmt"
	"regexp"
	"strings"
)

type currencyRule struct {
	re       *regexp.Regexp
	currency Currency
}

// currencyRules are checked in order; the rupee rule comes first so a
// document mixing symbols resolves to INR.
var currencyRules = []currencyRule{
	{regexp.MustCompile(`₹|(?i:\bINR\b|\bRs\b)`), INR},
	{regexp.MustCompile(`\$`), USD},
	{regexp.MustCompile(`€`), EUR},
	{regexp.MustCompile(`£`), GBP},
}

// DetectCurrency returns the currency of the first matching rule, or
// fallback when the text carries no currency marker.
func DetectCurrency(text string, fallback Currency) Currency {
	if c, ok := findCurrency(text); ok {
		return c
	}
	return fallback
}

func findCurrency(text string) (Currency, bool) {
	for _, rule := range currencyRules {
		if rule.re.MatchString(text) {
			return rule.currency, true
		}
	}
	return "", false
}

// ParseCurrency validates a currency code such as "usd"
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case INR, USD, EUR, GBP:
		return c, nil
	}
	return "", fmt.Errorf("unsupported currency %q", s)
}

// Symbol is the prefix used when formatting amounts in this currency
func (c Currency) Symbol() string {
	switch c {
	case INR:
		return "₹"
	case USD:
		return "$"
	}
	return string(c) + " "
}

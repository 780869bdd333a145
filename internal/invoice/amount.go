package invoice

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	nonNumericRE   = regexp.MustCompile(`[^\d,.\-]`)
	firstNumberRE  = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	numberTokenRE  = regexp.MustCompile(`-?[\d.,]+`)
	looseNumericRE = regexp.MustCompile(`-?[\d,.]{2,}`)
)

// ParseAmount reads a numeric token into minor units. The decimal
// separator is resolved from the token: when both ',' and '.' occur the
// later one is the decimal point, a lone ',' is a thousands mark.
// ok is false when no digits can be recovered.
func ParseAmount(token string) (cents int64, ok bool) {
	t := nonNumericRE.ReplaceAllString(token, "")
	if t == "" {
		return 0, false
	}

	lastDot := strings.LastIndex(t, ".")
	lastComma := strings.LastIndex(t, ",")
	switch {
	case lastDot > -1 && lastComma > -1 && lastDot > lastComma:
		t = strings.ReplaceAll(t, ",", "")
	case lastDot > -1 && lastComma > -1:
		t = strings.ReplaceAll(t, ".", "")
		t = strings.Replace(t, ",", ".", 1)
	default:
		t = strings.ReplaceAll(t, ",", "")
	}

	m := firstNumberRE.FindString(t)
	if m == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return 0, false
	}
	v := d.Shift(2).Round(0)
	if v.Abs().GreaterThanOrEqual(amountLimit) {
		return 0, false
	}
	return v.IntPart(), true
}

// amountLimit bounds parsed values. Longer digit runs are account or
// phone numbers, not money.
var amountLimit = decimal.New(1, 16)

// amountsIn parses every number-looking token of s, skipping tokens
// without digits.
func amountsIn(s string) []int64 {
	var out []int64
	for _, tok := range numberTokenRE.FindAllString(s, -1) {
		if v, ok := ParseAmount(tok); ok {
			out = append(out, v)
		}
	}
	return out
}

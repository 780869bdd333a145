package invoice

import (
	"strconv"
	"strings"
)

// Placeholder renders absent values
const Placeholder = "-"

// FormatCents renders minor units as e.g. "-₹1,234.56" or "EUR 12.00"
func FormatCents(cents int64, c Currency) string {
	return formatWithPrefix(cents, c.Symbol())
}

// FormatCode renders minor units with the ISO code, e.g. "INR 1,234.56",
// for outputs limited to Latin-1 glyphs.
func FormatCode(cents int64, c Currency) string {
	return formatWithPrefix(cents, string(c)+" ")
}

func formatWithPrefix(cents int64, prefix string) string {
	var b strings.Builder
	u := uint64(cents)
	if cents < 0 {
		b.WriteByte('-')
		u = uint64(-cents)
	}
	b.WriteString(prefix)
	b.WriteString(groupThousands(strconv.FormatUint(u/100, 10)))
	b.WriteByte('.')
	frac := u % 100
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatUint(frac, 10))
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Format renders an amount, or the placeholder when it is absent
func (a *Amount) Format() string {
	if a == nil {
		return Placeholder
	}
	return FormatCents(a.Cents, a.Currency)
}

// itemAmount renders item prices and totals; zero counts as absent
func itemAmount(a *Amount) string {
	if !hasValue(a) {
		return Placeholder
	}
	return a.Format()
}

var displayUnsafe = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func displayText(s string) string {
	s = strings.TrimSpace(displayUnsafe.Replace(s))
	if s == "" {
		return Placeholder
	}
	return s
}

func buildDisplay(rec *Record) Display {
	d := Display{
		Merchant: displayText(rec.Merchant),
		Date:     displayText(rec.Date),
		Total:    rec.Total.Format(),
		Items:    make([]DisplayItem, 0, len(rec.Items)),
	}
	for _, it := range rec.Items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		d.Items = append(d.Items, DisplayItem{
			Name:     displayText(it.Name),
			Quantity: qty,
			Price:    itemAmount(it.Price),
			Total:    itemAmount(it.Total),
		})
	}
	return d
}

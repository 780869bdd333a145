package invoice

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxItemName   = 120
	maxQuantity   = 500
	priceBound    = 100000000
	pairTolerance = 1.05
)

var (
	itemNumberRE = regexp.MustCompile(`[₹$€£]?-?\d{1,3}[0-9,]*(?:\.\d{1,2})?`)
	trailingDash = regexp.MustCompile(`-+$`)
)

// mergeLines joins wrapped rows: a line without digits followed by a line
// with digits, then lines ending in a hyphen with their successor.
func mergeLines(lines []string) []string {
	merged := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if i+1 < len(lines) && !digitRE.MatchString(l) && digitRE.MatchString(lines[i+1]) {
			merged = append(merged, strings.TrimSpace(l+" "+lines[i+1]))
			i++
			continue
		}
		merged = append(merged, l)
	}

	final := make([]string, 0, len(merged))
	for i := 0; i < len(merged); i++ {
		cur := merged[i]
		if i < len(merged)-1 && strings.HasSuffix(strings.TrimSpace(cur), "-") {
			cur = strings.TrimSpace(trailingDash.ReplaceAllString(strings.TrimSpace(cur), "") + " " + merged[i+1])
			i++
		}
		final = append(final, cur)
	}
	return final
}

// itemName removes amounts from a row and caps its length
func itemName(line string) string {
	name := itemNumberRE.ReplaceAllString(line, " ")
	name = strings.TrimSpace(merchantSpacesRE.ReplaceAllString(name, " "))
	if utf8.RuneCountInString(name) > maxItemName {
		name = strings.TrimSpace(string([]rune(name)[:maxItemName]))
	}
	if name == "" {
		return "-"
	}
	return name
}

// wholeUnits reports whether v minor units is a clean count in [1,500]
func wholeUnits(v int64) (int, bool) {
	if v%100 != 0 {
		return 0, false
	}
	u := v / 100
	if u < 1 || u > maxQuantity {
		return 0, false
	}
	return int(u), true
}

// ratioQuantity returns round(total/price) when it is a plausible count
func ratioQuantity(total, price int64) (int, bool) {
	if price == 0 {
		return 0, false
	}
	q := math.Round(float64(total) / float64(price))
	if q < 1 || q > maxQuantity {
		return 0, false
	}
	return int(q), true
}

type row struct {
	price, total *int64
	qty          int
}

func ptr(v int64) *int64 { return &v }

// assignRoles decides which numbers of a row are quantity, price and total
func assignRoles(nums []int64) (row, bool) {
	var r row
	switch n := len(nums); {
	case n >= 3:
		total := nums[n-1]
		r.total = ptr(total)
		bound := max(priceBound, abs(total*2))
		for i := n - 2; i >= 0; i-- {
			if abs(nums[i]) < bound {
				r.price = ptr(nums[i])
				break
			}
		}
		for _, v := range nums {
			if q, ok := wholeUnits(v); ok {
				r.qty = q
				break
			}
		}
		if r.qty == 0 && r.price != nil && *r.price != 0 && total != 0 {
			if q, ok := ratioQuantity(total, *r.price); ok {
				r.qty = q
			}
		}
	case n == 2:
		a, b := nums[0], nums[1]
		switch {
		case float64(b) > float64(a)*pairTolerance:
			r.price, r.total = ptr(a), ptr(b)
			if q, ok := ratioQuantity(b, a); ok {
				r.qty = q
			}
		default:
			if q, ok := wholeUnits(a); ok {
				r.qty = q
				r.price, r.total = ptr(b), ptr(b*int64(q))
			} else {
				r.price, r.total = ptr(a), ptr(b)
			}
		}
	case n == 1:
		r.total = ptr(nums[0])
	default:
		return r, false
	}
	return r, true
}

// fill derives whatever the row did not state
func (r *row) fill() {
	hasPrice := r.price != nil && *r.price != 0
	hasTotal := r.total != nil && *r.total != 0
	if hasPrice && !hasTotal {
		q := r.qty
		if q == 0 {
			q = 1
		}
		r.total = ptr(*r.price * int64(q))
		hasTotal = true
	}
	if hasTotal && !hasPrice && r.qty != 0 {
		r.price = ptr(*r.total / int64(r.qty))
		hasPrice = *r.price != 0
	}
	if r.qty == 0 {
		r.qty = 1
		if hasPrice && hasTotal {
			q := int(math.Round(float64(*r.total) / float64(*r.price)))
			r.qty = max(1, q)
		}
	}
}

// mapRow turns a candidate line into an item; ok is false when the line
// holds no numbers.
func mapRow(line string, docCurrency Currency) (LineItem, bool) {
	r, ok := assignRoles(amountsIn(line))
	if !ok {
		return LineItem{}, false
	}
	r.fill()

	currency := DetectCurrency(line, docCurrency)
	item := LineItem{
		Name:     itemName(line),
		Quantity: r.qty,
		Currency: currency,
	}
	if r.price != nil {
		item.Price = &Amount{Cents: *r.price, Currency: currency}
	}
	if r.total != nil {
		item.Total = &Amount{Cents: *r.total, Currency: currency}
	}
	return item, true
}

func itemKey(it LineItem) string {
	key := it.Name + "|"
	if it.Total != nil && it.Total.Cents != 0 {
		key += strconv.FormatInt(it.Total.Cents, 10)
	}
	key += "|"
	if it.Price != nil && it.Price.Cents != 0 {
		key += strconv.FormatInt(it.Price.Cents, 10)
	}
	return key
}

func hasValue(a *Amount) bool {
	return a != nil && a.Cents != 0
}

// extractItems segments rows and maps them to deduplicated items
func extractItems(doc Document, docCurrency Currency, skipSummary bool) []LineItem {
	seen := make(map[string]bool)
	items := []LineItem{}
	for _, line := range mergeLines(doc.Lines) {
		if !letterRE.MatchString(line) || !digitRE.MatchString(line) {
			continue
		}
		if skipSummary && isSummaryRow(line) {
			continue
		}
		it, ok := mapRow(line, docCurrency)
		if !ok {
			continue
		}
		key := itemKey(it)
		if seen[key] {
			continue
		}
		seen[key] = true
		if !hasValue(it.Total) && !hasValue(it.Price) {
			continue
		}
		items = append(items, it)
	}
	return items
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

package invoice

import "math"

const (
	mismatchFloor   = 200
	mismatchPercent = 5

	baseScore       = 10
	merchantScore   = 20
	dateScore       = 15
	totalScore      = 30
	itemScore       = 5
	maxItemsScore   = 25
	mismatchPenalty = 20
	mismatchMinimum = 30
)

// itemsSumLimit clamps the item sum; with each amount below amountLimit
// the running sum and the total difference never overflow int64.
const itemsSumLimit = int64(1) << 62

func sumItems(items []LineItem) int64 {
	var sum int64
	for _, it := range items {
		if it.Total != nil {
			sum = min(itemsSumLimit, max(-itemsSumLimit, sum+it.Total.Cents))
		}
	}
	return sum
}

// reconcile cross-checks the declared total against the items and fills
// in issues, mismatch and confidence.
func reconcile(rec *Record, docCurrency Currency) {
	sum := sumItems(rec.Items)
	if rec.Total == nil && sum > 0 {
		rec.Total = &Amount{Cents: sum, Currency: docCurrency, Inferred: true}
	}

	if rec.Total != nil && sum > 0 {
		tolerance := max(mismatchFloor, int64(math.Round(float64(rec.Total.Cents)*mismatchPercent/100)))
		if abs(rec.Total.Cents-sum) > tolerance {
			rec.Mismatch = &Mismatch{Total: rec.Total.Cents, ItemsSum: sum}
		}
	}

	rec.Issues = issuesFor(rec)
	rec.Confidence = confidence(rec)
}

func issuesFor(rec *Record) []Issue {
	issues := []Issue{}
	if rec.Merchant == "" || rec.Merchant == UnknownMerchant {
		issues = append(issues, Issue{Field: FieldMerchant, Problem: ProblemMissing})
	}
	if rec.Date == "" {
		issues = append(issues, Issue{Field: FieldDate, Problem: ProblemMissing})
	}
	if rec.Total == nil {
		issues = append(issues, Issue{Field: FieldTotal, Problem: ProblemMissing})
	}
	if len(rec.Items) == 0 {
		issues = append(issues, Issue{Field: FieldItems, Problem: ProblemNoItems})
	}
	return issues
}

func confidence(rec *Record) int {
	score := baseScore
	if rec.Merchant != "" && rec.Merchant != UnknownMerchant {
		score += merchantScore
	}
	if rec.Date != "" {
		score += dateScore
	}
	if rec.Total != nil {
		score += totalScore
	}
	score += min(maxItemsScore, itemScore*len(rec.Items))
	if rec.Mismatch != nil {
		score = max(mismatchMinimum, score-mismatchPenalty)
	}
	return min(100, max(0, score))
}

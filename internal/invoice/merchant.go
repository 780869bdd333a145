package invoice

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const merchantHeaderLines = 6

var (
	adminKeywordRE   = regexp.MustCompile(`(?i)\b(invoice|bill|receipt|gst|tax|phone|tel|address)`)
	noLettersRE      = regexp.MustCompile(`^[0-9\W]+$`)
	merchantStripRE  = regexp.MustCompile(`[^A-Za-z0-9 &\-.,/()]`)
	letterRE         = regexp.MustCompile(`[A-Za-z]`)
	digitRE          = regexp.MustCompile(`[0-9]`)
	merchantSpacesRE = regexp.MustCompile(`\s{2,}`)
)

// MerchantStrategy proposes a merchant name from a document
type MerchantStrategy func(doc Document) (string, bool)

// DefaultMerchantStrategies looks at the header first, then at the whole
// document.
var DefaultMerchantStrategies = []MerchantStrategy{
	HeaderMerchant,
	LongestLineMerchant,
}

// HeaderMerchant accepts the first of the top lines that is not an
// administrative label and carries letters.
func HeaderMerchant(doc Document) (string, bool) {
	for i, line := range doc.Lines {
		if i >= merchantHeaderLines {
			break
		}
		l := strings.TrimSpace(strings.ReplaceAll(line, "|", " "))
		if l == "" || adminKeywordRE.MatchString(l) || noLettersRE.MatchString(l) {
			continue
		}
		name := merchantStripRE.ReplaceAllString(l, "")
		name = strings.TrimSpace(merchantSpacesRE.ReplaceAllString(name, " "))
		// a line that strips to nothing hands over to the next strategy
		return name, name != ""
	}
	return "", false
}

// LongestLineMerchant picks the longest non-administrative line with a letter
func LongestLineMerchant(doc Document) (string, bool) {
	best := ""
	for _, line := range doc.Lines {
		if utf8.RuneCountInString(line) <= utf8.RuneCountInString(best) {
			continue
		}
		if !letterRE.MatchString(line) || adminKeywordRE.MatchString(line) {
			continue
		}
		best = line
	}
	return best, best != ""
}

func extractMerchant(doc Document, strategies []MerchantStrategy) string {
	for _, s := range strategies {
		if name, ok := s(doc); ok {
			return name
		}
	}
	return UnknownMerchant
}

package invoice

import "regexp"

var dateCandidateRE = regexp.MustCompile(
	`\d{1,2}[/\-.\s]\d{1,2}[/\-.\s]\d{2,4}|\d{4}[/\-.\s]\d{1,2}[/\-.\s]\d{1,2}|[A-Za-z]{3,9}\s+\d{1,2},\s*\d{4}`,
)

// DateStrategy proposes an ISO date from a document
type DateStrategy func(doc Document) (string, bool)

// DefaultDateStrategies scan date-shaped substrings first, then whole lines
var DefaultDateStrategies = []DateStrategy{
	CandidateDate,
	LineDate,
}

// CandidateDate parses date-shaped substrings of the raw text in order
func CandidateDate(doc Document) (string, bool) {
	for _, c := range dateCandidateRE.FindAllString(doc.Raw, -1) {
		if d, ok := ParseDate(c); ok {
			return d, true
		}
	}
	return "", false
}

// LineDate tries every normalized line in order
func LineDate(doc Document) (string, bool) {
	for _, line := range doc.Lines {
		if d, ok := ParseDate(line); ok {
			return d, true
		}
	}
	return "", false
}

func extractDate(doc Document, strategies []DateStrategy) string {
	for _, s := range strategies {
		if d, ok := s(doc); ok {
			return d
		}
	}
	return ""
}

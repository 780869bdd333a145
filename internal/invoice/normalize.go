package invoice

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	spaceRunRE = regexp.MustCompile(`[ \x{00A0}]{2,}`)
	controlRE  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

	// marksRE drops symbols NFKC would spell out as letters
	marksRE = regexp.MustCompile(`[™℠®©]`)
)

// Document is raw text plus its ordered, trimmed, non-empty lines
type Document struct {
	Raw   string
	Lines []string
}

// normalizeText drops trademark marks, folds compatibility forms such as
// fullwidth digits and ligatures, strips carriage returns and control
// characters, turns tabs into spaces and collapses runs of spaces.
func normalizeText(s string) string {
	s = norm.NFKC.String(marksRE.ReplaceAllString(s, ""))
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")
	s = controlRE.ReplaceAllString(s, "")
	s = spaceRunRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Normalize splits raw text into trimmed non-empty lines
func Normalize(raw string) Document {
	doc := Document{Raw: raw, Lines: []string{}}
	text := normalizeText(raw)
	if text == "" {
		return doc
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		doc.Lines = append(doc.Lines, line)
	}
	return doc
}

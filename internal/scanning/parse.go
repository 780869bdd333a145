package scanning

import (
	"strings"
	"unicode"
)

// cleanTranscript strips the markdown fences and chatter that LLMs wrap
// around a transcription.
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		// drop the fence line including any language tag
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// alphanumerics counts letters and digits, the measure used to pick the
// better of two OCR passes.
func alphanumerics(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

package scanning

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

const (
	// maxTextLayerPages bounds how much of a long PDF is read
	maxTextLayerPages = 20
	// minTextLayerChars is the shortest text layer worth parsing
	minTextLayerChars = 20
	// minTextQuality is the share of readable characters a text layer needs
	minTextQuality = 0.6
)

// TextLayer reads the embedded text of digital PDFs and hands everything
// else, including scanned PDFs, to an OCR scanner.
type TextLayer struct {
	ocr Scanner
}

// NewTextLayer wraps ocr, which may be nil when only digital PDFs are expected
func NewTextLayer(ocr Scanner) *TextLayer {
	return &TextLayer{ocr: ocr}
}

// ScanText returns the PDF text layer when it is readable, otherwise the
// OCR transcript.
func (t *TextLayer) ScanText(data []byte, contentType string) (string, error) {
	if isPDF(data, contentType) {
		pages, err := extractTextLayer(data)
		switch {
		case err != nil:
			slog.Info("PDF text layer unavailable, falling back to OCR", "error", err)
		case isReadableText(pages):
			return strings.Join(pages, "\n"), nil
		default:
			slog.Info("PDF text layer unreadable, falling back to OCR", "pages", len(pages))
		}
	}

	if t.ocr == nil {
		return "", fmt.Errorf("no OCR backend configured for %s: %w", normalizeMimeType(contentType), ErrNoText)
	}
	return t.ocr.ScanText(data, contentType)
}

// Close closes the wrapped scanner
func (t *TextLayer) Close() error {
	if t.ocr == nil {
		return nil
	}
	return t.ocr.Close()
}

func isPDF(data []byte, contentType string) bool {
	return normalizeMimeType(contentType) == "application/pdf" || bytes.HasPrefix(data, []byte("%PDF-"))
}

// extractTextLayer tries row-ordered extraction first, then MuPDF
func extractTextLayer(data []byte) ([]string, error) {
	pages, rowErr := extractByRow(data)
	if rowErr == nil && isReadableText(pages) {
		return pages, nil
	}
	pages, fitzErr := extractWithFitz(data)
	if fitzErr != nil {
		if rowErr != nil {
			return nil, fmt.Errorf("reading PDF text: %w", rowErr)
		}
		return nil, fmt.Errorf("reading PDF text: %w", fitzErr)
	}
	return pages, nil
}

func extractByRow(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	n := min(r.NumPage(), maxTextLayerPages)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", i, err)
		}
		var b strings.Builder
		for _, row := range rows {
			for j, word := range row.Content {
				if j > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(word.S)
			}
			b.WriteByte('\n')
		}
		pages = append(pages, b.String())
	}
	return pages, nil
}

func extractWithFitz(data []byte) ([]string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	n := min(doc.NumPage(), maxTextLayerPages)
	pages := make([]string, 0, n)
	for i := 0; i < n; i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", i+1, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// textQuality returns the share of characters that are plain letters,
// digits, whitespace, currency symbols or common punctuation. Garbage from
// identity-encoded fonts scores low.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsPunct(r)) {
				readable++
				continue
			}
			switch r {
			case '₹', '€', '£', '$', '+', '=':
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// isReadableText requires enough non-space text, a digit somewhere and a
// high readable share.
func isReadableText(pages []string) bool {
	chars := 0
	hasDigit := false
	for _, page := range pages {
		for _, r := range page {
			if !unicode.IsSpace(r) {
				chars++
			}
			if unicode.IsDigit(r) {
				hasDigit = true
			}
		}
	}
	if chars < minTextLayerChars || !hasDigit {
		return false
	}
	return textQuality(pages) > minTextQuality
}

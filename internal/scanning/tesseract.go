package scanning

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// OCRMode selects how many Tesseract passes run over an image
type OCRMode string

const (
	// OCRQuick runs a single pass treating the image as one text block
	OCRQuick OCRMode = "quick"
	// OCREnhanced runs automatic page segmentation preserving spacing
	OCREnhanced OCRMode = "enhanced"
	// OCRDual runs both passes and keeps the richer transcript
	OCRDual OCRMode = "dual"
)

// ParseOCRMode validates a mode name, defaulting to quick
func ParseOCRMode(s string) (OCRMode, error) {
	switch m := OCRMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return OCRQuick, nil
	case OCRQuick, OCREnhanced, OCRDual:
		return m, nil
	}
	return "", fmt.Errorf("unknown OCR mode %q", s)
}

// Tesseract implements the Scanner interface using a local Tesseract install
type Tesseract struct {
	mode      OCRMode
	languages []string
}

// NewTesseract creates a new Tesseract Scanner instance. languages is a
// "+" separated list such as "eng+hin".
func NewTesseract(mode OCRMode, languages string) (*Tesseract, error) {
	if _, err := ParseOCRMode(string(mode)); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = OCRQuick
	}
	if languages == "" {
		languages = "eng"
	}
	return &Tesseract{
		mode:      mode,
		languages: strings.Split(languages, "+"),
	}, nil
}

// ScanText recognises the text of an image or the first page of a PDF
func (t *Tesseract) ScanText(data []byte, contentType string) (string, error) {
	img, err := loadImage(data, contentType)
	if err != nil {
		return "", err
	}
	pngData, err := encodePNG(preprocessForOCR(img))
	if err != nil {
		return "", err
	}

	switch t.mode {
	case OCREnhanced:
		return t.recognize(pngData, OCREnhanced)
	case OCRDual:
		quick, err := t.recognize(pngData, OCRQuick)
		if err != nil {
			return "", err
		}
		enhanced, err := t.recognize(pngData, OCREnhanced)
		if err != nil {
			slog.Warn("Enhanced OCR pass failed, keeping quick pass", "error", err)
			return quick, nil
		}
		if alphanumerics(enhanced) > alphanumerics(quick) {
			return enhanced, nil
		}
		return quick, nil
	default:
		return t.recognize(pngData, OCRQuick)
	}
}

// recognize runs one pass. gosseract clients are not safe for concurrent
// use, so each pass gets its own.
func (t *Tesseract) recognize(pngData []byte, pass OCRMode) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("setting OCR language: %w", err)
	}
	if pass == OCREnhanced {
		if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
			return "", fmt.Errorf("setting page segmentation: %w", err)
		}
		if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
			return "", fmt.Errorf("setting OCR variable: %w", err)
		}
	} else {
		if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
			return "", fmt.Errorf("setting page segmentation: %w", err)
		}
	}
	if err := client.SetImageFromBytes(pngData); err != nil {
		return "", fmt.Errorf("loading image into OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("running %s OCR: %w", pass, err)
	}
	return text, nil
}

// Close is a no-op; clients are released after every pass
func (t *Tesseract) Close() error {
	return nil
}

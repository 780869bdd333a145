package scanning

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Backend names accepted by New
const (
	BackendTesseract = "tesseract"
	BackendGemini    = "gemini"
	BackendOllama    = "ollama"
	BackendNone      = "none"
)

// Config selects and configures an OCR backend
type Config struct {
	Backend string

	OCRMode      OCRMode
	OCRLanguages string

	GeminiKey   string
	GeminiModel string

	OllamaURL   string
	OllamaModel string
}

// New builds the configured OCR backend wrapped in a TextLayer, so digital
// PDFs never reach OCR. The "none" backend reads PDF text layers only.
func New(cfg Config) (*TextLayer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendTesseract, "":
		slog.Info("Initializing Tesseract scanner...", "mode", cfg.OCRMode, "languages", cfg.OCRLanguages)
		ocr, err := NewTesseract(cfg.OCRMode, cfg.OCRLanguages)
		if err != nil {
			return nil, fmt.Errorf("initializing tesseract: %w", err)
		}
		return NewTextLayer(ocr), nil
	case BackendGemini:
		apiKey := cfg.GeminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini scanner...", "model", cfg.GeminiModel)
		ocr, err := NewGemini(apiKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini: %w", err)
		}
		return NewTextLayer(ocr), nil
	case BackendOllama:
		slog.Info("Initializing Ollama scanner...", "url", cfg.OllamaURL, "model", cfg.OllamaModel)
		ocr, err := NewOllama(cfg.OllamaURL, cfg.OllamaModel)
		if err != nil {
			return nil, fmt.Errorf("initializing ollama: %w", err)
		}
		return NewTextLayer(ocr), nil
	case BackendNone:
		slog.Info("No OCR backend configured, only PDF text layers will be read")
		return NewTextLayer(nil), nil
	}
	return nil, fmt.Errorf("unknown scanner %q (valid: tesseract, gemini, ollama, none)", cfg.Backend)
}

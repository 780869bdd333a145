package main

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/bill-reader/internal/export"
	"github.com/zombor/bill-reader/internal/invoice"
	"github.com/zombor/bill-reader/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// the CLI writes its result to stdout, so logs go to stderr
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	fs := ff.NewFlagSet("bill-parse")
	var (
		format         = fs.StringLong("format", string(export.FormatJSON), "Output format: json, txt, tsv, xlsx, pdf, tally or zip")
		output         = fs.StringLong("output", "", "Output file (default stdout)")
		scannerType    = fs.StringLong("scanner", "tesseract", "Scanner type for images and scanned PDFs: 'tesseract', 'gemini', 'ollama' or 'none'")
		ocrMode        = fs.StringLong("ocr-mode", "quick", "Tesseract mode: 'quick', 'enhanced' or 'dual'")
		ocrLang        = fs.StringLong("ocr-lang", "eng", "Tesseract languages, '+' separated (e.g., eng+hin)")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llava", "Ollama model name")
		currency       = fs.StringLong("default-currency", "INR", "Currency assumed when a bill shows none: INR, USD, EUR or GBP")
		totalStrategy  = fs.StringLong("total-strategy", "max", "Total candidate selection: 'max' or 'last'")
		excludeSummary = fs.BoolLong("exclude-summary-rows", "Keep subtotal, tax and total lines out of the items")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILL_PARSE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs, "bill-parse [FLAGS] [FILE]"))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if _, err := export.ParseFormat(*format); err != nil {
		fail("invalid format", err)
	}
	opts, err := invoice.ParseOptions(*currency, *totalStrategy, *excludeSummary)
	if err != nil {
		fail("invalid parser options", err)
	}

	var (
		path string
		data []byte
	)
	switch args := fs.GetArgs(); len(args) {
	case 0:
		data, err = io.ReadAll(os.Stdin)
	case 1:
		path = args[0]
		data, err = os.ReadFile(path)
	default:
		fail("too many arguments", fmt.Errorf("expected at most one file, got %d", len(args)))
	}
	if err != nil {
		fail("reading input", err)
	}

	raw := string(data)
	if path != "" && !isPlainText(path) {
		mode, err := scanning.ParseOCRMode(*ocrMode)
		if err != nil {
			fail("invalid OCR mode", err)
		}
		scanner, err := scanning.New(scanning.Config{
			Backend:      *scannerType,
			OCRMode:      mode,
			OCRLanguages: *ocrLang,
			GeminiKey:    *geminiKey,
			GeminiModel:  *geminiModel,
			OllamaURL:    *ollamaURL,
			OllamaModel:  *ollamaModel,
		})
		if err != nil {
			fail("initializing scanner", err)
		}
		raw, err = scanner.ScanText(data, contentTypeOf(path, data))
		scanner.Close()
		if err != nil {
			fail("scanning bill", err)
		}
	}

	rec := invoice.NewParser(opts).Parse(raw)
	res, err := export.Export(*format, rec)
	if err != nil {
		fail("exporting bill", err)
	}

	if *output == "" {
		if _, err := os.Stdout.Write(res.Data); err != nil {
			fail("writing output", err)
		}
		return
	}
	if err := os.WriteFile(*output, res.Data, 0644); err != nil {
		fail("writing output", err)
	}
	slog.Info("Wrote export", "file", *output, "format", *format)
}

func fail(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

// isPlainText reports inputs that already are transcripts
func isPlainText(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", ".ocr":
		return true
	}
	return false
}

// contentTypeOf guesses a MIME type from the extension, then the content
func contentTypeOf(path string, data []byte) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".heic", ".heif":
		return "image/" + ext[1:]
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	return http.DetectContentType(data)
}

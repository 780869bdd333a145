package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/bill-reader/internal/bill"
	"github.com/zombor/bill-reader/internal/invoice"
	"github.com/zombor/bill-reader/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("bill-reader")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		dbPath         = fs.StringLong("db", "bill-reader.db", "Database file path")
		storagePath    = fs.StringLong("storage", "./bills", "Storage directory path")
		scannerType    = fs.StringLong("scanner", "tesseract", "Scanner type: 'tesseract', 'gemini', 'ollama' or 'none'")
		ocrMode        = fs.StringLong("ocr-mode", "quick", "Tesseract mode: 'quick', 'enhanced' or 'dual'")
		ocrLang        = fs.StringLong("ocr-lang", "eng", "Tesseract languages, '+' separated (e.g., eng+hin)")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		currency       = fs.StringLong("default-currency", "INR", "Currency assumed when a bill shows none: INR, USD, EUR or GBP")
		totalStrategy  = fs.StringLong("total-strategy", "max", "Total candidate selection: 'max' or 'last'")
		excludeSummary = fs.BoolLong("exclude-summary-rows", "Keep subtotal, tax and total lines out of the items")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILL_READER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	opts, err := invoice.ParseOptions(*currency, *totalStrategy, *excludeSummary)
	if err != nil {
		slog.Error("Invalid parser options", "error", err)
		os.Exit(1)
	}

	mode, err := scanning.ParseOCRMode(*ocrMode)
	if err != nil {
		slog.Error("Invalid OCR mode", "error", err)
		os.Exit(1)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := bill.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

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
		slog.Error("Failed to initialize scanner", "type", *scannerType, "error", err)
		os.Exit(1)
	}
	defer scanner.Close()

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := bill.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	billService := bill.NewService(db, scanner, store, opts)

	basicAuth := bill.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := bill.NewServer(billService, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

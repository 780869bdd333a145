package bill

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zombor/bill-reader/internal/export"
	"github.com/zombor/bill-reader/internal/invoice"
	"github.com/zombor/bill-reader/internal/scanning"
)

// Service handles bill operations
type Service struct {
	db      DB
	scanner scanning.Scanner
	storage Storage
	parser  *invoice.Parser
}

// NewService creates a new Service parsing with the given options. scanner
// may be nil, in which case only raw text can be submitted.
func NewService(db DB, scanner scanning.Scanner, storage Storage, opts invoice.Options) *Service {
	return NewServiceWithDeps(db, scanner, storage, invoice.NewParser(opts))
}

// NewServiceWithDeps creates a new Service with a custom parser for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, parser *invoice.Parser) *Service {
	return &Service{
		db:      db,
		scanner: scanner,
		storage: storage,
		parser:  parser,
	}
}

var (
	filenameUnsafeRE = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	filenameSpaceRE  = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filenameUnsafeRE.ReplaceAllString(filepath.Ext(filename), ""))
	if ext != "" {
		ext = "." + ext
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = filenameUnsafeRE.ReplaceAllString(base, "")
	base = strings.TrimSpace(filenameSpaceRE.ReplaceAllString(base, " "))

	// phone cameras produce very long names
	const maxLen = 50
	if len(base) > maxLen {
		base = strings.TrimSpace(base[:maxLen])
	}
	if base == "" {
		base = "bill"
	}
	return base + ext
}

// ProcessUpload scans an uploaded document, parses the transcript and
// saves the bill together with its source file.
func (s *Service) ProcessUpload(filename string, data []byte, contentType string) (*Bill, error) {
	if s.scanner == nil {
		return nil, ErrNoScanner
	}

	text, err := s.scanner.ScanText(data, contentType)
	if err != nil {
		slog.Error("Failed to scan bill",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("scanning bill: %w", err)
	}

	rec := s.parser.Parse(text)
	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", rec.ID, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	bill := &Bill{Record: *rec, SourceFile: savedPath, ContentType: contentType}
	if err := s.db.SaveBill(bill); err != nil {
		if delErr := s.storage.Delete(savedPath); delErr != nil {
			slog.Warn("Failed to clean up file", "filename", savedPath, "error", delErr)
		}
		return nil, fmt.Errorf("saving bill to database: %w", err)
	}

	slog.Info("Processed bill",
		"id", bill.ID,
		"filename", filename,
		"confidence", bill.Confidence,
		"items", len(bill.Items),
	)
	return bill, nil
}

// ProcessText parses raw text that was transcribed elsewhere
func (s *Service) ProcessText(raw string) (*Bill, error) {
	bill := &Bill{Record: *s.parser.Parse(raw)}
	if err := s.db.SaveBill(bill); err != nil {
		return nil, fmt.Errorf("saving bill to database: %w", err)
	}
	return bill, nil
}

// GetBill retrieves a bill by ID
func (s *Service) GetBill(id string) (*Bill, error) {
	bill, err := s.db.GetBill(id)
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}
	return bill, nil
}

// ListBills returns all bills, newest first
func (s *Service) ListBills() ([]*Bill, error) {
	bills, err := s.db.ListBills()
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	return bills, nil
}

// DeleteBill removes a bill and its source file
func (s *Service) DeleteBill(id string) error {
	bill, err := s.db.GetBill(id)
	if err != nil {
		return fmt.Errorf("getting bill for deletion: %w", err)
	}

	s.deleteSource(bill)

	if err := s.db.DeleteBill(id); err != nil {
		return fmt.Errorf("deleting bill from database: %w", err)
	}
	return nil
}

// ClearBills removes the whole history including source files
func (s *Service) ClearBills() error {
	bills, err := s.db.ListBills()
	if err != nil {
		return fmt.Errorf("listing bills for clearing: %w", err)
	}
	for _, bill := range bills {
		s.deleteSource(bill)
	}
	if err := s.db.ClearBills(); err != nil {
		return fmt.Errorf("clearing bills: %w", err)
	}
	slog.Info("Cleared bill history", "count", len(bills))
	return nil
}

// deleteSource removes a bill's upload, logging but tolerating failures
func (s *Service) deleteSource(bill *Bill) {
	if bill.SourceFile == "" {
		return
	}
	if err := s.storage.Delete(bill.SourceFile); err != nil {
		slog.Warn("Failed to delete file", "filename", bill.SourceFile, "error", err)
	}
}

// GetBillFile retrieves the uploaded file for a bill
func (s *Service) GetBillFile(id string) ([]byte, string, error) {
	bill, err := s.db.GetBill(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting bill: %w", err)
	}
	if bill.SourceFile == "" {
		return nil, "", fmt.Errorf("bill %s has no source file: %w", id, ErrNotFound)
	}

	data, err := s.storage.Get(bill.SourceFile)
	if err != nil {
		return nil, "", fmt.Errorf("getting bill file: %w", err)
	}
	return data, bill.ContentType, nil
}

// ExportBill renders a stored bill in the given format
func (s *Service) ExportBill(id, format string) (export.Result, error) {
	if _, err := export.ParseFormat(format); err != nil {
		return export.Result{}, err
	}
	bill, err := s.db.GetBill(id)
	if err != nil {
		return export.Result{}, fmt.Errorf("getting bill: %w", err)
	}
	res, err := export.Export(format, &bill.Record)
	if err != nil {
		if !errors.Is(err, export.ErrUnknownFormat) {
			slog.Error("Failed to export bill", "id", id, "format", format, "error", err)
		}
		return export.Result{}, err
	}
	return res, nil
}

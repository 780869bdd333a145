// Package bill keeps a history of parsed invoices and serves it over HTTP
package bill

import (
	"errors"

	"github.com/zombor/bill-reader/internal/invoice"
)

var (
	// ErrNotFound is returned when a bill or its source file does not exist
	ErrNotFound = errors.New("not found")
	// ErrNoScanner is returned for uploads when no OCR backend is configured
	ErrNoScanner = errors.New("no scanner configured")
)

// Bill is a parsed invoice record plus the upload it came from
type Bill struct {
	invoice.Record
	SourceFile  string `json:"source_file,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

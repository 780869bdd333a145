// Package export renders parsed invoice records into downloadable files
package export

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zombor/bill-reader/internal/invoice"
)

// ErrUnknownFormat is returned for export formats that are not supported
var ErrUnknownFormat = errors.New("unknown export format")

// Format names an export output
type Format string

const (
	FormatJSON  Format = "json"
	FormatTXT   Format = "txt"
	FormatTSV   Format = "tsv"
	FormatXLSX  Format = "xlsx"
	FormatPDF   Format = "pdf"
	FormatTally Format = "tally"
	FormatZIP   Format = "zip"
)

// Formats lists every supported format
var Formats = []Format{FormatJSON, FormatTXT, FormatTSV, FormatXLSX, FormatPDF, FormatTally, FormatZIP}

// Result is a rendered export ready to be downloaded
type Result struct {
	Data        []byte
	ContentType string
	Filename    string
}

const (
	extJSON  = ".json"
	extTXT   = ".txt"
	extTSV   = ".tsv"
	extXLSX  = ".xlsx"
	extPDF   = ".pdf"
	extTally = ".tally.xml"
	extZIP   = ".zip"
)

type renderer struct {
	render      func(rec *invoice.Record) ([]byte, error)
	contentType string
	extension   string
}

var renderers = map[Format]renderer{
	FormatJSON:  {renderJSON, "application/json", extJSON},
	FormatTXT:   {renderTXT, "text/plain; charset=utf-8", extTXT},
	FormatTSV:   {renderTSV, "text/tab-separated-values; charset=utf-8", extTSV},
	FormatXLSX:  {renderXLSX, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", extXLSX},
	FormatPDF:   {renderPDF, "application/pdf", extPDF},
	FormatTally: {renderTally, "application/xml", extTally},
	FormatZIP:   {renderZIP, "application/zip", extZIP},
}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := renderers[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

// Export renders rec in the named format
func Export(format string, rec *invoice.Record) (Result, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return Result{}, err
	}
	r := renderers[f]
	data, err := r.render(rec)
	if err != nil {
		return Result{}, fmt.Errorf("rendering %s export: %w", f, err)
	}
	return Result{
		Data:        data,
		ContentType: r.contentType,
		Filename:    FilenameBase(rec) + r.extension,
	}, nil
}

var unsafeFilenameRE = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FilenameBase is the merchant name made filesystem safe, followed by the
// record's creation time in Unix milliseconds.
func FilenameBase(rec *invoice.Record) string {
	name := strings.Trim(unsafeFilenameRE.ReplaceAllString(rec.Merchant, "_"), "_.")
	if name == "" || rec.Merchant == invoice.UnknownMerchant {
		name = "invoice"
	}
	return name + "_" + strconv.FormatInt(rec.CreatedAt.UnixMilli(), 10)
}

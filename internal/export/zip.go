package export

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/zombor/bill-reader/internal/invoice"
)

// bundled are the outputs packed into a zip export. The PDF is left out;
// it only restates the summary.
var bundled = []struct {
	extension string
	render    func(rec *invoice.Record) ([]byte, error)
}{
	{extJSON, renderJSON},
	{extTXT, renderTXT},
	{extTSV, renderTSV},
	{extTally, renderTally},
	{extXLSX, renderXLSX},
}

func renderZIP(rec *invoice.Record) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	base := FilenameBase(rec)

	for _, b := range bundled {
		data, err := b.render(rec)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", b.extension, err)
		}
		w, err := zw.Create(base + b.extension)
		if err != nil {
			return nil, fmt.Errorf("adding %s to zip: %w", b.extension, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("writing %s to zip: %w", b.extension, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing zip: %w", err)
	}
	return buf.Bytes(), nil
}

package export

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/zombor/bill-reader/internal/invoice"
)

// noRawText stands in for a record without a transcript
const noRawText = "No raw OCR text available."

func renderJSON(rec *invoice.Record) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}

func renderTXT(rec *invoice.Record) ([]byte, error) {
	if strings.TrimSpace(rec.Raw) == "" {
		return []byte(noRawText), nil
	}
	return []byte(rec.Raw), nil
}

// renderTSV writes the display items. Display strings never contain tabs
// or newlines, so no quoting is needed.
func renderTSV(rec *invoice.Record) ([]byte, error) {
	var b strings.Builder
	b.WriteString("Name\tQty\tPrice\tTotal\n")
	for _, it := range rec.Display.Items {
		b.WriteString(it.Name)
		b.WriteByte('\t')
		b.WriteString(strconv.Itoa(it.Quantity))
		b.WriteByte('\t')
		b.WriteString(it.Price)
		b.WriteByte('\t')
		b.WriteString(it.Total)
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

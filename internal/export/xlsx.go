package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zombor/bill-reader/internal/invoice"
)

const (
	invoiceSheet = "Invoice"
	rawSheet     = "Raw"
	// itemsHeaderRow is the first row of the items table
	itemsHeaderRow = 8
)

func issueSummary(rec *invoice.Record) string {
	if len(rec.Issues) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(rec.Issues))
	for _, is := range rec.Issues {
		parts = append(parts, is.Field+" "+is.Problem)
	}
	return strings.Join(parts, "; ")
}

// renderXLSX writes a summary block, the items table and the raw text
func renderXLSX(rec *invoice.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return nil, err
	}

	mismatch := invoice.Placeholder
	if rec.Mismatch != nil {
		currency := invoice.INR
		if rec.Total != nil {
			currency = rec.Total.Currency
		}
		mismatch = fmt.Sprintf("total %s, items %s",
			invoice.FormatCents(rec.Mismatch.Total, currency),
			invoice.FormatCents(rec.Mismatch.ItemsSum, currency))
	}

	summary := [][2]any{
		{"Merchant", rec.Display.Merchant},
		{"Date", rec.Display.Date},
		{"Total", rec.Display.Total},
		{"Confidence", rec.Confidence},
		{"Issues", issueSummary(rec)},
		{"Mismatch", mismatch},
	}
	for i, kv := range summary {
		if err := f.SetSheetRow(invoiceSheet, fmt.Sprintf("A%d", i+1), &[]any{kv[0], kv[1]}); err != nil {
			return nil, fmt.Errorf("writing summary: %w", err)
		}
	}

	header := []any{"Name", "Qty", "Price", "Total"}
	if err := f.SetSheetRow(invoiceSheet, fmt.Sprintf("A%d", itemsHeaderRow), &header); err != nil {
		return nil, fmt.Errorf("writing items header: %w", err)
	}
	for i, it := range rec.Display.Items {
		row := []any{it.Name, it.Quantity, it.Price, it.Total}
		cell, _ := excelize.CoordinatesToCellName(1, itemsHeaderRow+1+i)
		if err := f.SetSheetRow(invoiceSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("writing item %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(invoiceSheet, "A1", "A6", bold)
		_ = f.SetCellStyle(invoiceSheet, fmt.Sprintf("A%d", itemsHeaderRow), fmt.Sprintf("D%d", itemsHeaderRow), bold)
	}
	_ = f.SetColWidth(invoiceSheet, "A", "A", 40)
	_ = f.SetColWidth(invoiceSheet, "B", "B", 14)
	_ = f.SetColWidth(invoiceSheet, "C", "D", 16)

	if _, err := f.NewSheet(rawSheet); err != nil {
		return nil, fmt.Errorf("creating raw sheet: %w", err)
	}
	for i, line := range strings.Split(rec.Raw, "\n") {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellStr(rawSheet, cell, line); err != nil {
			return nil, fmt.Errorf("writing raw text: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

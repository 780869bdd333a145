package export

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zombor/bill-reader/internal/invoice"
)

type tallyMessage struct {
	XMLName xml.Name     `xml:"TALLYMESSAGE"`
	Voucher tallyVoucher `xml:"VOUCHER"`
}

type tallyVoucher struct {
	Date        string        `xml:"DATE"`
	VoucherType string        `xml:"VOUCHERTYPENAME"`
	PartyName   string        `xml:"PARTYNAME"`
	Amount      string        `xml:"AMOUNT"`
	Ledgers     []tallyLedger `xml:"ALLLEDGERS>LEDGER"`
}

type tallyLedger struct {
	Name   string `xml:"NAME"`
	Amount string `xml:"AMOUNT"`
}

// majorUnits renders minor units as a plain two decimal number
func majorUnits(a *invoice.Amount) string {
	if a == nil {
		return "0.00"
	}
	return decimal.New(a.Cents, -2).StringFixed(2)
}

// renderTally writes a sales voucher for accounting import. The voucher
// date falls back to the day the record was created.
func renderTally(rec *invoice.Record) ([]byte, error) {
	date := rec.Date
	if date == "" {
		date = rec.CreatedAt.Format("2006-01-02")
	}
	party := rec.Merchant
	if party == "" {
		party = "Merchant"
	}

	msg := tallyMessage{Voucher: tallyVoucher{
		Date:        strings.ReplaceAll(date, "-", ""),
		VoucherType: "Sales",
		PartyName:   party,
		Amount:      majorUnits(rec.Total),
	}}
	for i, it := range rec.Items {
		name := it.Name
		if name == "" || name == invoice.Placeholder {
			name = fmt.Sprintf("Item%d", i+1)
		}
		msg.Voucher.Ledgers = append(msg.Voucher.Ledgers, tallyLedger{Name: name, Amount: majorUnits(it.Total)})
	}

	out, err := xml.MarshalIndent(msg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling tally xml: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

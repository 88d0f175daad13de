// Package report renders disbursement exports and analytics charts.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

// Row is one exported request.
type Row struct {
	ID         string
	CreatedAt  string
	Requester  string
	Manager    string
	Category   string
	Purpose    string
	Amount     float64
	ReceiptURL string
}

var csvHeader = []string{"id", "created_at", "requester", "manager", "category", "purpose", "amount", "receipt_url"}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Total sums the amounts of rows without float drift.
func Total(rows []Row) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(decimal.NewFromFloat(r.Amount))
	}
	return sum
}

// cell quotes user-supplied text that a spreadsheet would evaluate as a formula.
func cell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// WriteCSV writes rows with a header line. Free-text cells are formula-escaped.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.ID,
			r.CreatedAt,
			cell(r.Requester),
			cell(r.Manager),
			r.Category,
			cell(r.Purpose),
			formatAmount(r.Amount),
			cell(r.ReceiptURL),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename builds an export file name such as "disbursed_2024-02-01_2024-02-29.csv".
func Filename(start, end, ext string) string {
	name := "disbursed"
	if start != "" {
		name += "_" + start
	}
	if end != "" {
		name += "_" + end
	}
	return name + "." + ext
}

func itoa(i int) string { return strconv.Itoa(i) }

package report

import (
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
)

type pdfColumn struct {
	title string
	width float64
	align string
}

var pdfColumns = []pdfColumn{
	{"Date", 22, "L"},
	{"Requester", 34, "L"},
	{"Manager", 34, "L"},
	{"Category", 24, "L"},
	{"Purpose", 46, "L"},
	{"Amount", 30, "R"},
}

// WritePDF renders rows as an A4 table followed by the total.
func WritePDF(w io.Writer, title string, rows []Row) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, "Page "+itoa(pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d disbursed request(s)", len(rows)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, r := range rows {
		if pdf.GetY()+6 > pageHeight-bottom-12 {
			pdf.AddPage()
			header()
		}
		date := r.CreatedAt
		if len(date) > 10 {
			date = date[:10]
		}
		cells := []string{date, r.Requester, r.Manager, r.Category, r.Purpose, formatAmount(r.Amount)}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, fit(pdf, tr(cells[i]), col.width-2), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 9)
	labelWidth := 0.0
	for _, col := range pdfColumns[:len(pdfColumns)-1] {
		labelWidth += col.width
	}
	pdf.CellFormat(labelWidth, 7, "Total (FCFA)", "1", 0, "R", false, 0, "")
	pdf.CellFormat(pdfColumns[len(pdfColumns)-1].width, 7, Total(rows).StringFixed(2), "1", 1, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// fit truncates s so it fits in width at the current font.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

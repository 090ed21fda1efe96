package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"stockpulse/pkg/contracts/domain"
)

const (
	pdfMargin      = 10.0
	pdfFontSize    = 8.0
	pdfRowHeight   = 6.0
	pdfMinColWidth = 15.0
)

// pdfReplacements spells out glyphs the core PDF fonts cannot draw.
var pdfReplacements = strings.NewReplacer(
	"₹", "Rs.",
	"↑", "",
	"↓", "",
	"💹", "",
	"🔻", "",
)

// WritePDF renders the table on landscape A4 pages. The header row repeats
// on every page and over-long cells are truncated with "...".
func WritePDF(out io.Writer, table domain.Table) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(table.Title, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(pdfText(s)) }

	if table.Title != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, text(table.Title), "", 1, "L", false, 0, "")
	}
	if table.Caption != "" {
		pdf.SetFont("Arial", "I", pdfFontSize)
		pdf.MultiCell(0, 4, text(table.Caption), "", "L", false)
		pdf.Ln(2)
	}

	if len(table.Columns) > 0 {
		pageWidth, pageHeight := pdf.GetPageSize()
		widths := pdfColumnWidths(pdf, table, text, pageWidth-2*pdfMargin)

		header := func() {
			pdf.SetFont("Arial", "B", pdfFontSize)
			pdf.SetFillColor(230, 230, 230)
			for j, col := range table.Columns {
				pdf.CellFormat(widths[j], pdfRowHeight, fitPDFText(pdf, text(col), widths[j]-2), "1", 0, "L", true, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetFont("Arial", "", pdfFontSize)
		}

		header()
		for _, row := range table.Rows {
			if pdf.GetY()+pdfRowHeight > pageHeight-pdfMargin {
				pdf.AddPage()
				header()
			}
			for j := range table.Columns {
				var cell string
				if j < len(row) {
					cell = row[j]
				}
				pdf.CellFormat(widths[j], pdfRowHeight, fitPDFText(pdf, text(cell), widths[j]-2), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// pdfColumnWidths sizes columns to their widest cell, then scales them down
// proportionally when the table is wider than the page.
func pdfColumnWidths(pdf *fpdf.Fpdf, table domain.Table, text func(string) string, available float64) []float64 {
	widths := make([]float64, len(table.Columns))

	pdf.SetFont("Arial", "B", pdfFontSize)
	for j, col := range table.Columns {
		widths[j] = pdf.GetStringWidth(text(col)) + 4
	}
	pdf.SetFont("Arial", "", pdfFontSize)
	for _, row := range table.Rows {
		for j := 0; j < len(widths) && j < len(row); j++ {
			if w := pdf.GetStringWidth(text(row[j])) + 4; w > widths[j] {
				widths[j] = w
			}
		}
	}

	var total float64
	for j := range widths {
		if widths[j] < pdfMinColWidth {
			widths[j] = pdfMinColWidth
		}
		total += widths[j]
	}
	if total > available {
		scale := available / total
		for j := range widths {
			widths[j] *= scale
		}
	}
	return widths
}

// fitPDFText works on bytes since translated text is single-byte encoded.
func fitPDFText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// pdfText drops characters outside Latin-1 after spelling out known glyphs.
func pdfText(s string) string {
	s = pdfReplacements.Replace(s)
	s = strings.Map(func(r rune) rune {
		if r > 0xFF {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

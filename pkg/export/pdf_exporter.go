package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// SummaryInfo is the cover block of the PDF document.
type SummaryInfo struct {
	Title string
	Lines []string
}

// PDFExporter renders a timetable summary: a cover page with dataset and
// solve figures, then one landscape page per grid.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const (
	pdfPageWidth  = 297.0
	pdfMargin     = 10.0
	pdfRowHeight  = 18.0
	pdfHeadHeight = 7.0
)

// Render creates the document. Grid cells keep their line breaks; a cell
// that outgrows the fixed row height is clipped rather than reflowed.
func (e *PDFExporter) Render(info SummaryInfo, grids []Grid) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, 15, pdfMargin)
	pdf.SetAutoPageBreak(false, 10)

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(info.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Arial", "", 10)
	for _, line := range info.Lines {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}

	for _, grid := range grids {
		e.renderGrid(pdf, grid)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) renderGrid(pdf *gofpdf.Fpdf, grid Grid) {
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, grid.Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	colWidth := (pdfPageWidth - 2*pdfMargin) / float64(len(grid.Periods)+1)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(colWidth, pdfHeadHeight, "Day/Period", "1", 0, "C", false, 0, "")
	for _, p := range grid.Periods {
		pdf.CellFormat(colWidth, pdfHeadHeight, strconv.Itoa(p), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	for i, day := range grid.Days {
		y := pdf.GetY()
		x := pdfMargin

		pdf.SetFont("Arial", "B", 9)
		pdf.Rect(x, y, colWidth, pdfRowHeight, "D")
		pdf.SetXY(x, y)
		pdf.CellFormat(colWidth, pdfRowHeight, strconv.Itoa(day), "", 0, "C", false, 0, "")
		x += colWidth

		pdf.SetFont("Arial", "", 8)
		for _, cell := range grid.Cells[i] {
			pdf.Rect(x, y, colWidth, pdfRowHeight, "D")
			pdf.SetXY(x+1, y+1)
			pdf.MultiCell(colWidth-2, 4, cell, "", "L", false)
			x += colWidth
		}
		pdf.SetXY(pdfMargin, y+pdfRowHeight)
	}
}

package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders timetable grids into a landscape PDF, one page per grid.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with one timetable page per grid.
func (e *PDFExporter) Render(grids []Grid) ([]byte, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("pdf requires at least one grid")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)

	for _, grid := range grids {
		if len(grid.Days) == 0 {
			return nil, fmt.Errorf("pdf grid %q has no day columns", grid.Title)
		}
		e.renderPage(pdf, grid)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) renderPage(pdf *gofpdf.Fpdf, grid Grid) {
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, grid.Title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	const timeColWidth = 28.0
	dayColWidth := (277.0 - timeColWidth) / float64(len(grid.Days))
	rowHeight := 6.0 * 3

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(timeColWidth, 8, "Time", "1", 0, "C", false, 0, "")
	for _, day := range grid.Days {
		pdf.CellFormat(dayColWidth, 8, day, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for p, row := range grid.Cells {
		x, y := pdf.GetXY()

		label := ""
		if p < len(grid.TimeLabels) {
			label = grid.TimeLabels[p]
		}
		pdf.CellFormat(timeColWidth, rowHeight, label, "1", 0, "C", false, 0, "")

		for d, cell := range row {
			cx := x + timeColWidth + float64(d)*dayColWidth
			pdf.Rect(cx, y, dayColWidth, rowHeight, "D")
			pdf.SetXY(cx, y+1)
			lines := strings.Split(cell, "\n")
			for i, line := range lines {
				if i >= 3 {
					break
				}
				pdf.SetX(cx)
				pdf.CellFormat(dayColWidth, 5, line, "", 2, "C", false, 0, "")
			}
		}

		pdf.SetXY(x, y+rowHeight)
	}
}

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVExporter renders timetable grids into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the grid. Multi-line cell text is
// flattened to " / " separated values so spreadsheet rows stay single-height.
func (e *CSVExporter) Render(grid Grid) ([]byte, error) {
	if len(grid.Days) == 0 {
		return nil, fmt.Errorf("csv requires at least one day column")
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	header := append([]string{"Time"}, grid.Days...)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for p, row := range grid.Cells {
		record := make([]string, 0, len(grid.Days)+1)
		label := ""
		if p < len(grid.TimeLabels) {
			label = grid.TimeLabels[p]
		}
		record = append(record, label)
		for _, cell := range row {
			record = append(record, strings.ReplaceAll(cell, "\n", " / "))
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

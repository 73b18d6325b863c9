package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRendersGrid(t *testing.T) {
	grid := Grid{
		Title:      "Class 10/A",
		TimeLabels: []string{"08:30-09:10", "09:20-10:00"},
		Days:       []string{"Monday", "Tuesday"},
		Cells: [][]string{
			{"Math\nT1\nR1", ""},
			{"", "Physics\nT2\nR1"},
		},
	}

	data, err := NewCSVExporter().Render(grid)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Time,Monday,Tuesday", lines[0])
	assert.Contains(t, lines[1], "Math / T1 / R1")
	assert.Contains(t, lines[2], "Physics / T2 / R1")
}

func TestCSVExporterRequiresDays(t *testing.T) {
	_, err := NewCSVExporter().Render(Grid{})
	assert.Error(t, err)
}

func TestPDFExporterRendersPages(t *testing.T) {
	grid := Grid{
		Title:      "Class 10/A",
		TimeLabels: []string{"08:30-09:10"},
		Days:       []string{"Monday"},
		Cells:      [][]string{{"Math\nT1"}},
	}

	data, err := NewPDFExporter().Render([]Grid{grid, grid})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestPDFExporterRequiresGrids(t *testing.T) {
	_, err := NewPDFExporter().Render(nil)
	assert.Error(t, err)
}

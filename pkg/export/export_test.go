package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	data := Dataset{Title: "Attendance", Headers: []string{"group", "key", "count"}}
	data.AddRow("dance_type", "Salsa", "4")
	data.AddRow("dance_type", "Tango, Argentine", "2")
	data.AddRow("total")
	return data
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "group,key,count\ndance_type,Salsa,4\ndance_type,\"Tango, Argentine\",2\ntotal,,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestAddRowPadsToHeaders(t *testing.T) {
	data := Dataset{Headers: []string{"a", "b"}}
	data.AddRow("1", "2", "3")
	assert.Equal(t, [][]string{{"1", "2"}}, data.Rows)
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := f.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"group", "key", "count"}, rows[0])
	assert.Equal(t, []string{"dance_type", "Tango, Argentine", "2"}, rows[2])
	assert.Equal(t, []string{"total"}, rows[3])
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Q12025 attendance", sheetName("Q1/2025: attendance"))
	assert.Equal(t, defaultSheet, sheetName("[]"))
	assert.Len(t, []rune(sheetName("a very long attendance report title for the spring term")), 31)
}

package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "stockpulse/internal/errors"
	"stockpulse/internal/shared/testutil"
	"stockpulse/pkg/contracts/domain"
)

func sampleTable() domain.Table {
	return domain.Table{
		Title:   "Most Frequent Stocks",
		Columns: []string{"Symbol", "Occurrences", "Series Type", "Sector"},
		Rows: [][]string{
			{"RELIANCE", "3", "EQ", "Energy"},
			{"TCS", "2", "BE", "Technology, Services"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"xlsx", FormatXLSX, false},
		{"excel", FormatXLSX, false},
		{"PDF", FormatPDF, false},
		{"docx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_ContentType(t *testing.T) {
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "most_frequent_stocks.csv", FileName(sampleTable(), FormatCSV))
	assert.Equal(t, "table.xlsx", FileName(domain.Table{}, FormatXLSX))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable(), WriteOptions{BOMPrefix: true}))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, utf8BOM), "expected UTF-8 BOM")

	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Symbol", "Occurrences", "Series Type", "Sector"}, rows[0])
	assert.Equal(t, "Technology, Services", rows[2][3])
}

func TestWriteCSV_WithoutBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable(), WriteOptions{}))
	assert.False(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 1)
	assert.Equal(t, "Most Frequent Stocks", sheets[0])

	rows, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Symbol", rows[0][0])
	assert.Equal(t, "TCS", rows[2][0])
}

func TestWritePDF(t *testing.T) {
	var small bytes.Buffer
	require.NoError(t, WritePDF(&small, sampleTable()))
	assert.True(t, bytes.HasPrefix(small.Bytes(), []byte("%PDF-")))

	long := domain.Table{
		Title:   "Analysis for 01 Jan 2024 to 31 Jan 2024",
		Caption: "Dates where the price reached a new high",
		Columns: []string{"Date", "Stock Price", "Daily Change", "About"},
	}
	for i := 0; i < 120; i++ {
		long.Rows = append(long.Rows, []string{
			"02 January 2024", "₹2,580.50", "💹+1.25%",
			strings.Repeat("Oil to chemicals conglomerate ", 10),
		})
	}
	var big bytes.Buffer
	require.NoError(t, WritePDF(&big, long))
	assert.Greater(t, big.Len(), small.Len())

	var empty bytes.Buffer
	require.NoError(t, WritePDF(&empty, domain.Table{Title: "Nothing"}))
	assert.True(t, bytes.HasPrefix(empty.Bytes(), []byte("%PDF-")))
}

func TestPDFText(t *testing.T) {
	assert.Equal(t, "Rs.2,580.50", pdfText("₹2,580.50"))
	assert.Equal(t, "+1.25%", pdfText("💹+1.25%"))
	assert.Equal(t, "-0.50%", pdfText("🔻-0.50%"))
	assert.Equal(t, "+0.38%", pdfText("+0.38% ↑"))
	assert.Equal(t, "Société", pdfText("Société"))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", sheetName(""))
	assert.Equal(t, "a-b-c", sheetName("a/b:c"))
	assert.Len(t, []rune(sheetName("Analysis for 01 Jan 2024 to 31 Jan 2024")), 31)
}

func TestTableWriter_WriteFile(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	w := NewTableWriter(logger)
	ctx := context.Background()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "nested", "out.csv")
	require.NoError(t, w.WriteFile(ctx, csvPath, sampleTable(), FormatCSV))

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
	assert.Contains(t, string(data), "RELIANCE,3,EQ,Energy")

	xlsxPath := filepath.Join(dir, "out.xlsx")
	require.NoError(t, w.WriteFile(ctx, xlsxPath, sampleTable(), FormatXLSX))
	info, err := os.Stat(xlsxPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, w.Write(ctx, &bytes.Buffer{}, sampleTable(), Format("docx")))

	blocked := filepath.Join(dir, "out.csv", "child.csv")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.csv"), []byte("x"), 0o600))
	err = w.WriteFile(ctx, blocked, sampleTable(), FormatCSV)
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr), "got %v", err)
	assert.Equal(t, apierrors.ErrTypeStorage, appErr.Type)
	assert.Equal(t, blocked, appErr.Context["path"])
}

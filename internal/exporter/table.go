package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "stockpulse/internal/errors"
	"stockpulse/pkg/contracts/domain"
)

// Format is a table export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// utf8BOM helps Excel recognize UTF-8 CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFormat reads an export format, case-insensitively. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Extension is the file extension of the format, without the dot.
func (f Format) Extension() string { return string(f) }

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// FileName derives a download name from the table title.
func FileName(table domain.Table, format Format) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(table.Title), "_"), "_")
	if slug == "" {
		slug = "table"
	}
	return slug + "." + format.Extension()
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	BOMPrefix bool
}

// TableWriter exports presentation tables.
type TableWriter struct {
	logger *slog.Logger
}

// NewTableWriter creates a table writer.
func NewTableWriter(logger *slog.Logger) *TableWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableWriter{logger: logger.With(slog.String("component", "exporter"))}
}

// Write encodes table to out in the given format. CSV output carries a BOM.
func (w *TableWriter) Write(ctx context.Context, out io.Writer, table domain.Table, format Format) error {
	w.logger.DebugContext(ctx, "exporting table",
		slog.String("title", table.Title),
		slog.String("format", string(format)),
		slog.Int("row_count", len(table.Rows)))

	switch format {
	case FormatCSV:
		return WriteCSV(out, table, WriteOptions{BOMPrefix: true})
	case FormatXLSX:
		return WriteXLSX(out, table)
	case FormatPDF:
		return WritePDF(out, table)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile exports table to path, creating parent directories.
func (w *TableWriter) WriteFile(ctx context.Context, path string, table domain.Table, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apierrors.NewStorageError("failed to create directory", err).WithContext("path", path)
	}
	file, err := os.Create(path)
	if err != nil {
		return apierrors.NewStorageError("failed to create file", err).WithContext("path", path)
	}
	if err := w.Write(ctx, file, table, format); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return apierrors.NewStorageError("failed to close file", err).WithContext("path", path)
	}

	w.logger.InfoContext(ctx, "table exported",
		slog.String("file_path", path),
		slog.Int("row_count", len(table.Rows)))
	return nil
}

// WriteCSV writes the table columns as header followed by its rows.
func WriteCSV(out io.Writer, table domain.Table, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(table.Columns) > 0 {
		if err := writer.Write(table.Columns); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the table to a single-sheet workbook with a bold header.
func WriteXLSX(out io.Writer, table domain.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(table.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if len(table.Columns) > 0 {
		if err := f.SetSheetRow(sheet, "A1", &table.Columns); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
			return fmt.Errorf("failed to style headers: %w", err)
		}
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetName makes a valid worksheet name: at most 31 characters and none of []:*?/\.
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		return "Sheet1"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}

package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apierrors "stockpulse/internal/errors"
	"stockpulse/internal/files"
	"stockpulse/pkg/contracts/domain"
)

// Source column names.
const (
	ColDate          = "Today's Date"
	ColSymbol        = "Symbol"
	ColLTP           = "LTP"
	ColPercentChange = "%chng"
	ColSeriesType    = "Series Type"
	ColMarketCap     = "Market Cap"
	ColSector        = "Sector"
	ColIndustry      = "Industry"
	ColROE           = "ROE"
	ColROCE          = "ROCE"
	ColPERatio       = "P/E Ratio"
	ColBookValue     = "Book Value"
	ColDividendYield = "Dividend Yield"
	ColDaysSinceHigh = "Days Since High"
	ColAbout         = "About"
)

// RequiredColumns must all be present in the header of a source file.
var RequiredColumns = []string{
	ColDate, ColSymbol, ColLTP, ColPercentChange,
	ColSeriesType, ColMarketCap, ColSector, ColIndustry,
}

// OptionalColumns are read when present.
var OptionalColumns = []string{
	ColROE, ColROCE, ColPERatio, ColBookValue, ColDividendYield, ColDaysSinceHigh, ColAbout,
}

var (
	utf8BOM        = []byte{0xEF, 0xBB, 0xBF}
	leadingNumber  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	currencyTokens = strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", "INR", "", ",", "")
	numericTokens  = strings.NewReplacer("₹", "", "%", "", ",", "")
)

// RawRow is one source row keyed by column name.
type RawRow map[string]string

// Normalizer turns a metrics file into typed stock records.
type Normalizer struct {
	sources *files.Discovery
	logger  *slog.Logger
}

// NewNormalizer creates a normalizer. A nil logger uses slog.Default.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		sources: files.NewDiscovery("", logger),
		logger:  logger.With(slog.String("component", "normalizer")),
	}
}

// LoadFile reads a CSV or XLSX file and returns the normalized dataset.
// When path is a directory its newest metrics file is read.
// Any failure is a *errors.DataLoadError.
func (n *Normalizer) LoadFile(ctx context.Context, path string) (*Dataset, error) {
	start := time.Now()

	source, err := n.sources.Resolve(path)
	if err != nil {
		return nil, apierrors.NewDataLoadError(path, err)
	}

	header, rows, err := readTable(source)
	if err != nil {
		return nil, apierrors.NewDataLoadError(source, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, apierrors.NewDataLoadError(source, err)
	}

	records, err := n.NormalizeTable(source, header, rows)
	if err != nil {
		return nil, err
	}

	n.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", source),
		slog.Int("records", len(records)),
		slog.Duration("duration", time.Since(start)))

	return NewDataset(source, records), nil
}

// NormalizeTable converts a header plus positional rows into records.
func (n *Normalizer) NormalizeTable(source string, header []string, rows [][]string) ([]domain.StockRecord, error) {
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = canonicalColumn(h)
	}

	raw := make([]RawRow, 0, len(rows))
	for _, row := range rows {
		// Rows with no cells at all are empty lines, not records.
		if len(row) == 0 {
			continue
		}
		r := make(RawRow, len(columns))
		for i, col := range columns {
			if col == "" || i >= len(row) {
				continue
			}
			r[col] = row[i]
		}
		raw = append(raw, r)
	}

	return n.NormalizeRows(source, columns, raw)
}

// NormalizeRows converts raw rows into records of the same cardinality and
// order. Only a missing required column or a date that is present but
// unreadable fails the load. A blank date leaves the record undated and any
// other field that does not parse becomes missing.
func (n *Normalizer) NormalizeRows(source string, columns []string, rows []RawRow) ([]domain.StockRecord, error) {
	if missing := missingColumns(columns); len(missing) > 0 {
		return nil, &apierrors.DataLoadError{Path: source, MissingColumns: missing}
	}

	stats := newMissingStats(columns)
	records := make([]domain.StockRecord, 0, len(rows))

	for i, row := range rows {
		var date domain.Date
		if strings.TrimSpace(row[ColDate]) == "" {
			stats[ColDate]++
		} else {
			parsed, err := domain.ParseDate(row[ColDate])
			if err != nil {
				return nil, &apierrors.DataLoadError{Path: source, Row: i + 1, Cause: err}
			}
			date = parsed
		}

		rec := domain.StockRecord{
			Date:            date,
			Symbol:          NormalizeSymbol(row[ColSymbol]),
			LastTradedPrice: stats.track(ColLTP, ParseCurrency(row[ColLTP])),
			PercentChange:   stats.track(ColPercentChange, ParsePercent(row[ColPercentChange])),
			SeriesType:      textOr(row[ColSeriesType], domain.NotAvailable),
			MarketCap:       stats.track(ColMarketCap, ParseMarketCap(row[ColMarketCap])),
			Sector:          strings.TrimSpace(row[ColSector]),
			Industry:        strings.TrimSpace(row[ColIndustry]),
			PERatio:         stats.track(ColPERatio, ParseNumeric(row[ColPERatio])),
			ROE:             stats.track(ColROE, ParseNumeric(row[ColROE])),
			ROCE:            stats.track(ColROCE, ParseNumeric(row[ColROCE])),
			BookValue:       stats.track(ColBookValue, ParseNumeric(row[ColBookValue])),
			DividendYield:   stats.track(ColDividendYield, ParseNumeric(row[ColDividendYield])),
			DaysSinceHigh:   stats.track(ColDaysSinceHigh, ParseNumeric(row[ColDaysSinceHigh])),
			About:           strings.TrimSpace(row[ColAbout]),
		}
		records = append(records, rec)
	}

	if missing := stats.nonZero(); len(missing) > 0 {
		attrs := make([]any, 0, len(missing)+2)
		attrs = append(attrs, slog.String("source", source), slog.Int("rows", len(records)))
		for _, col := range missing {
			attrs = append(attrs, slog.Int(col, stats[col]))
		}
		n.logger.Debug("missing values after normalization", attrs...)
	}

	return records, nil
}

// NormalizeSymbol trims and uppercases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseCurrency strips the currency symbol and thousands separators.
func ParseCurrency(s string) decimal.NullDecimal {
	return parseDecimal(currencyTokens.Replace(s))
}

// ParsePercent strips a trailing % and surrounding whitespace.
func ParsePercent(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	return parseDecimal(s)
}

// ParseMarketCap extracts the first digits[.digits] token of a cleaned
// currency string, so "₹1,234.5 Cr." reads as 1234.5.
func ParseMarketCap(s string) decimal.NullDecimal {
	token := leadingNumber.FindString(currencyTokens.Replace(s))
	if token == "" {
		return domain.Missing()
	}
	return parseDecimal(token)
}

// ParseNumeric strips percentage and currency symbols before parsing.
func ParseNumeric(s string) decimal.NullDecimal {
	return parseDecimal(numericTokens.Replace(s))
}

func parseDecimal(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Missing()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return domain.Missing()
	}
	return domain.Some(d)
}

func textOr(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}

// canonicalColumn maps a header cell to its source column name, tolerating
// case and surrounding whitespace. Unknown columns are kept verbatim.
func canonicalColumn(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, string(utf8BOM)))
	for _, col := range RequiredColumns {
		if strings.EqualFold(h, col) {
			return col
		}
	}
	for _, col := range OptionalColumns {
		if strings.EqualFold(h, col) {
			return col
		}
	}
	return h
}

func missingColumns(columns []string) []string {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// missingStats counts missing values per column of the header. Columns the
// file does not have are not tracked.
type missingStats map[string]int

func newMissingStats(columns []string) missingStats {
	m := make(missingStats, len(columns))
	for _, col := range columns {
		if col != "" {
			m[col] = 0
		}
	}
	return m
}

func (m missingStats) track(col string, v decimal.NullDecimal) decimal.NullDecimal {
	if _, tracked := m[col]; tracked && !v.Valid {
		m[col]++
	}
	return v
}

// nonZero lists the columns with missing values, sorted.
func (m missingStats) nonZero() []string {
	cols := make([]string, 0, len(m))
	for col, count := range m {
		if count > 0 {
			cols = append(cols, col)
		}
	}
	slices.Sort(cols)
	return cols
}

// readTable reads the header and data rows of a CSV or XLSX file.
func readTable(path string) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		return ReadCSV(bytes.NewReader(data))
	}
}

// ReadCSV reads a comma separated table. A UTF-8 BOM is ignored.
func ReadCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("file is empty")
	}
	return rows[0], rows[1:], nil
}

// readWorkbook reads the first sheet of a workbook.
func readWorkbook(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return rows[0], rows[1:], nil
}

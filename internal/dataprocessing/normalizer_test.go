package dataprocessing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "stockpulse/internal/errors"
	"stockpulse/internal/shared/testutil"
	"stockpulse/pkg/contracts/domain"
)

func dec(s string) decimal.NullDecimal {
	return domain.Some(decimal.RequireFromString(s))
}

func assertNullDecimal(t *testing.T, want, got decimal.NullDecimal) {
	t.Helper()
	require.Equal(t, want.Valid, got.Valid, "validity")
	if want.Valid {
		assert.True(t, want.Decimal.Equal(got.Decimal), "want %s got %s", want.Decimal, got.Decimal)
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want decimal.NullDecimal
	}{
		{"₹2,580.50", dec("2580.50")},
		{"1,00,000", dec("100000")},
		{" 3720 ", dec("3720")},
		{"Rs. 45.5", dec("45.5")},
		{"-12.5", dec("-12.5")},
		{"", domain.Missing()},
		{"N/A", domain.Missing()},
		{"₹", domain.Missing()},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assertNullDecimal(t, tt.want, ParseCurrency(tt.in))
		})
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in   string
		want decimal.NullDecimal
	}{
		{"1.25%", dec("1.25")},
		{" -0.50 % ", dec("-0.50")},
		{"0.8", dec("0.8")},
		{"abc", domain.Missing()},
		{"%", domain.Missing()},
		{"", domain.Missing()},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assertNullDecimal(t, tt.want, ParsePercent(tt.in))
		})
	}
}

func TestParseMarketCap(t *testing.T) {
	tests := []struct {
		in   string
		want decimal.NullDecimal
	}{
		{"₹17,45,000 Cr.", dec("1745000")},
		{"1250000", dec("1250000")},
		{"approx 12.75 lakh", dec("12.75")},
		{"₹ 99.5.3", dec("99.5")},
		{"unknown", domain.Missing()},
		{"", domain.Missing()},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assertNullDecimal(t, tt.want, ParseMarketCap(tt.in))
		})
	}
}

func TestParseNumeric(t *testing.T) {
	assertNullDecimal(t, dec("9.2"), ParseNumeric("9.2%"))
	assertNullDecimal(t, dec("1180"), ParseNumeric("₹1,180"))
	assertNullDecimal(t, domain.Missing(), ParseNumeric("nil"))
}

func TestNormalizeSymbol(t *testing.T) {
	for in, want := range map[string]string{
		" reliance ": "RELIANCE",
		"Tcs":        "TCS",
		"\tm&m\n":    "M&M",
		"":           "",
	} {
		assert.Equal(t, want, NormalizeSymbol(in), in)
	}
}

func TestNormalizer_LoadFile_CSV(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	path := testutil.WriteFile(t, "financial_metrics.csv", testutil.SampleCSV)

	ds, err := NewNormalizer(logger).LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 7, ds.Len())
	assert.Equal(t, path, ds.Source())

	records := ds.Records()

	first := records[0]
	assert.Equal(t, "RELIANCE", first.Symbol)
	assert.Equal(t, domain.MustParseDate("2024-01-02"), first.Date)
	assertNullDecimal(t, dec("2580.50"), first.LastTradedPrice)
	assertNullDecimal(t, dec("1.25"), first.PercentChange)
	assertNullDecimal(t, dec("1745000"), first.MarketCap)
	assertNullDecimal(t, dec("9.2"), first.ROE)
	assertNullDecimal(t, dec("0.35"), first.DividendYield)
	assert.Equal(t, "Energy", first.Sector)
	assert.Equal(t, "Refineries", first.Industry)
	assert.Contains(t, first.About, "Conglomerate")

	tcsSecondDay := records[4]
	assert.Equal(t, "TCS", tcsSecondDay.Symbol)
	assert.Equal(t, "BE", tcsSecondDay.SeriesType)
	assert.False(t, tcsSecondDay.PercentChange.Valid, "unparseable percent change is missing")
	assert.False(t, tcsSecondDay.ROE.Valid)

	infy := records[6]
	assert.Equal(t, domain.NotAvailable, infy.SeriesType, "absent series type defaults to N/A")

	for _, r := range records {
		assert.Equal(t, strings.ToUpper(strings.TrimSpace(r.Symbol)), r.Symbol)
	}
}

func TestNormalizer_LoadFile_Workbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Today's Date", "Symbol", "LTP", "%chng", "Series Type", "Market Cap", "Sector", "Industry"},
		{"2024-03-01", "wipro", "₹480.10", "-0.4%", "EQ", "250000", "Technology", "IT Services"},
		{"2024-03-04", "WIPRO", "485", "1.04%", "EQ", "252000", "Technology", "IT Services"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := testutil.WriteFile(t, "metrics.xlsx", "")
	require.NoError(t, f.SaveAs(path))

	logger, _ := testutil.NewTestLogger(t)
	ds, err := NewNormalizer(logger).LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"WIPRO"}, ds.Symbols())
	assertNullDecimal(t, dec("480.10"), ds.Records()[0].LastTradedPrice)
}

func TestNormalizer_LoadFile_Directory(t *testing.T) {
	path := testutil.WriteFile(t, "financial_metrics.csv", testutil.SampleCSV)
	dir := filepath.Dir(path)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	logger, _ := testutil.NewTestLogger(t)
	ds, err := NewNormalizer(logger).LoadFile(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 7, ds.Len())
	assert.Equal(t, path, ds.Source())

	_, err = NewNormalizer(logger).LoadFile(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrDataLoad))
}

func TestNormalizer_Failures(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		missingFile bool
		wantMissing []string
		wantRow     int
	}{
		{
			name:        "unreadable source",
			missingFile: true,
		},
		{
			name:    "empty file",
			content: "",
		},
		{
			name:        "missing required columns",
			content:     "Today's Date,Symbol,LTP\n2024-01-02,TCS,3720\n",
			wantMissing: []string{ColPercentChange, ColSeriesType, ColMarketCap, ColSector, ColIndustry},
		},
		{
			name: "unparseable date",
			content: "Today's Date,Symbol,LTP,%chng,Series Type,Market Cap,Sector,Industry\n" +
				"2024-01-02,TCS,3720,1%,EQ,1,Technology,IT\n" +
				"someday,INFY,1600,1%,EQ,1,Technology,IT\n",
			wantRow: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/nonexistent/financial_metrics.csv"
			if !tt.missingFile {
				path = testutil.WriteFile(t, "metrics.csv", tt.content)
			}

			logger, _ := testutil.NewTestLogger(t)
			_, err := NewNormalizer(logger).LoadFile(context.Background(), path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apierrors.ErrDataLoad))

			var loadErr *apierrors.DataLoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, path, loadErr.Path)
			assert.Equal(t, tt.wantMissing, loadErr.MissingColumns)
			assert.Equal(t, tt.wantRow, loadErr.Row)
		})
	}
}

func TestNormalizer_NormalizeRows_KeepsCardinalityAndOrder(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	n := NewNormalizer(logger)

	columns := append(append([]string{}, RequiredColumns...), OptionalColumns...)
	rows := []RawRow{
		{ColDate: "2024-01-05", ColSymbol: "b", ColLTP: "n/a", ColPercentChange: "x"},
		{ColDate: "2024-01-01", ColSymbol: "a", ColLTP: "10"},
		{ColDate: "2024-01-03", ColSymbol: "c"},
	}

	records, err := n.NormalizeRows("inline", columns, rows)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{records[0].Symbol, records[1].Symbol, records[2].Symbol})
	assert.False(t, records[0].LastTradedPrice.Valid)
	assert.Equal(t, domain.NotAvailable, records[2].SeriesType)
	assert.Equal(t, domain.NotAvailable, records[2].SectorLabel())
}

func TestNormalizer_HeaderMatchingIsLenient(t *testing.T) {
	content := " today's date ,SYMBOL,ltp,%CHNG,series type,market cap,sector,industry,Extra\n" +
		"2024-01-02,tcs,3720,1%,EQ,1,Technology,IT,ignored\n"
	header, rows, err := ReadCSV(strings.NewReader(content))
	require.NoError(t, err)

	logger, _ := testutil.NewTestLogger(t)
	records, err := NewNormalizer(logger).NormalizeTable("inline", header, rows)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "TCS", records[0].Symbol)
}

func TestNormalizer_BlankDateLeavesRecordUndated(t *testing.T) {
	content := "Today's Date,Symbol,LTP,%chng,Series Type,Market Cap,Sector,Industry\n" +
		"2024-01-02,ABC,100,1%,EQ,1,Technology,IT\n" +
		",XYZ,50,1%,EQ,1,Technology,IT\n"
	path := testutil.WriteFile(t, "metrics.csv", content)

	logger, handler := testutil.NewTestLogger(t)
	ds, err := NewNormalizer(logger).LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	undated := ds.Records()[1]
	assert.Equal(t, "XYZ", undated.Symbol)
	assert.True(t, undated.Date.IsZero())
	assertNullDecimal(t, dec("50"), undated.LastTradedPrice)

	bounds, ok := ds.DateBounds()
	require.True(t, ok)
	assert.Equal(t, "2024-01-02", bounds.From.String())
	assert.Equal(t, "2024-01-02", bounds.To.String())
	assert.True(t, handler.ContainsAttr(ColDate, int64(1)))
}

func TestNormalizer_AllCommaRowIsKept(t *testing.T) {
	content := "Today's Date,Symbol,LTP,%chng,Series Type,Market Cap,Sector,Industry\n" +
		"2024-01-02,ABC,100,1%,EQ,1,Technology,IT\n" +
		",,,,,,,\n" +
		"2024-01-03,ABC,101,1%,EQ,1,Technology,IT\n"
	header, rows, err := ReadCSV(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	logger, _ := testutil.NewTestLogger(t)
	records, err := NewNormalizer(logger).NormalizeTable("inline", header, rows)
	require.NoError(t, err)
	require.Len(t, records, 3)

	blank := records[1]
	assert.Equal(t, "", blank.Symbol)
	assert.True(t, blank.Date.IsZero())
	assert.False(t, blank.LastTradedPrice.Valid)
	assert.Equal(t, domain.NotAvailable, blank.SeriesType)
	assert.Equal(t, "2024-01-03", records[2].Date.String())
}

func TestNormalizer_ReadsDaysSinceHigh(t *testing.T) {
	content := "Today's Date,Symbol,LTP,%chng,Series Type,Market Cap,Sector,Industry,Days Since High\n" +
		"2024-01-02,ABC,100,1%,EQ,1,Technology,IT,42\n" +
		"2024-01-03,ABC,101,1%,EQ,1,Technology,IT,\n"
	header, rows, err := ReadCSV(strings.NewReader(content))
	require.NoError(t, err)

	logger, _ := testutil.NewTestLogger(t)
	records, err := NewNormalizer(logger).NormalizeTable("inline", header, rows)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assertNullDecimal(t, dec("42"), records[0].DaysSinceHigh)
	assertNullDecimal(t, domain.Missing(), records[1].DaysSinceHigh)
}

func TestNormalizer_MissingStatsCoverHeaderColumnsOnly(t *testing.T) {
	content := "Today's Date,Symbol,LTP,%chng,Series Type,Market Cap,Sector,Industry,P/E Ratio\n" +
		"2024-01-02,ABC,,1%,EQ,1,Technology,IT,\n" +
		"2024-01-03,ABC,101,1%,EQ,1,Technology,IT,20\n"
	header, rows, err := ReadCSV(strings.NewReader(content))
	require.NoError(t, err)

	logger, handler := testutil.NewTestLogger(t)
	_, err = NewNormalizer(logger).NormalizeTable("inline", header, rows)
	require.NoError(t, err)

	require.True(t, handler.ContainsMessage("missing values after normalization"))
	assert.True(t, handler.ContainsAttr(ColLTP, int64(1)))
	assert.True(t, handler.ContainsAttr(ColPERatio, int64(1)))
	for _, rec := range handler.GetRecords() {
		for _, absent := range []string{ColROE, ColROCE, ColBookValue, ColDividendYield, ColDaysSinceHigh} {
			assert.NotContains(t, rec.Attrs, absent)
		}
		assert.NotContains(t, rec.Attrs, ColPercentChange, "columns with no gaps are not reported")
	}
}

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"stockpulse/pkg/contracts/domain"
)

// RecordOption customises a fixture record.
type RecordOption func(*domain.StockRecord)

// Record builds a stock record dated date (YYYY-MM-DD) for symbol with
// series "EQ" and every numeric field missing.
func Record(date, symbol string, opts ...RecordOption) domain.StockRecord {
	r := domain.StockRecord{
		Date:       domain.MustParseDate(date),
		Symbol:     symbol,
		SeriesType: "EQ",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func WithPrice(v float64) RecordOption {
	return func(r *domain.StockRecord) { r.LastTradedPrice = domain.SomeFloat(v) }
}

func WithChange(v float64) RecordOption {
	return func(r *domain.StockRecord) { r.PercentChange = domain.SomeFloat(v) }
}

func WithMarketCap(v float64) RecordOption {
	return func(r *domain.StockRecord) { r.MarketCap = domain.SomeFloat(v) }
}

func WithSector(sector string) RecordOption {
	return func(r *domain.StockRecord) { r.Sector = sector }
}

func WithIndustry(industry string) RecordOption {
	return func(r *domain.StockRecord) { r.Industry = industry }
}

func WithSeries(series string) RecordOption {
	return func(r *domain.StockRecord) { r.SeriesType = series }
}

func WithDaysSinceHigh(days int64) RecordOption {
	return func(r *domain.StockRecord) { r.DaysSinceHigh = domain.Some(decimal.NewFromInt(days)) }
}

// Undated clears the date, as left by a blank date cell.
func Undated() RecordOption {
	return func(r *domain.StockRecord) { r.Date = domain.Date{} }
}

func WithAbout(about string) RecordOption {
	return func(r *domain.StockRecord) { r.About = about }
}

// WithRatios sets P/E, ROE, ROCE and dividend yield.
func WithRatios(pe, roe, roce, dividendYield float64) RecordOption {
	return func(r *domain.StockRecord) {
		r.PERatio = domain.SomeFloat(pe)
		r.ROE = domain.SomeFloat(roe)
		r.ROCE = domain.SomeFloat(roce)
		r.DividendYield = domain.SomeFloat(dividendYield)
	}
}

// SampleCSV is a small metrics file covering two months, three sectors,
// a missing percent change and currency formatted values.
const SampleCSV = "\ufeffToday's Date,Symbol,LTP,%chng,Series Type,Market Cap,Sector,Industry,ROE,ROCE,P/E Ratio,Book Value,Dividend Yield,About\n" +
	"2024-01-02, reliance ,\"₹2,580.50\",1.25%,EQ,\"₹17,45,000 Cr.\",Energy,Refineries,9.2%,10.1%,28.4,1180,0.35%,Conglomerate with energy and retail arms\n" +
	"2024-01-02,TCS,3720,-0.50%,EQ,\"₹13,50,000\",Technology,IT Services,46.1%,58.3%,30.2,\"₹280\",1.4%,\n" +
	"2024-01-02,HDFCBANK,1650.25,0.8,EQ,1250000,Banking,Private Bank,17%,7.1%,19.5,560,1.1%,Private sector lender\n" +
	"2024-01-03,RELIANCE,2601,0.81%,EQ,1745000,Energy,Refineries,9.2%,10.1%,28.6,1180,0.35%,Conglomerate with energy and retail arms\n" +
	"2024-01-03,TCS,3700,abc,BE,1350000,Technology,IT Services,,,,,,\n" +
	"2024-02-01,RELIANCE,2550,-1.96%,EQ,1745000,Energy,Refineries,9.2%,10.1%,28.1,1180,0.35%,\n" +
	"2024-02-01,INFY,1600,2.1%,,640000,Technology,IT Services,31%,40%,25,180,2.2%,\n"

// WriteFile writes content to name inside a fresh temp dir and returns the path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

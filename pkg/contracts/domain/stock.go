package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is shown for absent text values and is the default series type.
const NotAvailable = "N/A"

// StockRecord is one normalized row of the daily metrics file.
// Numeric fields that could not be parsed are invalid NullDecimals, never zero.
// A row with a blank date keeps the zero Date and matches no date filter.
type StockRecord struct {
	Date            Date                `json:"date"`
	Symbol          string              `json:"symbol" validate:"required"`
	LastTradedPrice decimal.NullDecimal `json:"ltp"`
	PercentChange   decimal.NullDecimal `json:"percent_change"`
	SeriesType      string              `json:"series_type"`
	MarketCap       decimal.NullDecimal `json:"market_cap"`
	Sector          string              `json:"sector,omitempty"`
	Industry        string              `json:"industry,omitempty"`
	PERatio         decimal.NullDecimal `json:"pe_ratio"`
	ROE             decimal.NullDecimal `json:"roe"`
	ROCE            decimal.NullDecimal `json:"roce"`
	BookValue       decimal.NullDecimal `json:"book_value"`
	DividendYield   decimal.NullDecimal `json:"dividend_yield"`
	DaysSinceHigh   decimal.NullDecimal `json:"days_since_high"`
	About           string              `json:"about,omitempty"`
}

// SectorLabel is the sector used for grouping, NotAvailable when absent.
func (r StockRecord) SectorLabel() string {
	if strings.TrimSpace(r.Sector) == "" {
		return NotAvailable
	}
	return r.Sector
}

// IndustryLabel is the industry for display, NotAvailable when absent.
func (r StockRecord) IndustryLabel() string {
	if strings.TrimSpace(r.Industry) == "" {
		return NotAvailable
	}
	return r.Industry
}

// Some wraps a value as a present NullDecimal.
func Some(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// SomeFloat is Some for float literals, mostly useful in fixtures.
func SomeFloat(f float64) decimal.NullDecimal {
	return Some(decimal.NewFromFloat(f))
}

// Missing is the absent numeric value.
func Missing() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

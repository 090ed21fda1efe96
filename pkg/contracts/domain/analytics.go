package domain

import (
	"github.com/shopspring/decimal"
)

// SummaryStats holds the headline numbers of a filtered subset.
// MeanPercentChange is invalid when no record carries a percent change.
type SummaryStats struct {
	DistinctStockCount  int                 `json:"distinct_stock_count"`
	DistinctSectorCount int                 `json:"distinct_sector_count"`
	MeanPercentChange   decimal.NullDecimal `json:"mean_percent_change"`
}

// SectorCount is one bar of the sector histogram.
type SectorCount struct {
	Sector            string          `json:"sector"`
	Count             int             `json:"count"`
	PercentageOfTotal decimal.Decimal `json:"percentage_of_total"`
}

// LatestRecord is the most recent record of a symbol within a subset.
type LatestRecord struct {
	StockRecord
	OccurrenceCount int `json:"occurrence_count"`
}

// SymbolOccurrence counts the distinct days a symbol appears in a subset.
// SeriesType and Sector come from the symbol's first record in subset order.
type SymbolOccurrence struct {
	Symbol            string `json:"symbol"`
	DistinctDateCount int    `json:"distinct_date_count"`
	SeriesType        string `json:"series_type"`
	Sector            string `json:"sector"`
}

// HighTrajectory is a symbol's chronological price series together with
// the records where the price matched its running maximum.
type HighTrajectory struct {
	Symbol     string        `json:"symbol"`
	HighPoints []StockRecord `json:"high_points"`
	Series     []StockRecord `json:"series"`
}

// Peak returns the highest traded price in the series.
func (h HighTrajectory) Peak() decimal.NullDecimal {
	var peak decimal.NullDecimal
	for _, r := range h.Series {
		if !r.LastTradedPrice.Valid {
			continue
		}
		if !peak.Valid || r.LastTradedPrice.Decimal.GreaterThan(peak.Decimal) {
			peak = r.LastTradedPrice
		}
	}
	return peak
}

// LatestHighOnOrBefore returns the last high point dated on or before day.
func (h HighTrajectory) LatestHighOnOrBefore(day Date) (StockRecord, bool) {
	var (
		found StockRecord
		ok    bool
	)
	for _, r := range h.HighPoints {
		if r.Date.After(day) {
			break
		}
		found, ok = r, true
	}
	return found, ok
}

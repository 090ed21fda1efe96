package services

import (
	"strconv"
	"strings"

	"stockpulse/internal/dataprocessing"
	apperrors "stockpulse/internal/errors"
	"stockpulse/internal/exporter"
	"stockpulse/pkg/contracts/domain"
)

// stockCards builds one card per latest record. all is the whole dataset so
// Days Since High looks back past the selected period.
func (s *DashboardService) stockCards(all []domain.StockRecord, latest []domain.LatestRecord) []domain.StockCard {
	symbols := make([]string, len(latest))
	for i, r := range latest {
		symbols[i] = r.Symbol
	}
	trajectories := dataprocessing.HighTrajectories(all, symbols)

	cards := make([]domain.StockCard, 0, len(latest))
	for _, r := range latest {
		cards = append(cards, domain.StockCard{
			Symbol:     r.Symbol,
			SeriesType: r.SeriesType,
			Sector:     r.SectorLabel(),
			Industry:   r.IndustryLabel(),
			Price:      s.formatter.ScaledCurrency(r.LastTradedPrice),
			Change:     exporter.FormatSignedPercent(r.PercentChange),
			Trend:      exporter.TrendOf(r.PercentChange),
			Metrics: []domain.Metric{
				{Label: "Market Cap", Value: s.formatter.ScaledCurrency(r.MarketCap)},
				{Label: "Days Since High", Value: daysSinceHigh(r.StockRecord, trajectories[r.Symbol])},
				{Label: "Stock P/E", Value: exporter.FormatDecimal(r.PERatio, 2)},
				{Label: "ROE", Value: exporter.FormatDecimal(r.ROE, 2), Unit: "%"},
				{Label: "Dividend Yield", Value: exporter.FormatDecimal(r.DividendYield, 2), Unit: "%"},
				{Label: "ROCE", Value: exporter.FormatDecimal(r.ROCE, 2), Unit: "%"},
			},
			About:           strings.TrimSpace(r.About),
			Link:            s.profileURL(r.Symbol),
			OccurrenceCount: r.OccurrenceCount,
		})
	}
	return cards
}

// daysSinceHigh prefers the value of the source file. Without one it counts
// the days from the latest high point on or before the record's date.
func daysSinceHigh(r domain.StockRecord, traj domain.HighTrajectory) string {
	if r.DaysSinceHigh.Valid {
		return exporter.FormatDecimal(r.DaysSinceHigh, 0)
	}
	day := r.Date
	if day.IsZero() {
		return domain.NotAvailable
	}
	high, ok := traj.LatestHighOnOrBefore(day)
	if !ok {
		return domain.NotAvailable
	}
	return strconv.Itoa(day.DaysSince(high.Date))
}

// stockDetailsTable flattens cards for grid display and export.
func stockDetailsTable(cards []domain.StockCard) domain.Table {
	table := domain.Table{
		Title: "Stock Details",
		Columns: []string{
			"Symbol", "Series Type", "Sector", "Industry", "Price", "Change",
			"Market Cap", "Days Since High", "Stock P/E", "ROE %", "Dividend Yield %", "ROCE %",
			"Occurrences",
		},
		Rows: make([][]string, 0, len(cards)),
	}
	for _, c := range cards {
		row := []string{c.Symbol, c.SeriesType, c.Sector, c.Industry, c.Price, c.Change}
		for _, m := range c.Metrics {
			row = append(row, m.Value)
		}
		row = append(row, strconv.Itoa(c.OccurrenceCount))
		table.Rows = append(table.Rows, row)
	}
	return table
}

// parseDateOr parses an ISO date, or returns fallback() when s is blank.
func parseDateOr(s, field string, fallback func() domain.Date) (domain.Date, error) {
	if strings.TrimSpace(s) == "" {
		return fallback(), nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, apperrors.NewAppValidationError(err.Error()).WithContext("field", field)
	}
	return d, nil
}

package dataprocessing

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"stockpulse/pkg/contracts/domain"
)

var hundred = decimal.NewFromInt(100)

// SummaryStats computes the headline numbers of a subset. The mean percent
// change only counts present values and is missing when there are none.
func SummaryStats(records []domain.StockRecord) domain.SummaryStats {
	symbols := make(map[string]struct{})
	sectors := make(map[string]struct{})
	sum := decimal.Zero
	present := 0

	for _, r := range records {
		symbols[r.Symbol] = struct{}{}
		sectors[r.SectorLabel()] = struct{}{}
		if r.PercentChange.Valid {
			sum = sum.Add(r.PercentChange.Decimal)
			present++
		}
	}

	stats := domain.SummaryStats{
		DistinctStockCount:  len(symbols),
		DistinctSectorCount: len(sectors),
	}
	if present > 0 {
		stats.MeanPercentChange = domain.Some(sum.Div(decimal.NewFromInt(int64(present))))
	}
	return stats
}

// SectorHistogram counts records per sector, largest first with ties by
// name. Each share of the total is rounded to two decimals.
func SectorHistogram(records []domain.StockRecord) []domain.SectorCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.SectorLabel()]++
	}

	out := make([]domain.SectorCount, 0, len(counts))
	total := decimal.NewFromInt(int64(len(records)))
	for sector, count := range counts {
		out = append(out, domain.SectorCount{
			Sector:            sector,
			Count:             count,
			PercentageOfTotal: decimal.NewFromInt(int64(count)).Mul(hundred).Div(total).Round(2),
		})
	}

	slices.SortFunc(out, func(a, b domain.SectorCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Sector, b.Sector)
	})
	return out
}

// LatestPerSymbol keeps one record per symbol: the latest date, then the
// higher percent change, then the earlier record. OccurrenceCount is the
// number of records of the symbol in the subset. Results are ordered by
// occurrence count, most frequent first, then by first appearance.
func LatestPerSymbol(records []domain.StockRecord) []domain.LatestRecord {
	index := make(map[string]int)
	out := make([]domain.LatestRecord, 0)

	for _, r := range records {
		i, seen := index[r.Symbol]
		if !seen {
			index[r.Symbol] = len(out)
			out = append(out, domain.LatestRecord{StockRecord: r, OccurrenceCount: 1})
			continue
		}
		out[i].OccurrenceCount++
		if newer(r, out[i].StockRecord) {
			out[i].StockRecord = r
		}
	}

	slices.SortStableFunc(out, func(a, b domain.LatestRecord) int {
		return cmp.Compare(b.OccurrenceCount, a.OccurrenceCount)
	})
	return out
}

// newer reports whether candidate replaces best in LatestPerSymbol.
func newer(candidate, best domain.StockRecord) bool {
	if c := candidate.Date.Compare(best.Date); c != 0 {
		return c > 0
	}
	return compareNullable(candidate.PercentChange, best.PercentChange) > 0
}

// compareNullable orders missing values below present ones.
func compareNullable(a, b decimal.NullDecimal) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return -1
	case !b.Valid:
		return 1
	}
	return a.Decimal.Cmp(b.Decimal)
}

// SymbolOccurrences counts the distinct dates of every symbol, most frequent
// first. Undated records add no date. Series type and sector come from the
// first record of the symbol in subset order, not from its chronologically
// first record.
func SymbolOccurrences(records []domain.StockRecord) []domain.SymbolOccurrence {
	index := make(map[string]int)
	dates := make([]map[domain.Date]struct{}, 0)
	out := make([]domain.SymbolOccurrence, 0)

	for _, r := range records {
		i, seen := index[r.Symbol]
		if !seen {
			i = len(out)
			index[r.Symbol] = i
			out = append(out, domain.SymbolOccurrence{
				Symbol:     r.Symbol,
				SeriesType: r.SeriesType,
				Sector:     r.SectorLabel(),
			})
			dates = append(dates, make(map[domain.Date]struct{}))
		}
		if !r.Date.IsZero() {
			dates[i][r.Date] = struct{}{}
		}
	}

	for i := range out {
		out[i].DistinctDateCount = len(dates[i])
	}

	slices.SortStableFunc(out, func(a, b domain.SymbolOccurrence) int {
		return cmp.Compare(b.DistinctDateCount, a.DistinctDateCount)
	})
	return out
}

// StockHighTrajectory returns the chronological price series of one symbol
// and the records whose price equals the running maximum, new or tied highs.
// Records without a price never count as highs and leave the maximum as is.
// Undated records have no place in the series and are skipped.
func StockHighTrajectory(records []domain.StockRecord, symbol string) domain.HighTrajectory {
	symbol = NormalizeSymbol(symbol)
	return trajectory(symbol, FilterBySymbols(records, []string{symbol}))
}

// HighTrajectories is StockHighTrajectory for several symbols, grouping the
// records in one pass. Every requested symbol gets an entry.
func HighTrajectories(records []domain.StockRecord, symbols []string) map[string]domain.HighTrajectory {
	groups := make(map[string][]domain.StockRecord, len(symbols))
	for _, s := range symbols {
		groups[NormalizeSymbol(s)] = nil
	}
	for _, r := range records {
		if series, ok := groups[r.Symbol]; ok {
			groups[r.Symbol] = append(series, r)
		}
	}

	out := make(map[string]domain.HighTrajectory, len(groups))
	for symbol, series := range groups {
		out[symbol] = trajectory(symbol, series)
	}
	return out
}

// trajectory scans the records of one symbol.
func trajectory(symbol string, records []domain.StockRecord) domain.HighTrajectory {
	series := make([]domain.StockRecord, 0, len(records))
	for _, r := range records {
		if !r.Date.IsZero() {
			series = append(series, r)
		}
	}
	slices.SortStableFunc(series, func(a, b domain.StockRecord) int {
		return a.Date.Compare(b.Date)
	})

	highs := make([]domain.StockRecord, 0)
	var running decimal.NullDecimal
	for _, r := range series {
		if !r.LastTradedPrice.Valid {
			continue
		}
		if !running.Valid || r.LastTradedPrice.Decimal.GreaterThan(running.Decimal) {
			running = r.LastTradedPrice
		}
		if r.LastTradedPrice.Decimal.Equal(running.Decimal) {
			highs = append(highs, r)
		}
	}

	return domain.HighTrajectory{
		Symbol:     symbol,
		HighPoints: highs,
		Series:     series,
	}
}

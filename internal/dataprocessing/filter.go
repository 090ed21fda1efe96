package dataprocessing

import (
	"slices"
	"strings"

	apierrors "stockpulse/internal/errors"
	"stockpulse/pkg/contracts/domain"
)

// AllOption disables a sector or series refinement.
const AllOption = "All"

// selectRecords returns the records matching keep, never nil.
func selectRecords(records []domain.StockRecord, keep func(domain.StockRecord) bool) []domain.StockRecord {
	out := make([]domain.StockRecord, 0)
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByExactDate keeps the records of a single day.
func FilterByExactDate(records []domain.StockRecord, day domain.Date) []domain.StockRecord {
	return selectRecords(records, func(r domain.StockRecord) bool {
		return !r.Date.IsZero() && r.Date.Equal(day)
	})
}

// FilterByDateRange keeps the records between start and end, both inclusive.
// A start after end is an *errors.InvalidRangeError and nothing is matched.
func FilterByDateRange(records []domain.StockRecord, start, end domain.Date) ([]domain.StockRecord, error) {
	if start.After(end) {
		return nil, &apierrors.InvalidRangeError{Start: start.String(), End: end.String()}
	}
	span := domain.DateRange{From: start, To: end}
	return selectRecords(records, func(r domain.StockRecord) bool {
		return span.Contains(r.Date)
	}), nil
}

// FilterByMonth keeps the records dated within the calendar month. Month
// labels such as "January 2024" are read with domain.ParseMonth.
func FilterByMonth(records []domain.StockRecord, month domain.Month) []domain.StockRecord {
	return selectRecords(records, func(r domain.StockRecord) bool {
		return month.Contains(r.Date)
	})
}

// FilterBySymbols keeps the records of any of the symbols, ignoring case.
func FilterBySymbols(records []domain.StockRecord, symbols []string) []domain.StockRecord {
	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[NormalizeSymbol(s)] = true
	}
	return selectRecords(records, func(r domain.StockRecord) bool {
		return wanted[r.Symbol]
	})
}

// RefineBySector keeps one sector. AllOption or an empty sector keeps everything.
// Records without a sector match domain.NotAvailable.
func RefineBySector(records []domain.StockRecord, sector string) []domain.StockRecord {
	if isAll(sector) {
		return slices.Clone(records)
	}
	return selectRecords(records, func(r domain.StockRecord) bool {
		return r.SectorLabel() == sector
	})
}

// RefineBySeriesType keeps one series type. AllOption or empty keeps everything.
func RefineBySeriesType(records []domain.StockRecord, series string) []domain.StockRecord {
	if isAll(series) {
		return slices.Clone(records)
	}
	return selectRecords(records, func(r domain.StockRecord) bool {
		return r.SeriesType == series
	})
}

// Refine applies the sector then the series refinement.
func Refine(records []domain.StockRecord, sector, series string) []domain.StockRecord {
	return RefineBySeriesType(RefineBySector(records, sector), series)
}

// SymbolsStartingWith lists the distinct symbols with the prefix, ignoring
// case, sorted ascending. An empty prefix matches nothing.
func SymbolsStartingWith(records []domain.StockRecord, prefix string) []string {
	prefix = NormalizeSymbol(prefix)
	if prefix == "" {
		return []string{}
	}
	return distinctSorted(selectRecords(records, func(r domain.StockRecord) bool {
		return strings.HasPrefix(r.Symbol, prefix)
	}), func(r domain.StockRecord) string { return r.Symbol })
}

// AvailableSectors lists AllOption followed by the sorted distinct sectors.
func AvailableSectors(records []domain.StockRecord) []string {
	return append([]string{AllOption}, distinctSorted(records, domain.StockRecord.SectorLabel)...)
}

// AvailableSeriesTypes lists AllOption followed by the sorted distinct series types.
func AvailableSeriesTypes(records []domain.StockRecord) []string {
	return append([]string{AllOption}, distinctSorted(records, func(r domain.StockRecord) string {
		return r.SeriesType
	})...)
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, AllOption)
}

func distinctSorted(records []domain.StockRecord, key func(domain.StockRecord) string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

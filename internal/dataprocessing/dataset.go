package dataprocessing

import (
	"slices"
	"time"

	"stockpulse/pkg/contracts/domain"
)

// Dataset is the immutable record set built from one source file.
// Records keep the order of the source.
type Dataset struct {
	source   string
	records  []domain.StockRecord
	loadedAt time.Time
}

// NewDataset wraps records. The slice is copied so later changes by the
// caller are not observed.
func NewDataset(source string, records []domain.StockRecord) *Dataset {
	return &Dataset{
		source:   source,
		records:  slices.Clone(records),
		loadedAt: time.Now(),
	}
}

// Source is the path the dataset was read from.
func (d *Dataset) Source() string { return d.source }

// LoadedAt is the time the dataset was built.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Len is the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a copy of all records in source order.
func (d *Dataset) Records() []domain.StockRecord {
	return slices.Clone(d.records)
}

// DateBounds returns the earliest and latest record dates. Undated records
// are ignored; ok is false when no record has a date.
func (d *Dataset) DateBounds() (bounds domain.DateRange, ok bool) {
	for _, r := range d.records {
		if r.Date.IsZero() {
			continue
		}
		if !ok || r.Date.Before(bounds.From) {
			bounds.From = r.Date
		}
		if !ok || r.Date.After(bounds.To) {
			bounds.To = r.Date
		}
		ok = true
	}
	return bounds, ok
}

// Months lists the distinct calendar months present, oldest first.
func (d *Dataset) Months() []domain.Month {
	seen := make(map[domain.Month]bool)
	months := make([]domain.Month, 0)
	for _, r := range d.records {
		if r.Date.IsZero() {
			continue
		}
		m := r.Date.MonthKey()
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	slices.SortFunc(months, func(a, b domain.Month) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})
	return months
}

// Symbols lists the distinct symbols, sorted ascending.
func (d *Dataset) Symbols() []string {
	return distinctSorted(d.records, func(r domain.StockRecord) string { return r.Symbol })
}

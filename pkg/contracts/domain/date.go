package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateFormat is the canonical ISO-8601 representation of a Date.
const DateFormat = "2006-01-02"

// MonthLabelFormat renders a month as "January 2024".
const MonthLabelFormat = "January 2006"

// dateLayouts lists the layouts accepted when reading dates from a data file.
// Numeric slash dates are month-first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Date is a calendar day without time-of-day or location.
// The zero value is not a valid date, see IsZero.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date, so NewDate(2024, 1, 32) is 2024-02-01.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.Time().Date()
	return d
}

// DateOf drops the time-of-day of t, keeping the calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// ParseDate reads a date in any of the supported layouts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q want format %q", s, DateFormat)
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Year() int          { return d.y }
func (d Date) Month() time.Month  { return d.m }
func (d Date) Day() int           { return d.d }
func (d Date) IsZero() bool       { return d == Date{} }
func (d Date) Before(x Date) bool { return d.Time().Before(x.Time()) }
func (d Date) After(x Date) bool  { return d.Time().After(x.Time()) }
func (d Date) Equal(x Date) bool  { return d == x }

// Compare returns -1, 0 or +1, suitable for slices.SortFunc.
func (d Date) Compare(x Date) int { return d.Time().Compare(x.Time()) }

// DaysSince returns the number of whole days from x to d.
func (d Date) DaysSince(x Date) int {
	return int(d.Time().Sub(x.Time()).Hours() / 24)
}

// MonthKey identifies the calendar month containing d.
func (d Date) MonthKey() Month { return Month{Year: d.y, Month: d.m} }

// Format formats the day using a time layout.
func (d Date) Format(layout string) string { return d.Time().Format(layout) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateFormat)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is an inclusive range of days.
type DateRange struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// Contains reports whether day lies within the range, bounds included.
// The zero Date is never contained.
func (r DateRange) Contains(day Date) bool {
	return !day.IsZero() && !day.Before(r.From) && !day.After(r.To)
}

// Month is a calendar month of a given year.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth reads a label such as "January 2024", "Jan 2024" or "2024-01".
func ParseMonth(label string) (Month, error) {
	label = strings.TrimSpace(label)
	for _, layout := range []string{MonthLabelFormat, "Jan 2006", "2006-01", "2006-1", "01/2006"} {
		if t, err := time.Parse(layout, label); err == nil {
			return Month{Year: t.Year(), Month: t.Month()}, nil
		}
	}
	return Month{}, fmt.Errorf("invalid month %q want format %q", label, MonthLabelFormat)
}

// Label renders the month as "January 2024".
func (m Month) Label() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format(MonthLabelFormat)
}

// Contains reports whether day falls in the month.
func (m Month) Contains(day Date) bool {
	return !day.IsZero() && day.y == m.Year && day.m == m.Month
}

// Before orders months chronologically.
func (m Month) Before(x Month) bool {
	if m.Year != x.Year {
		return m.Year < x.Year
	}
	return m.Month < x.Month
}

func (m Month) String() string { return m.Label() }

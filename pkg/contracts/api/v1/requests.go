// Package api contains the request and response contracts of the dashboard HTTP API.
// Version v1 represents the current stable API version.
package api

// Refinement narrows a date, range or month view. "All" or empty keeps everything.
type Refinement struct {
	Sector string `json:"sector" query:"sector" validate:"omitempty,max=100"`
	Series string `json:"series" query:"series" validate:"omitempty,max=20"`
}

// DateViewRequest selects a single trading day.
// An empty date means the latest day in the dataset.
type DateViewRequest struct {
	Date string `json:"date" query:"date" validate:"omitempty,datetime=2006-01-02"`
	Refinement
}

// RangeViewRequest selects an inclusive range of days. Empty bounds default
// to the dataset bounds. Ordering of the bounds is checked by the filter
// engine so the caller gets an invalid-range problem rather than a validation one.
type RangeViewRequest struct {
	From string `json:"from" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" query:"to" validate:"omitempty,datetime=2006-01-02"`
	Refinement
}

// MonthViewRequest selects a calendar month such as "January 2024".
// An empty month means the latest month in the dataset.
type MonthViewRequest struct {
	Month string `json:"month" query:"month" validate:"omitempty,monthlabel"`
	Refinement
}

// SymbolViewRequest selects one or more ticker symbols.
type SymbolViewRequest struct {
	Symbols []string `json:"symbols" query:"symbol" validate:"required,min=1,max=20,dive,symbol"`
}

// SymbolPrefixRequest drives the symbol picker.
type SymbolPrefixRequest struct {
	Prefix string `json:"prefix" query:"prefix" validate:"max=20"`
}

// CompanySearchRequest is a full-text search over company profiles.
type CompanySearchRequest struct {
	Query string `json:"q" query:"q" validate:"required,min=1,max=200"`
	Limit int    `json:"limit" query:"limit" validate:"omitempty,min=1,max=100"`
}

// ExportRequest selects the table export format.
type ExportRequest struct {
	View   string `json:"view" param:"view" validate:"required,oneof=date range month symbols"`
	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx pdf"`
}

// ReportRequest selects how a view is rendered as a report.
type ReportRequest struct {
	View   string `json:"view" param:"view" validate:"required,oneof=date range month symbols"`
	Format string `json:"format" query:"format" validate:"omitempty,oneof=md html"`
}

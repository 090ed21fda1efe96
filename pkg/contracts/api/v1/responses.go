package api

import (
	"time"

	"stockpulse/pkg/contracts/domain"
)

// ViewKind names the dashboard view that produced a response.
type ViewKind string

const (
	ViewDate    ViewKind = "date"
	ViewRange   ViewKind = "range"
	ViewMonth   ViewKind = "month"
	ViewSymbols ViewKind = "symbols"
)

// FilterOptions lists the refinements available for the selected period.
// Both lists start with "All".
type FilterOptions struct {
	Sectors []string `json:"sectors"`
	Series  []string `json:"series"`
}

// ViewResponse is everything a rendering surface needs to draw one view.
type ViewResponse struct {
	View        ViewKind             `json:"view"`
	Title       string               `json:"title"`
	Warning     string               `json:"warning,omitempty"`
	RecordCount int                  `json:"record_count"`
	Filters     FilterOptions        `json:"filters"`
	Metrics     []domain.Metric      `json:"metrics,omitempty"`
	SectorChart *domain.ChartSeries  `json:"sector_chart,omitempty"`
	Tables      []domain.Table       `json:"tables,omitempty"`
	Cards       []domain.StockCard   `json:"cards,omitempty"`
	Stocks      []SymbolAnalysis     `json:"stocks,omitempty"`
	Summary     *domain.SummaryStats `json:"summary,omitempty"`
}

// Empty reports whether the view found no data.
func (v *ViewResponse) Empty() bool {
	return v.RecordCount == 0
}

// SymbolAnalysis is the per-symbol section of the symbols view.
type SymbolAnalysis struct {
	Symbol     string                 `json:"symbol"`
	Title      string                 `json:"title"`
	Warning    string                 `json:"warning,omitempty"`
	Metrics    []domain.Metric        `json:"metrics,omitempty"`
	Timeline   *domain.Table          `json:"timeline,omitempty"`
	Trajectory *domain.HighTrajectory `json:"trajectory,omitempty"`
}

// Catalog describes the loaded dataset for pickers.
type Catalog struct {
	Source      string      `json:"source"`
	RecordCount int         `json:"record_count"`
	FirstDate   domain.Date `json:"first_date"`
	LastDate    domain.Date `json:"last_date"`
	Months      []string    `json:"months"`
	Symbols     []string    `json:"symbols"`
	LoadedAt    time.Time   `json:"loaded_at"`
}

// SymbolList is the response of the symbol prefix lookup.
type SymbolList struct {
	Prefix  string   `json:"prefix"`
	Symbols []string `json:"symbols"`
}

// CompanyHit is one full-text search result.
type CompanyHit struct {
	Symbol   string  `json:"symbol"`
	Sector   string  `json:"sector"`
	Industry string  `json:"industry"`
	Score    float64 `json:"score"`
}

// SearchResult is the response of the company search.
type SearchResult struct {
	Query string       `json:"query"`
	Total uint64       `json:"total"`
	Hits  []CompanyHit `json:"hits"`
}

// ReloadResult reports a dataset reload.
type ReloadResult struct {
	Source      string    `json:"source"`
	RecordCount int       `json:"record_count"`
	LoadedAt    time.Time `json:"loaded_at"`
}

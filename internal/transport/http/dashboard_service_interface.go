package http

import (
	"context"

	api "stockpulse/pkg/contracts/api/v1"
	"stockpulse/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations served over HTTP
type DashboardServiceInterface interface {
	Catalog(ctx context.Context) (*api.Catalog, error)
	DateView(ctx context.Context, req api.DateViewRequest) (*api.ViewResponse, error)
	RangeView(ctx context.Context, req api.RangeViewRequest) (*api.ViewResponse, error)
	MonthView(ctx context.Context, req api.MonthViewRequest) (*api.ViewResponse, error)
	SymbolView(ctx context.Context, req api.SymbolViewRequest) (*api.ViewResponse, error)
	SymbolsStartingWith(ctx context.Context, prefix string) (*api.SymbolList, error)
	SearchCompanies(ctx context.Context, req api.CompanySearchRequest) (*api.SearchResult, error)
	HighTrajectory(ctx context.Context, symbol string) (*domain.HighTrajectory, error)
}

// DatasetReloaderInterface re-reads the dataset source
type DatasetReloaderInterface interface {
	Reload(ctx context.Context) (*api.ReloadResult, error)
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"stockpulse/internal/config"
	"stockpulse/internal/dataprocessing"
	apperrors "stockpulse/internal/errors"
	"stockpulse/internal/exporter"
	"stockpulse/internal/infrastructure"
	api "stockpulse/pkg/contracts/api/v1"
	"stockpulse/pkg/contracts/domain"
)

// DatasetProvider returns the current dataset snapshot.
type DatasetProvider interface {
	Current() (*dataprocessing.Dataset, error)
}

// CompanySearcher runs full-text company searches.
type CompanySearcher interface {
	Search(ctx context.Context, query string, limit int) (api.SearchResult, error)
}

// Warning and title texts shown by the views.
const (
	warnNoDataForFilters = "No data found for the selected filters."
	warnNoDataForMonth   = "No data found for %s"
	warnNoDataForRange   = "No data found between %s and %s"
	warnNoDataForSymbol  = "No data found for symbol %s"

	titleAnalysis       = "Analysis for %s"
	titleSymbolAnalysis = "%s Analysis"
)

// DashboardService composes the dashboard views. Every call filters the
// current dataset snapshot afresh and returns a new response.
type DashboardService struct {
	datasets       DatasetProvider
	search         CompanySearcher
	formatter      *exporter.Formatter
	profileBaseURL string
	metrics        *infrastructure.DashboardMetrics
	logger         *slog.Logger
}

// NewDashboardService creates the dashboard service. search may be nil when
// company search is disabled; metrics may be nil.
func NewDashboardService(datasets DatasetProvider, search CompanySearcher, cfg config.DataConfig, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := cfg.ProfileBaseURL
	if baseURL == "" {
		baseURL = config.DefaultProfileBaseURL
	}
	return &DashboardService{
		datasets:       datasets,
		search:         search,
		formatter:      exporter.NewFormatter(cfg.Currency),
		profileBaseURL: baseURL,
		metrics:        metrics,
		logger:         logger.With(slog.String("component", "dashboard_service")),
	}
}

// Catalog describes the loaded dataset for pickers.
func (s *DashboardService) Catalog(ctx context.Context) (*api.Catalog, error) {
	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}

	months := ds.Months()
	labels := make([]string, 0, len(months))
	for _, m := range months {
		labels = append(labels, m.Label())
	}

	bounds, _ := ds.DateBounds()
	return &api.Catalog{
		Source:      ds.Source(),
		RecordCount: ds.Len(),
		FirstDate:   bounds.From,
		LastDate:    bounds.To,
		Months:      labels,
		Symbols:     ds.Symbols(),
		LoadedAt:    ds.LoadedAt(),
	}, nil
}

// DateView analyses one trading day. An empty date selects the latest day.
func (s *DashboardService) DateView(ctx context.Context, req api.DateViewRequest) (resp *api.ViewResponse, err error) {
	defer s.observe(ctx, api.ViewDate, time.Now(), &err)

	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	records := ds.Records()

	day, err := parseDateOr(req.Date, "date", func() domain.Date {
		bounds, _ := ds.DateBounds()
		return bounds.To
	})
	if err != nil {
		return nil, err
	}

	period := dataprocessing.FilterByExactDate(records, day)
	resp = newView(api.ViewDate, fmt.Sprintf(titleAnalysis, exporter.FormatLongDate(day)), period)
	subset := dataprocessing.Refine(period, req.Sector, req.Series)
	resp.RecordCount = len(subset)
	if len(subset) == 0 {
		resp.Warning = warnNoDataForFilters
		return resp, nil
	}

	s.fillOverview(resp, subset)
	resp.Cards = s.stockCards(records, dataprocessing.LatestPerSymbol(subset))
	resp.Tables = []domain.Table{stockDetailsTable(resp.Cards)}

	s.logger.DebugContext(ctx, "date view composed",
		slog.String("date", day.String()),
		slog.Int("records", len(subset)),
		slog.Int("cards", len(resp.Cards)))
	return resp, nil
}

// RangeView analyses an inclusive range of days. Empty bounds default to the
// dataset bounds. A start after the end is an InvalidRangeError.
func (s *DashboardService) RangeView(ctx context.Context, req api.RangeViewRequest) (resp *api.ViewResponse, err error) {
	defer s.observe(ctx, api.ViewRange, time.Now(), &err)

	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	records := ds.Records()
	bounds, _ := ds.DateBounds()

	from, err := parseDateOr(req.From, "from", func() domain.Date { return bounds.From })
	if err != nil {
		return nil, err
	}
	to, err := parseDateOr(req.To, "to", func() domain.Date { return bounds.To })
	if err != nil {
		return nil, err
	}

	period, err := dataprocessing.FilterByDateRange(records, from, to)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf(titleAnalysis, exporter.FormatShortDate(from)+" to "+exporter.FormatShortDate(to))
	resp = newView(api.ViewRange, title, period)
	subset := dataprocessing.Refine(period, req.Sector, req.Series)
	resp.RecordCount = len(subset)
	if len(subset) == 0 {
		resp.Warning = fmt.Sprintf(warnNoDataForRange, from, to)
		return resp, nil
	}

	s.fillOverview(resp, subset)
	resp.Tables = []domain.Table{
		s.frequentStocksTable(subset, "Stocks that appeared most frequently during the selected period"),
		sectorTable(subset),
	}
	return resp, nil
}

// MonthView analyses a calendar month. An empty month selects the latest one.
func (s *DashboardService) MonthView(ctx context.Context, req api.MonthViewRequest) (resp *api.ViewResponse, err error) {
	defer s.observe(ctx, api.ViewMonth, time.Now(), &err)

	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	records := ds.Records()

	month, err := s.resolveMonth(ds, req.Month)
	if err != nil {
		return nil, err
	}

	period := dataprocessing.FilterByMonth(records, month)
	resp = newView(api.ViewMonth, fmt.Sprintf(titleAnalysis, month.Label()), period)
	subset := dataprocessing.Refine(period, req.Sector, req.Series)
	resp.RecordCount = len(subset)
	if len(subset) == 0 {
		resp.Warning = fmt.Sprintf(warnNoDataForMonth, month.Label())
		return resp, nil
	}

	s.fillOverview(resp, subset)
	resp.Tables = []domain.Table{
		s.frequentStocksTable(subset, "Stocks that appeared most frequently during the month"),
		sectorTable(subset),
	}
	return resp, nil
}

func (s *DashboardService) resolveMonth(ds *dataprocessing.Dataset, label string) (domain.Month, error) {
	if strings.TrimSpace(label) == "" {
		months := ds.Months()
		if len(months) == 0 {
			return domain.Month{}, apperrors.NewNotFoundError("month")
		}
		return months[len(months)-1], nil
	}
	month, err := domain.ParseMonth(label)
	if err != nil {
		return domain.Month{}, apperrors.NewAppValidationError(err.Error()).WithContext("field", "month")
	}
	return month, nil
}

// SymbolView analyses the 52-week high trajectory of each requested symbol.
// Unknown symbols get a warning section rather than an error.
func (s *DashboardService) SymbolView(ctx context.Context, req api.SymbolViewRequest) (resp *api.ViewResponse, err error) {
	defer s.observe(ctx, api.ViewSymbols, time.Now(), &err)

	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	records := ds.Records()

	resp = &api.ViewResponse{
		View:    api.ViewSymbols,
		Title:   "Stock Analysis",
		Filters: api.FilterOptions{Sectors: []string{}, Series: []string{}},
		Stocks:  []api.SymbolAnalysis{},
	}
	highs := domain.Table{
		Title:   "52-Week High Points",
		Columns: []string{"Symbol", "Date", "Stock Price", "Daily Change"},
		Rows:    [][]string{},
	}

	seen := make(map[string]bool)
	for _, raw := range req.Symbols {
		symbol := dataprocessing.NormalizeSymbol(raw)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true

		analysis := api.SymbolAnalysis{Symbol: symbol, Title: fmt.Sprintf(titleSymbolAnalysis, symbol)}
		traj := dataprocessing.StockHighTrajectory(records, symbol)
		if len(traj.Series) == 0 {
			analysis.Warning = fmt.Sprintf(warnNoDataForSymbol, symbol)
			resp.Stocks = append(resp.Stocks, analysis)
			continue
		}

		resp.RecordCount += len(traj.Series)
		analysis.Metrics = []domain.Metric{
			{Label: "52-Week High", Value: s.formatter.ScaledCurrency(traj.Peak())},
			{Label: "High Points Found", Value: exporter.FormatCount(len(traj.HighPoints), "dates")},
		}
		timeline := s.highPointsTimeline(traj)
		analysis.Timeline = &timeline
		analysis.Trajectory = &traj
		resp.Stocks = append(resp.Stocks, analysis)

		for _, row := range timeline.Rows {
			highs.Rows = append(highs.Rows, append([]string{symbol}, row...))
		}
	}

	resp.Tables = []domain.Table{highs}
	return resp, nil
}

// highPointsTimeline lists the high points newest first.
func (s *DashboardService) highPointsTimeline(traj domain.HighTrajectory) domain.Table {
	table := domain.Table{
		Title:   "High Points Timeline",
		Columns: []string{"Date", "Stock Price", "Daily Change"},
		Rows:    make([][]string, 0, len(traj.HighPoints)),
	}
	for i := len(traj.HighPoints) - 1; i >= 0; i-- {
		r := traj.HighPoints[i]
		table.Rows = append(table.Rows, []string{
			exporter.FormatLongDate(r.Date),
			s.formatter.ScaledCurrency(r.LastTradedPrice),
			exporter.FormatChangeBadge(r.PercentChange),
		})
	}
	return table
}

// HighTrajectory returns the full trajectory of one symbol.
func (s *DashboardService) HighTrajectory(ctx context.Context, symbol string) (*domain.HighTrajectory, error) {
	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	traj := dataprocessing.StockHighTrajectory(ds.Records(), symbol)
	if len(traj.Series) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, traj.Symbol)
	}
	return &traj, nil
}

// SymbolsStartingWith drives the symbol picker.
func (s *DashboardService) SymbolsStartingWith(ctx context.Context, prefix string) (*api.SymbolList, error) {
	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	return &api.SymbolList{
		Prefix:  prefix,
		Symbols: dataprocessing.SymbolsStartingWith(ds.Records(), prefix),
	}, nil
}

// SearchCompanies runs a full-text search over company profiles.
func (s *DashboardService) SearchCompanies(ctx context.Context, req api.CompanySearchRequest) (*api.SearchResult, error) {
	if s.search == nil {
		return nil, ErrSearchDisabled
	}
	if _, err := s.datasets.Current(); err != nil {
		return nil, err
	}
	result, err := s.search.Search(ctx, req.Query, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("company search failed: %w", err)
	}
	return &result, nil
}

// PrimaryTable returns the table exported for a view.
func PrimaryTable(view *api.ViewResponse) (domain.Table, error) {
	if view == nil || len(view.Tables) == 0 {
		return domain.Table{}, ErrNoTable
	}
	return view.Tables[0], nil
}

// observe records view metrics and span details; errp is read when the
// deferred call runs.
func (s *DashboardService) observe(ctx context.Context, view api.ViewKind, start time.Time, errp *error) {
	s.metrics.RecordView(ctx, string(view), time.Since(start), *errp)
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{"dashboard.view": string(view)})
	if *errp != nil {
		infrastructure.RecordError(ctx, *errp)
	}
}

func newView(kind api.ViewKind, title string, period []domain.StockRecord) *api.ViewResponse {
	return &api.ViewResponse{
		View:  kind,
		Title: title,
		Filters: api.FilterOptions{
			Sectors: dataprocessing.AvailableSectors(period),
			Series:  dataprocessing.AvailableSeriesTypes(period),
		},
	}
}

// fillOverview adds the headline metrics and the sector chart.
func (s *DashboardService) fillOverview(resp *api.ViewResponse, subset []domain.StockRecord) {
	stats := dataprocessing.SummaryStats(subset)
	resp.Summary = &stats
	resp.Metrics = []domain.Metric{
		{Label: "Total Stocks", Value: strconv.Itoa(stats.DistinctStockCount)},
		{Label: "Total Sectors", Value: strconv.Itoa(stats.DistinctSectorCount)},
		{
			Label: "Average Change",
			Value: exporter.FormatSignedPercent(stats.MeanPercentChange),
			Trend: exporter.TrendOf(stats.MeanPercentChange),
		},
	}

	histogram := dataprocessing.SectorHistogram(subset)
	chart := domain.ChartSeries{
		Title:      "Sector Distribution",
		XAxisTitle: "Sector",
		YAxisTitle: "Number of Companies",
		Labels:     make([]string, 0, len(histogram)),
		Values:     make([]int, 0, len(histogram)),
	}
	for _, h := range histogram {
		chart.Labels = append(chart.Labels, h.Sector)
		chart.Values = append(chart.Values, h.Count)
	}
	resp.SectorChart = &chart
}

func sectorTable(subset []domain.StockRecord) domain.Table {
	histogram := dataprocessing.SectorHistogram(subset)
	table := domain.Table{
		Title:   "Sector Distribution",
		Columns: []string{"Sector", "Count", "% of Total"},
		Rows:    make([][]string, 0, len(histogram)),
	}
	for _, h := range histogram {
		table.Rows = append(table.Rows, []string{h.Sector, strconv.Itoa(h.Count), exporter.FormatPercentValue(domain.Some(h.PercentageOfTotal))})
	}
	return table
}

func (s *DashboardService) frequentStocksTable(subset []domain.StockRecord, caption string) domain.Table {
	occurrences := dataprocessing.SymbolOccurrences(subset)
	table := domain.Table{
		Title:   "Most Frequent Stocks",
		Caption: caption,
		Columns: []string{"Symbol", "Occurrences", "Series Type", "Sector", "Link"},
		Rows:    make([][]string, 0, len(occurrences)),
	}
	for _, o := range occurrences {
		table.Rows = append(table.Rows, []string{
			o.Symbol,
			strconv.Itoa(o.DistinctDateCount),
			o.SeriesType,
			o.Sector,
			s.profileURL(o.Symbol),
		})
	}
	return table
}

func (s *DashboardService) profileURL(symbol string) string {
	return s.profileBaseURL + symbol
}

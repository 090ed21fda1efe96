package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/config"
	"stockpulse/internal/dataprocessing"
	apperrors "stockpulse/internal/errors"
	"stockpulse/internal/shared/testutil"
	api "stockpulse/pkg/contracts/api/v1"
	"stockpulse/pkg/contracts/domain"
)

func dashboardRecords() []domain.StockRecord {
	return []domain.StockRecord{
		testutil.Record("2024-01-02", "RELIANCE", testutil.WithPrice(2580.5), testutil.WithChange(1.25),
			testutil.WithMarketCap(1745000), testutil.WithSector("Energy"), testutil.WithIndustry("Refineries"),
			testutil.WithRatios(25.1, 9.2, 10.5, 0.35), testutil.WithAbout("Oil to telecom conglomerate")),
		testutil.Record("2024-01-02", "TCS", testutil.WithPrice(3720), testutil.WithChange(-0.5), testutil.WithSector("Technology")),
		testutil.Record("2024-01-02", "HDFCBANK", testutil.WithPrice(1650.25), testutil.WithChange(0.8),
			testutil.WithSector("Banking"), testutil.WithSeries("BE")),
		testutil.Record("2024-01-03", "RELIANCE", testutil.WithPrice(2601), testutil.WithChange(0.81), testutil.WithSector("Energy")),
		testutil.Record("2024-01-03", "TCS", testutil.WithPrice(3700), testutil.WithSector("Technology")),
		testutil.Record("2024-02-01", "RELIANCE", testutil.WithPrice(2550), testutil.WithChange(-1.96), testutil.WithSector("Energy")),
		testutil.Record("2024-02-01", "INFY", testutil.WithPrice(1600), testutil.WithChange(2.1), testutil.WithSector("Technology")),
	}
}

func newDashboard(t *testing.T, search CompanySearcher) *DashboardService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	ds := dataprocessing.NewDataset("metrics.csv", dashboardRecords())
	return NewDashboardService(staticDatasets{ds: ds}, search, config.Default().Data, nil, logger)
}

func metricValue(metrics []domain.Metric, label string) string {
	for _, m := range metrics {
		if m.Label == label {
			return m.Value
		}
	}
	return ""
}

func TestDashboardService_Catalog(t *testing.T) {
	svc := newDashboard(t, nil)

	got, err := svc.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "metrics.csv", got.Source)
	assert.Equal(t, 7, got.RecordCount)
	assert.Equal(t, "2024-01-02", got.FirstDate.String())
	assert.Equal(t, "2024-02-01", got.LastDate.String())
	assert.Equal(t, []string{"January 2024", "February 2024"}, got.Months)
	assert.Equal(t, []string{"HDFCBANK", "INFY", "RELIANCE", "TCS"}, got.Symbols)
}

func TestDashboardService_DateView(t *testing.T) {
	svc := newDashboard(t, nil)
	ctx := context.Background()

	got, err := svc.DateView(ctx, api.DateViewRequest{Date: "2024-01-02"})
	require.NoError(t, err)

	assert.Equal(t, api.ViewDate, got.View)
	assert.Equal(t, "Analysis for 02 January 2024", got.Title)
	assert.Empty(t, got.Warning)
	assert.Equal(t, 3, got.RecordCount)
	assert.Equal(t, []string{"All", "Banking", "Energy", "Technology"}, got.Filters.Sectors)
	assert.Equal(t, []string{"All", "BE", "EQ"}, got.Filters.Series)

	assert.Equal(t, "3", metricValue(got.Metrics, "Total Stocks"))
	assert.Equal(t, "3", metricValue(got.Metrics, "Total Sectors"))
	assert.Equal(t, "+0.52%", metricValue(got.Metrics, "Average Change"))

	require.NotNil(t, got.SectorChart)
	assert.Equal(t, "Sector Distribution", got.SectorChart.Title)
	assert.Equal(t, "Number of Companies", got.SectorChart.YAxisTitle)
	assert.Equal(t, []string{"Banking", "Energy", "Technology"}, got.SectorChart.Labels)
	assert.Equal(t, []int{1, 1, 1}, got.SectorChart.Values)

	require.Len(t, got.Cards, 3)
	card := got.Cards[0]
	assert.Equal(t, "RELIANCE", card.Symbol)
	assert.Equal(t, "EQ", card.SeriesType)
	assert.Equal(t, "Energy", card.Sector)
	assert.Equal(t, "Refineries", card.Industry)
	assert.Equal(t, "₹2,580.50", card.Price)
	assert.Equal(t, "+1.25%", card.Change)
	assert.Equal(t, domain.TrendUp, card.Trend)
	assert.Equal(t, "₹17.45L", metricValue(card.Metrics, "Market Cap"))
	assert.Equal(t, "0", metricValue(card.Metrics, "Days Since High"))
	assert.Equal(t, "25.10", metricValue(card.Metrics, "Stock P/E"))
	assert.Equal(t, "9.20", metricValue(card.Metrics, "ROE"))
	assert.Equal(t, "0.35", metricValue(card.Metrics, "Dividend Yield"))
	assert.Equal(t, "10.50", metricValue(card.Metrics, "ROCE"))
	assert.Equal(t, "Oil to telecom conglomerate", card.About)
	assert.Equal(t, "https://www.screener.in/company/RELIANCE", card.Link)

	tcs := got.Cards[1]
	assert.Equal(t, "TCS", tcs.Symbol)
	assert.Equal(t, domain.TrendDown, tcs.Trend)
	assert.Equal(t, "N/A", tcs.Industry)
	assert.Equal(t, "N/A", metricValue(tcs.Metrics, "Stock P/E"))

	table, err := PrimaryTable(got)
	require.NoError(t, err)
	assert.Equal(t, "Stock Details", table.Title)
	require.Len(t, table.Rows, 3)
	assert.Len(t, table.Rows[0], len(table.Columns))
}

func TestDashboardService_DateViewDefaultsToLatestDay(t *testing.T) {
	svc := newDashboard(t, nil)

	got, err := svc.DateView(context.Background(), api.DateViewRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Analysis for 01 February 2024", got.Title)
	assert.Equal(t, 2, got.RecordCount)

	require.NotEmpty(t, got.Cards)
	for _, c := range got.Cards {
		if c.Symbol == "RELIANCE" {
			assert.Equal(t, "29", metricValue(c.Metrics, "Days Since High"), "high on 2024-01-03")
			assert.Equal(t, domain.TrendDown, c.Trend)
		}
	}
}

func TestDashboardService_DaysSinceHighPrefersSourceValue(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	records := []domain.StockRecord{
		testutil.Record("2024-01-01", "ABC", testutil.WithPrice(120)),
		testutil.Record("2024-01-02", "ABC", testutil.WithPrice(100), testutil.WithDaysSinceHigh(42)),
		testutil.Record("2024-01-02", "XYZ", testutil.WithPrice(60)),
		testutil.Record("2024-01-01", "XYZ", testutil.WithPrice(50)),
	}
	ds := dataprocessing.NewDataset("metrics.csv", records)
	svc := NewDashboardService(staticDatasets{ds: ds}, nil, config.Default().Data, nil, logger)

	got, err := svc.DateView(context.Background(), api.DateViewRequest{Date: "2024-01-02"})
	require.NoError(t, err)
	require.Len(t, got.Cards, 2)

	values := make(map[string]string)
	for _, c := range got.Cards {
		values[c.Symbol] = metricValue(c.Metrics, "Days Since High")
	}
	assert.Equal(t, "42", values["ABC"])
	assert.Equal(t, "0", values["XYZ"], "without a source value the trajectory is used")
}

func TestDaysSinceHigh_UndatedRecord(t *testing.T) {
	rec := testutil.Record("2024-01-02", "ABC", testutil.WithPrice(100), testutil.Undated())
	traj := dataprocessing.StockHighTrajectory([]domain.StockRecord{
		testutil.Record("2024-01-01", "ABC", testutil.WithPrice(100)),
	}, "ABC")

	assert.Equal(t, domain.NotAvailable, daysSinceHigh(rec, traj))
	assert.Equal(t, "7", daysSinceHigh(testutil.Record("2024-01-02", "ABC", testutil.Undated(), testutil.WithDaysSinceHigh(7)), traj))
}

func TestDashboardService_DateViewRefinements(t *testing.T) {
	svc := newDashboard(t, nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		req         api.DateViewRequest
		wantRecords int
		wantWarning string
	}{
		{"sector", api.DateViewRequest{Date: "2024-01-02", Refinement: api.Refinement{Sector: "Energy"}}, 1, ""},
		{"series", api.DateViewRequest{Date: "2024-01-02", Refinement: api.Refinement{Series: "BE"}}, 1, ""},
		{"all", api.DateViewRequest{Date: "2024-01-02", Refinement: api.Refinement{Sector: "All", Series: "All"}}, 3, ""},
		{"no match", api.DateViewRequest{Date: "2024-01-02", Refinement: api.Refinement{Sector: "Pharma"}}, 0, "No data found for the selected filters."},
		{"day without data", api.DateViewRequest{Date: "2024-01-05"}, 0, "No data found for the selected filters."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.DateView(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRecords, got.RecordCount)
			assert.Equal(t, tt.wantWarning, got.Warning)
			if tt.wantRecords == 0 {
				assert.True(t, got.Empty())
				assert.Empty(t, got.Metrics)
				assert.Empty(t, got.Cards)
			}
		})
	}
}

func TestDashboardService_DateViewInvalidDate(t *testing.T) {
	svc := newDashboard(t, nil)

	_, err := svc.DateView(context.Background(), api.DateViewRequest{Date: "2024-13-45"})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
}

func TestDashboardService_RangeView(t *testing.T) {
	svc := newDashboard(t, nil)

	got, err := svc.RangeView(context.Background(), api.RangeViewRequest{From: "2024-01-01", To: "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, "Analysis for 01 Jan 2024 to 31 Jan 2024", got.Title)
	assert.Equal(t, 5, got.RecordCount)

	require.Len(t, got.Tables, 2)
	frequent := got.Tables[0]
	assert.Equal(t, "Most Frequent Stocks", frequent.Title)
	assert.Equal(t, "Stocks that appeared most frequently during the selected period", frequent.Caption)
	assert.Equal(t, []string{"Symbol", "Occurrences", "Series Type", "Sector", "Link"}, frequent.Columns)
	require.Len(t, frequent.Rows, 3)
	assert.Equal(t, []string{"RELIANCE", "2", "EQ", "Energy", "https://www.screener.in/company/RELIANCE"}, frequent.Rows[0])
	assert.Equal(t, "TCS", frequent.Rows[1][0])
	assert.Equal(t, []string{"HDFCBANK", "1", "BE", "Banking", "https://www.screener.in/company/HDFCBANK"}, frequent.Rows[2])

	sectors := got.Tables[1]
	assert.Equal(t, []string{"Sector", "Count", "% of Total"}, sectors.Columns)
	assert.Equal(t, [][]string{
		{"Energy", "2", "40.00%"},
		{"Technology", "2", "40.00%"},
		{"Banking", "1", "20.00%"},
	}, sectors.Rows)
}

func TestDashboardService_RangeViewDefaultsAndEdges(t *testing.T) {
	svc := newDashboard(t, nil)
	ctx := context.Background()

	got, err := svc.RangeView(ctx, api.RangeViewRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Analysis for 02 Jan 2024 to 01 Feb 2024", got.Title)
	assert.Equal(t, 7, got.RecordCount)

	got, err = svc.RangeView(ctx, api.RangeViewRequest{From: "2024-03-01", To: "2024-03-31"})
	require.NoError(t, err)
	assert.Equal(t, "No data found between 2024-03-01 and 2024-03-31", got.Warning)
	assert.Empty(t, got.Tables)

	got, err = svc.RangeView(ctx, api.RangeViewRequest{From: "2024-02-01", To: "2024-01-01"})
	require.Error(t, err)
	assert.Nil(t, got, "no partial result")
	var rangeErr *apperrors.InvalidRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "2024-02-01", rangeErr.Start)
	assert.Equal(t, "2024-01-01", rangeErr.End)
}

func TestDashboardService_MonthView(t *testing.T) {
	svc := newDashboard(t, nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		month       string
		wantTitle   string
		wantRecords int
		wantWarning string
	}{
		{"label", "January 2024", "Analysis for January 2024", 5, ""},
		{"iso label", "2024-01", "Analysis for January 2024", 5, ""},
		{"latest by default", "", "Analysis for February 2024", 2, ""},
		{"month without data", "March 2024", "Analysis for March 2024", 0, "No data found for March 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.MonthView(ctx, api.MonthViewRequest{Month: tt.month})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.Equal(t, tt.wantRecords, got.RecordCount)
			assert.Equal(t, tt.wantWarning, got.Warning)
		})
	}

	got, err := svc.MonthView(ctx, api.MonthViewRequest{Month: "January 2024"})
	require.NoError(t, err)
	require.Len(t, got.Tables, 2)
	assert.Equal(t, "Stocks that appeared most frequently during the month", got.Tables[0].Caption)

	_, err = svc.MonthView(ctx, api.MonthViewRequest{Month: "Smarch"})
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
}

func TestDashboardService_SymbolView(t *testing.T) {
	svc := newDashboard(t, nil)

	got, err := svc.SymbolView(context.Background(), api.SymbolViewRequest{Symbols: []string{"reliance", "unknown", "RELIANCE"}})
	require.NoError(t, err)
	assert.Equal(t, api.ViewSymbols, got.View)
	assert.Equal(t, 3, got.RecordCount)
	require.Len(t, got.Stocks, 2, "duplicates collapse")

	reliance := got.Stocks[0]
	assert.Equal(t, "RELIANCE Analysis", reliance.Title)
	assert.Empty(t, reliance.Warning)
	assert.Equal(t, "₹2,601.00", metricValue(reliance.Metrics, "52-Week High"))
	assert.Equal(t, "2 dates", metricValue(reliance.Metrics, "High Points Found"))
	require.NotNil(t, reliance.Timeline)
	assert.Equal(t, []string{"Date", "Stock Price", "Daily Change"}, reliance.Timeline.Columns)
	assert.Equal(t, [][]string{
		{"03 January 2024", "₹2,601.00", "💹+0.81%"},
		{"02 January 2024", "₹2,580.50", "💹+1.25%"},
	}, reliance.Timeline.Rows)
	require.NotNil(t, reliance.Trajectory)
	assert.Len(t, reliance.Trajectory.Series, 3)

	unknown := got.Stocks[1]
	assert.Equal(t, "UNKNOWN", unknown.Symbol)
	assert.Equal(t, "No data found for symbol UNKNOWN", unknown.Warning)
	assert.Nil(t, unknown.Timeline)

	table, err := PrimaryTable(got)
	require.NoError(t, err)
	assert.Equal(t, []string{"Symbol", "Date", "Stock Price", "Daily Change"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "RELIANCE", table.Rows[0][0])
}

func TestDashboardService_HighTrajectory(t *testing.T) {
	svc := newDashboard(t, nil)
	ctx := context.Background()

	traj, err := svc.HighTrajectory(ctx, "tcs")
	require.NoError(t, err)
	assert.Equal(t, "TCS", traj.Symbol)
	assert.Len(t, traj.Series, 2)
	require.Len(t, traj.HighPoints, 1)
	assert.Equal(t, "2024-01-02", traj.HighPoints[0].Date.String())

	_, err = svc.HighTrajectory(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestDashboardService_SymbolsStartingWith(t *testing.T) {
	svc := newDashboard(t, nil)
	ctx := context.Background()

	got, err := svc.SymbolsStartingWith(ctx, "re")
	require.NoError(t, err)
	assert.Equal(t, []string{"RELIANCE"}, got.Symbols)

	got, err = svc.SymbolsStartingWith(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, got.Symbols)
}

func TestDashboardService_SearchCompanies(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		svc := newDashboard(t, nil)
		_, err := svc.SearchCompanies(ctx, api.CompanySearchRequest{Query: "tcs"})
		assert.ErrorIs(t, err, ErrSearchDisabled)
	})

	t.Run("delegates to the index", func(t *testing.T) {
		searcher := &MockCompanySearcher{}
		want := api.SearchResult{Query: "tcs", Total: 1, Hits: []api.CompanyHit{{Symbol: "TCS", Score: 1.5}}}
		searcher.On("Search", mock.Anything, "tcs", 5).Return(want, nil).Once()

		svc := newDashboard(t, searcher)
		got, err := svc.SearchCompanies(ctx, api.CompanySearchRequest{Query: "tcs", Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, want, *got)
		searcher.AssertExpectations(t)
	})

	t.Run("index failure", func(t *testing.T) {
		searcher := &MockCompanySearcher{}
		searcher.On("Search", mock.Anything, "tcs", 0).Return(api.SearchResult{}, errors.New("boom"))

		svc := newDashboard(t, searcher)
		_, err := svc.SearchCompanies(ctx, api.CompanySearchRequest{Query: "tcs"})
		assert.Error(t, err)
	})
}

func TestDashboardService_DatasetNotLoaded(t *testing.T) {
	svc := NewDashboardService(staticDatasets{}, nil, config.Default().Data, nil, nil)
	ctx := context.Background()

	_, err := svc.Catalog(ctx)
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
	_, err = svc.DateView(ctx, api.DateViewRequest{})
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
	_, err = svc.RangeView(ctx, api.RangeViewRequest{})
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
	_, err = svc.MonthView(ctx, api.MonthViewRequest{})
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
	_, err = svc.SymbolView(ctx, api.SymbolViewRequest{Symbols: []string{"TCS"}})
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
	_, err = svc.SymbolsStartingWith(ctx, "T")
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
}

func TestPrimaryTable_NoTables(t *testing.T) {
	_, err := PrimaryTable(&api.ViewResponse{})
	assert.ErrorIs(t, err, ErrNoTable)
	_, err = PrimaryTable(nil)
	assert.ErrorIs(t, err, ErrNoTable)
}

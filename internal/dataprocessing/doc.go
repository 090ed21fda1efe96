// Package dataprocessing turns a daily stock metrics file into typed records
// and answers the dashboard's questions about them.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Normalizer: reads CSV or XLSX files and produces domain.StockRecord values
// 2. Filters: pure selections by date, range, month, symbol, sector and series
// 3. Aggregator: summary statistics, sector histogram, latest record per
// symbol, symbol occurrences and the 52-week high trajectory
//
// # Usage
//
//	n := dataprocessing.NewNormalizer(logger)
//	ds, err := n.LoadFile(ctx, "financial_metrics.csv")
//	if err != nil {
//	    return err
//	}
//	day := dataprocessing.FilterByExactDate(ds.Records(), domain.MustParseDate("2024-01-02"))
//	stats := dataprocessing.SummaryStats(dataprocessing.Refine(day, "Energy", dataprocessing.AllOption))
//
// # Missing values
//
// Numeric fields that cannot be parsed are invalid decimal.NullDecimal values.
// Aggregations skip them and never treat them as zero.
//
// # Thread Safety
//
// Filters and aggregations never mutate their input and are safe to call
// concurrently on a shared Dataset.
package dataprocessing

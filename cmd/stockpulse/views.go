package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"stockpulse/internal/app"
	"stockpulse/internal/renderer"
	"stockpulse/internal/search"
	api "stockpulse/pkg/contracts/api/v1"
)

type catalogCmd struct{}

func (*catalogCmd) Name() string     { return "catalog" }
func (*catalogCmd) Synopsis() string { return "describe the loaded dataset" }
func (*catalogCmd) Usage() string {
	return `stockpulse [-data <file>] catalog

  Prints the date bounds, months and symbol count of the metrics file.
`
}
func (*catalogCmd) SetFlags(f *flag.FlagSet) {}

func (c *catalogCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withDashboard(ctx, func(ctx context.Context, a *app.Application) (string, error) {
		catalog, err := a.Dashboard.Catalog(ctx)
		if err != nil {
			return "", err
		}
		return renderer.CatalogMarkdown(catalog), nil
	})
}

type dateCmd struct {
	date string
	refinementFlags
}

func (*dateCmd) Name() string     { return "date" }
func (*dateCmd) Synopsis() string { return "analyse a single trading day" }
func (*dateCmd) Usage() string {
	return `stockpulse [-data <file>] date [-d <date>] [-sector <sector>] [-series <series>]

  Shows the overview and stock cards of one day. Defaults to the latest day.
`
}

func (c *dateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Day to analyse (YYYY-MM-DD)")
	c.refinementFlags.set(f)
}

func (c *dateCmd) request() api.DateViewRequest {
	return api.DateViewRequest{Date: c.date, Refinement: api.Refinement{Sector: c.sector, Series: c.series}}
}

func (c *dateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withDashboard(ctx, func(ctx context.Context, a *app.Application) (string, error) {
		view, err := a.Dashboard.DateView(ctx, c.request())
		if err != nil {
			return "", err
		}
		return renderer.ViewMarkdown(view), nil
	})
}

type rangeCmd struct {
	from, to string
	refinementFlags
}

func (*rangeCmd) Name() string     { return "range" }
func (*rangeCmd) Synopsis() string { return "analyse an inclusive range of days" }
func (*rangeCmd) Usage() string {
	return `stockpulse [-data <file>] range [-from <date>] [-to <date>] [-sector <sector>] [-series <series>]

  Shows the overview, sector split and most frequent stocks of a range.
  Missing bounds default to the first and last day of the dataset.
`
}

func (c *rangeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day of the range (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "Last day of the range (YYYY-MM-DD)")
	c.refinementFlags.set(f)
}

func (c *rangeCmd) request() api.RangeViewRequest {
	return api.RangeViewRequest{From: c.from, To: c.to, Refinement: api.Refinement{Sector: c.sector, Series: c.series}}
}

func (c *rangeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withDashboard(ctx, func(ctx context.Context, a *app.Application) (string, error) {
		view, err := a.Dashboard.RangeView(ctx, c.request())
		if err != nil {
			return "", err
		}
		return renderer.ViewMarkdown(view), nil
	})
}

type monthCmd struct {
	month string
	refinementFlags
}

func (*monthCmd) Name() string     { return "month" }
func (*monthCmd) Synopsis() string { return "analyse a calendar month" }
func (*monthCmd) Usage() string {
	return `stockpulse [-data <file>] month [-m <month>] [-sector <sector>] [-series <series>]

  Shows the overview, sector split and most frequent stocks of a month
  such as "January 2024". Defaults to the latest month.
`
}

func (c *monthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", `Month to analyse ("January 2024" or 2024-01)`)
	c.refinementFlags.set(f)
}

func (c *monthCmd) request() api.MonthViewRequest {
	return api.MonthViewRequest{Month: c.month, Refinement: api.Refinement{Sector: c.sector, Series: c.series}}
}

func (c *monthCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withDashboard(ctx, func(ctx context.Context, a *app.Application) (string, error) {
		view, err := a.Dashboard.MonthView(ctx, c.request())
		if err != nil {
			return "", err
		}
		return renderer.ViewMarkdown(view), nil
	})
}

type symbolsCmd struct {
	symbols string
	prefix  string
}

func (*symbolsCmd) Name() string     { return "symbols" }
func (*symbolsCmd) Synopsis() string { return "analyse 52-week highs of symbols, or list symbols" }
func (*symbolsCmd) Usage() string {
	return `stockpulse [-data <file>] symbols -s <SYM,SYM...>
stockpulse [-data <file>] symbols -prefix <prefix>

  With -s, shows the 52-week high and high point timeline of each symbol.
  With -prefix, lists the symbols starting with the prefix.
`
}

func (c *symbolsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "s", "", "Comma separated symbols to analyse")
	f.StringVar(&c.prefix, "prefix", "", "List symbols starting with this prefix")
}

func (c *symbolsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	symbols := splitList(c.symbols)
	if len(symbols) == 0 && c.prefix == "" && f.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: -s or -prefix is required")
		return subcommands.ExitUsageError
	}
	symbols = append(symbols, f.Args()...)

	return withDashboard(ctx, func(ctx context.Context, a *app.Application) (string, error) {
		if len(symbols) == 0 {
			list, err := a.Dashboard.SymbolsStartingWith(ctx, c.prefix)
			if err != nil {
				return "", err
			}
			return renderer.SymbolsMarkdown(list), nil
		}
		view, err := a.Dashboard.SymbolView(ctx, api.SymbolViewRequest{Symbols: symbols})
		if err != nil {
			return "", err
		}
		return renderer.ViewMarkdown(view), nil
	})
}

type highsCmd struct {
	symbol string
}

func (*highsCmd) Name() string     { return "highs" }
func (*highsCmd) Synopsis() string { return "print the running-high trajectory of a symbol" }
func (*highsCmd) Usage() string {
	return `stockpulse [-data <file>] highs -s <SYM>

  Lists the dates where the symbol's price matched its running maximum.
`
}

func (c *highsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Symbol to trace")
}

func (c *highsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(stderr, "Error: -s is required")
		return subcommands.ExitUsageError
	}
	return withDashboard(ctx, func(ctx context.Context, a *app.Application) (string, error) {
		traj, err := a.Dashboard.HighTrajectory(ctx, c.symbol)
		if err != nil {
			return "", err
		}
		return renderer.TrajectoryMarkdown(traj), nil
	})
}

type searchCmd struct {
	query string
	limit int
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "full-text search over company profiles" }
func (*searchCmd) Usage() string {
	return `stockpulse [-data <file>] search -q <query> [-limit <n>]

  Matches symbols, sectors, industries and company descriptions.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "Search query")
	f.IntVar(&c.limit, "limit", search.DefaultLimit, "Maximum number of hits")
}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.query == "" {
		fmt.Fprintln(stderr, "Error: -q is required")
		return subcommands.ExitUsageError
	}
	return withDashboard(ctx, func(ctx context.Context, a *app.Application) (string, error) {
		result, err := a.Dashboard.SearchCompanies(ctx, api.CompanySearchRequest{Query: c.query, Limit: c.limit})
		if err != nil {
			return "", err
		}
		return renderer.SearchMarkdown(result), nil
	})
}

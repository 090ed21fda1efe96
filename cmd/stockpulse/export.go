package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/google/subcommands"

	"stockpulse/internal/app"
	"stockpulse/internal/exporter"
	"stockpulse/internal/services"
	api "stockpulse/pkg/contracts/api/v1"
)

type exportCmd struct {
	view   string
	format string
	out    string

	date      dateCmd
	dateRange rangeCmd
	month     monthCmd
	symbols   string
	refinementFlags
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the main table of a view as csv, xlsx or pdf" }
func (*exportCmd) Usage() string {
	return `stockpulse [-data <file>] export -view <date|range|month|symbols> [-format csv|xlsx|pdf] [-out <file>] [view flags]

  Writes the primary table of the selected view. View flags are the ones of
  the matching command: -d, -from/-to, -m, -s, -sector and -series.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.view, "view", string(api.ViewDate), "View to export: date, range, month or symbols")
	f.StringVar(&c.format, "format", string(exporter.FormatCSV), "Output format: csv, xlsx or pdf")
	f.StringVar(&c.out, "out", "", "Output file. Defaults to a name derived from the table title.")

	f.StringVar(&c.date.date, "d", "", "Day for the date view (YYYY-MM-DD)")
	f.StringVar(&c.dateRange.from, "from", "", "First day for the range view")
	f.StringVar(&c.dateRange.to, "to", "", "Last day for the range view")
	f.StringVar(&c.month.month, "m", "", "Month for the month view")
	f.StringVar(&c.symbols, "s", "", "Comma separated symbols for the symbols view")

	c.refinementFlags.set(f)
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	format, err := exporter.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	c.date.refinementFlags = c.refinementFlags
	c.dateRange.refinementFlags = c.refinementFlags
	c.month.refinementFlags = c.refinementFlags

	return withDashboard(ctx, func(ctx context.Context, a *app.Application) (string, error) {
		view, err := c.buildView(ctx, a)
		if err != nil {
			return "", err
		}
		table, err := services.PrimaryTable(view)
		if err != nil {
			return "", err
		}

		out := c.out
		if out == "" {
			out = exporter.FileName(table, format)
		}
		if err := exporter.NewTableWriter(a.Logger).WriteFile(ctx, out, table, format); err != nil {
			return "", err
		}
		abs, _ := filepath.Abs(out)
		fmt.Fprintf(stdout, "Exported %d rows of %q to %s\n", len(table.Rows), table.Title, abs)
		return "", nil
	})
}

func (c *exportCmd) buildView(ctx context.Context, a *app.Application) (*api.ViewResponse, error) {
	switch api.ViewKind(c.view) {
	case api.ViewDate:
		return a.Dashboard.DateView(ctx, c.date.request())
	case api.ViewRange:
		return a.Dashboard.RangeView(ctx, c.dateRange.request())
	case api.ViewMonth:
		return a.Dashboard.MonthView(ctx, c.month.request())
	case api.ViewSymbols:
		return a.Dashboard.SymbolView(ctx, api.SymbolViewRequest{Symbols: splitList(c.symbols)})
	default:
		return nil, fmt.Errorf("%w: %s", services.ErrUnknownView, c.view)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"stockpulse/internal/app"
	"stockpulse/internal/config"
	apierrors "stockpulse/internal/errors"
	"stockpulse/internal/infrastructure"
	"stockpulse/internal/renderer"
)

var (
	dataPath   = flag.String("data", "", "Path to the metrics file (csv or xlsx); overrides the configured source")
	configPath = flag.String("config", "", "Path to the YAML config file. Defaults to the usual search locations.")
	plain      = flag.Bool("plain", false, "Print raw markdown instead of styled terminal output")
)

// stdout and stderr are replaced by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// loadConfig reads the configuration and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err).
			WithContext("path", *configPath)
	}
	if *dataPath != "" {
		cfg.Data.SourcePath = *dataPath
	}
	return cfg, nil
}

// openDashboard builds the application and loads the dataset. Logs go to
// stderr so rendered output on stdout stays clean.
func openDashboard(ctx context.Context) (*app.Application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Telemetry.MetricExporter = "none"

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return nil, err
	}

	a, err := app.NewApplication(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.LoadDataset(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}
	return a, nil
}

// withDashboard runs fn against a loaded dashboard and maps errors to exit codes.
func withDashboard(ctx context.Context, fn func(context.Context, *app.Application) (string, error)) subcommands.ExitStatus {
	a, err := openDashboard(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close(ctx)

	markdown, err := fn(ctx, a)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if markdown == "" {
		return subcommands.ExitSuccess
	}
	if err := renderer.Print(stdout, markdown, *plain); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// refinementFlags are shared by the date, range and month views.
type refinementFlags struct {
	sector string
	series string
}

func (r *refinementFlags) set(f *flag.FlagSet) {
	f.StringVar(&r.sector, "sector", "", "Only keep this sector (All keeps every sector)")
	f.StringVar(&r.series, "series", "", "Only keep this series type (All keeps every series)")
}

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"stockpulse/internal/app"
)

type serveCmd struct {
	port int
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "start the dashboard HTTP server" }
func (*serveCmd) Usage() string {
	return `stockpulse [-data <file>] [-config <file>] serve [-port <port>]

  Loads the metrics file and serves the dashboard API until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "Port to listen on. Defaults to the configured port.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.port > 0 {
		cfg.Server.Port = c.port
	}

	a, err := app.NewApplication(cfg, nil)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.Run(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// Package app wires the dashboard together and manages its lifecycle.
//
// # Initialization Flow
//
// NewApplication performs, in order:
//
//	1. Logger from the logging config, unless the caller supplies one
//	2. OpenTelemetry providers and the dashboard metric instruments
//	3. Search index (when data.enable_search is set), dataset store and services
//	4. Router with middleware and the /api routes
//	5. HTTP server
//
// The dataset is read by LoadDataset, or by Start before the server begins
// listening. A failed initial load does not stop the server; readiness
// reports not_ready and POST /api/dashboard/reload can recover.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	a, err := app.NewApplication(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	return a.Run()
//
// CLI commands skip the server: they call LoadDataset, use Dashboard
// directly and release resources with Close.
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM. Stop drains the HTTP server, stops the
// reload schedule, closes the search index and flushes telemetry.
package app

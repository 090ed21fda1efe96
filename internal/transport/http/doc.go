// Package http implements the HTTP handlers of the stock dashboard.
// Handlers stay thin: they parse and validate query parameters into the
// v1 request contracts, call the dashboard service and render the result.
//
// # Routes
//
// DashboardHandler.Routes is mounted under /api/dashboard:
//
//	GET  /catalog                  dataset bounds, months and symbols
//	GET  /views/date?date=         single day view (latest day when empty)
//	GET  /views/range?from=&to=    inclusive range view
//	GET  /views/month?month=       calendar month view ("January 2024")
//	GET  /views/symbols?symbol=    52-week high analysis per symbol
//	GET  /symbols?prefix=          symbol picker
//	GET  /search?q=&limit=         full-text company search
//	GET  /stocks/{symbol}/highs    running-high trajectory
//	GET  /export/{view}?format=    primary table of a view as CSV, XLSX or PDF
//	GET  /report/{view}?format=    whole view as markdown or an HTML page
//	POST /reload                   re-read the data file
//
// The date, range and month views also accept sector= and series= to
// refine the period. Successful responses are wrapped as
//
//	{"status": "success", "data": ...}
//
// # Errors
//
// All errors are rendered as RFC 7807 problem details through
// errors.ErrorHandler. Service sentinel errors are mapped to API errors in
// handleServiceError; an invalid range answers 400 with the offending bounds.
package http

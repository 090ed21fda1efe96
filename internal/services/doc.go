// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the data processing core so that
// view composition rules are centralized and testable.
//
// # Available Services
//
//	- DatasetStore: holds the current dataset, reloads it on demand or on a
//	  cron schedule, and rebuilds the search index
//	- DashboardService: composes the date, range, month and symbol views
//	- HealthService: liveness, readiness and version reporting
//
// # Error Handling
//
// Services return sentinel or typed errors that handlers map to problem
// responses:
//
//	- ErrDatasetNotLoaded when no dataset is available
//	- ErrSymbolNotFound for a trajectory of an unknown symbol
//	- errors.InvalidRangeError for a range whose start is after its end
//	- errors.AppError of type VALIDATION for malformed dates and months
//
// Empty results are not errors: views carry a warning instead.
package services

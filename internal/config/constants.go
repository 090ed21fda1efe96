package config

// Application constants
const (
	AppName = "Stock Pulse"
	AppSlug = "stockpulse"

	DefaultSourceFile     = "financial_metrics.csv"
	DefaultCurrency       = "INR"
	DefaultProfileBaseURL = "https://www.screener.in/company/"

	// AllOption is the refinement value that disables a sector or series filter.
	AllOption = "All"
)

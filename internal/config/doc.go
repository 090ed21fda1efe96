// Package config loads the dashboard configuration.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML file (config.yaml, configs/config.yaml or STOCKPULSE_CONFIG_FILE)
//	3. Default values from struct tags (lowest priority)
//
// # Environment Variables
//
// Variables follow envconfig naming, STOCKPULSE_<SECTION>_<FIELD>:
//
//	STOCKPULSE_SERVER_PORT=8080
//	STOCKPULSE_DATA_SOURCE_PATH=/srv/data/financial_metrics.csv
//	STOCKPULSE_DATA_RELOAD_SCHEDULE="0 */15 * * * *"
//	STOCKPULSE_LOGGING_LEVEL=debug
//	STOCKPULSE_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Example File
//
//	server:
//	  port: 9090
//	data:
//	  source_path: data/financial_metrics.csv
//	  reload_schedule: "0 0 * * * *"
//	logging:
//	  level: debug
package config

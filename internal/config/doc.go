// Package config provides centralized configuration management for the
// reports console. Configuration is loaded from the following sources in
// order of precedence:
//
//  1. Environment variables (highest priority)
//  2. A YAML file (reports.yaml, configs/reports.yaml, or REPORTS_CONFIG_FILE)
//  3. Default values from struct tags (lowest priority)
//
// All environment variables follow the pattern REPORTS_<SECTION>_<FIELD>:
//
//	REPORTS_BACKEND_BASE_URL=http://reports.campus.local:8080
//	REPORTS_BACKEND_USE_PRIMARY_CLIENT=false
//	REPORTS_EXPORT_OUTPUT_DIR=/var/lib/reports
//	REPORTS_SCHEDULE_REFRESH_CRON="*/5 * * * *"
//	REPORTS_LOGGING_LEVEL=debug
//
// After loading, the struct is checked with go-playground/validator rules
// declared in the `validate` tags.
package config

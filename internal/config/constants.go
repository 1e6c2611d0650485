package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "Campus Room Reports"
	AppVersion = "1.2.0"

	// EnvPrefix namespaces every environment variable (REPORTS_BACKEND_BASE_URL, ...)
	EnvPrefix = "REPORTS"

	// Network
	DefaultBackendURL  = "http://localhost:8080"
	DefaultHTTPTimeout = 30 * time.Second

	// File Paths (relative to the working directory)
	DefaultExportDir = "downloads"
	DefaultLogsDir   = "logs"

	// Dashboard service endpoints
	APIBasePath       = "/api"
	DashboardEndpoint = "/api/dashboard"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)

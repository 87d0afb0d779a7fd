package config

// Application constants
const (
	AppName = "adarecon"

	// Input discovery
	InputFilePattern = "PrintMonthlyAttendanceSummaryTotals*.xlsx"

	// Dashboard output; the timestamped copy is <name>_YYYYMMDD_HHMMSS.csv
	DashboardOutputName = "ada_dashboard_output"
	TimestampLayout     = "20060102_150405"

	// File Paths (relative to executable)
	DefaultDataDir      = "data"
	DefaultLogsDir      = "logs"
	DefaultDownloadsDir = "data/downloads"
	DefaultReportsDir   = "data/reports"

	// Log Settings
	DefaultLogLevel = "info"

	// HTTP
	DefaultRateLimit      = 10 // requests per second
	DefaultBurstSize      = 20
	DefaultMaxUploadBytes = 32 << 20

	APIBasePath     = "/api/v1"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)

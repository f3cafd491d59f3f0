package config

import "time"

// Application constants
const (
	// Application Info
	AppName = "Brand Sales Aggregator"

	// EnvPrefix namespaces every environment variable, e.g. BRANDSALES_SERVER_PORT
	EnvPrefix = "BRANDSALES"

	// ConfigFileEnv names the variable holding an explicit config file path
	ConfigFileEnv = "BRANDSALES_CONFIG_FILE"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 60 * time.Second

	// Uploads
	DefaultMaxUploadBytes = 32 << 20 // 32MB

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogFile   = "logs/brandsales.log"

	// Display
	DefaultCurrencySymbol = "€"

	// API Endpoints
	APIBasePath     = "/api"
	ReportsEndpoint = "/api/reports"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)

// DefaultAllowedExtensions are the upload file extensions accepted out of the box
var DefaultAllowedExtensions = []string{".csv", ".xlsx"}

package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultUserAgent         = "Funnel/1.0 (https://github.com/law-makers/funnel)"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultRateLimitRPS      = 2.0
	DefaultRateLimitBurst    = 4
	DefaultCacheTTL          = 15 * time.Minute
	DefaultCacheMaxSizeBytes = 100 * 1024 * 1024 // 100MB
	DefaultRadius            = 25
	DefaultLocale            = "CAN_ENG"
	DefaultOutputDir         = "."
	MaxConcurrency           = 16
)

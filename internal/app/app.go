// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/law-makers/funnel/internal/cache"
	"github.com/law-makers/funnel/internal/config"
	"github.com/law-makers/funnel/internal/delay"
	"github.com/law-makers/funnel/internal/fetch"
	"github.com/law-makers/funnel/internal/proxy"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config    *config.Config
	Logger    *zerolog.Logger
	Cache     cache.Cache
	Limiter   *delay.DomainLimiter
	Proxies   *proxy.Pool
	Static    *fetch.Static
	Driven    *fetch.Driven
	Hybrid    *fetch.Hybrid
	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the in-memory response cache
//   - Creates the per-domain politeness limiter
//   - Creates the proxy pool when proxies are configured
//   - Creates the static, driven, and hybrid fetchers
//
// If any step fails, an error is returned and no resources are allocated.
// The driven fetcher starts no browser until its first use.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Initialize logger based on config
	logLevel := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		// Human-friendly console output otherwise
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	// Create cache
	memCache := cache.NewMemory(cfg.CacheMaxSizeBytes)
	logger.Debug().
		Int64("max_size_bytes", cfg.CacheMaxSizeBytes).
		Msg("Memory cache initialized")

	// Create politeness limiter
	limiter := delay.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Politeness limiter initialized")

	// Create proxy pool when configured
	var proxies *proxy.Pool
	if len(cfg.Proxies) > 0 {
		proxies = proxy.NewPool(cfg.Proxies)
		logger.Debug().Int("proxies", proxies.Size()).Msg("Proxy pool initialized")
	}

	// Create fetchers
	static := fetch.NewStatic(
		memCache,
		limiter,
		proxies,
		cfg.HTTPTimeout,
		cfg.CacheTTL,
		cfg.UserAgent,
	)

	var proxyURL string
	if len(cfg.Proxies) > 0 {
		proxyURL = cfg.Proxies[0]
	}
	driven := fetch.NewDriven(cfg.HTTPTimeout, cfg.UserAgent, proxyURL, cfg.ChromePath)
	hybrid := fetch.NewHybrid(static, driven)
	logger.Debug().Msg("Fetchers initialized")

	app := &Application{
		Config:    cfg,
		Logger:    &logger,
		Cache:     memCache,
		Limiter:   limiter,
		Proxies:   proxies,
		Static:    static,
		Driven:    driven,
		Hybrid:    hybrid,
		startTime: time.Now(),
	}

	logger.Debug().Msg("Application initialized")
	return app, nil
}

// Fetcher returns the transport a scrape run should use: the hybrid fetcher
// normally, or the browser-driven one when forced by config.
func (a *Application) Fetcher() fetch.Fetcher {
	if a.Config.Driven {
		return a.Driven
	}
	return a.Hybrid
}

// Close gracefully shuts down the application and all its resources.
//
// Any errors during shutdown are logged but do not prevent other shutdown
// steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	if a.Driven != nil {
		a.Driven.Close()
	}
	if a.Cache != nil {
		a.Cache.Close()
	}

	uptime := time.Since(a.startTime)
	a.Logger.Debug().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}

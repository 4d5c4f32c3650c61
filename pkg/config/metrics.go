package config

import (
	"github.com/marmos91/deckd/internal/logger"
	"github.com/marmos91/deckd/pkg/metrics"
	promMetrics "github.com/marmos91/deckd/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// HTTP is the collector for the HTTP adapter (never nil, uses noop if disabled)
	HTTP metrics.HTTPMetrics

	// WorkerPool is the collector for the connection worker pool
	WorkerPool metrics.WorkerPoolMetrics

	// DBPool is the collector for the database connection pool
	DBPool metrics.DBPoolMetrics
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates Prometheus-backed metrics instances for all components
//
// If metrics are disabled:
//   - Returns nil server
//   - Returns no-op metrics implementations (zero overhead)
func InitializeMetrics(cfg *Config, log *logger.Logger) *MetricsResult {
	if !cfg.Server.Metrics.Enabled {
		return &MetricsResult{
			HTTP:       metrics.NewNoopHTTPMetrics(),
			WorkerPool: metrics.NewNoopWorkerPoolMetrics(),
			DBPool:     metrics.NewNoopDBPoolMetrics(),
		}
	}

	metrics.InitRegistry()
	reg := metrics.GetRegistry()

	server := metrics.NewServer(metrics.ServerConfig{
		Port: cfg.Server.Metrics.Port,
	}, reg, log)

	return &MetricsResult{
		Server:     server,
		HTTP:       promMetrics.NewHTTPMetrics(reg),
		WorkerPool: promMetrics.NewWorkerPoolMetrics(reg),
		DBPool:     promMetrics.NewDBPoolMetrics(reg),
	}
}

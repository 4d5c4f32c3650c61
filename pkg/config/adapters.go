package config

import (
	"fmt"

	"github.com/marmos91/deckd/internal/logger"
	"github.com/marmos91/deckd/pkg/adapter"
	httpAdapter "github.com/marmos91/deckd/pkg/adapter/http"
	"github.com/marmos91/deckd/pkg/metrics"
)

// CreateAdapters creates all enabled protocol adapters from the configuration.
//
// Parameters:
//   - cfg: The complete deckd configuration
//   - dispatcher: Routes parsed requests to handlers (usually a *router.Router)
//   - log: Logger shared by the adapters
//   - m: Metrics collectors from InitializeMetrics (nil = no metrics)
//
// Returns:
//   - []adapter.Adapter: List of enabled adapters ready to be added to the server
//   - error: Any error during adapter creation
func CreateAdapters(cfg *Config, dispatcher httpAdapter.Dispatcher, log *logger.Logger, m *MetricsResult) ([]adapter.Adapter, error) {
	var adapters []adapter.Adapter

	if cfg.Adapters.HTTP.Enabled {
		if dispatcher == nil {
			return nil, fmt.Errorf("http adapter: dispatcher is required")
		}

		var httpMetrics metrics.HTTPMetrics
		if m != nil {
			httpMetrics = m.HTTP
		}

		a := httpAdapter.New(cfg.Adapters.HTTP, dispatcher, log, httpMetrics)
		if m != nil {
			a.SetWorkerPoolMetrics(m.WorkerPool)
		}
		adapters = append(adapters, a)
	}

	if len(adapters) == 0 {
		return nil, fmt.Errorf("no adapters enabled in configuration")
	}

	return adapters, nil
}

package http

import (
	"fmt"
	"time"

	"github.com/marmos91/deckd/internal/protocol/http1"
)

// HTTPConfig holds configuration parameters for the HTTP adapter.
//
// Default values (applied by New if zero):
//   - Host: 0.0.0.0 (all interfaces); "*" is also accepted as a wildcard
//   - Port: left as is, 0 binds an ephemeral port
//   - WorkerCount: coerced to at least 1
//   - MaxRequestSize: 1 MiB
//   - ReadChunkSize: 4096
//   - ReadTimeout / WriteTimeout: 0 (no deadline)
//   - MetricsLogInterval: 0 (disabled)
//
// The service-level defaults (port 8080, 4 workers, 5m metrics log
// interval) are applied by pkg/config before New is called.
//
// Deadlines are off by default: a stalled peer occupies a worker until it
// sends the rest of its request or closes the connection. Stop does not
// interrupt such reads; set ReadTimeout to bound them.
type HTTPConfig struct {
	// Enabled controls whether the HTTP adapter is active.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Host is the address to bind. "0.0.0.0", "*" or "" accepts any interface.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the TCP port to listen on. 0 picks an ephemeral port at Start.
	Port int `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`

	// WorkerCount is the number of goroutines handling connections.
	// 0 is coerced to 1.
	WorkerCount int `mapstructure:"worker_count" yaml:"worker_count" validate:"min=0"`

	// MaxRequestSize caps the header section and the declared body.
	MaxRequestSize int `mapstructure:"max_request_size" yaml:"max_request_size" validate:"min=0"`

	// ReadChunkSize is the buffer size of each socket read.
	ReadChunkSize int `mapstructure:"read_chunk_size" yaml:"read_chunk_size" validate:"min=0"`

	// ReadTimeout bounds reading one request. 0 means no deadline.
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"min=0"`

	// WriteTimeout bounds writing one response. 0 means no deadline.
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"min=0"`

	// AcceptRate throttles the accept loop with a token bucket.
	AcceptRate AcceptRateConfig `mapstructure:"accept_rate" yaml:"accept_rate"`

	// MetricsLogInterval is the interval at which active connections are
	// logged. 0 disables periodic logging.
	MetricsLogInterval time.Duration `mapstructure:"metrics_log_interval" yaml:"metrics_log_interval" validate:"min=0"`
}

// AcceptRateConfig configures the optional accept throttle.
type AcceptRateConfig struct {
	// RequestsPerSecond is the sustained accept rate. 0 means unlimited.
	RequestsPerSecond uint `mapstructure:"requests_per_second" yaml:"requests_per_second"`

	// Burst is how many connections may be accepted back to back.
	Burst uint `mapstructure:"burst" yaml:"burst"`
}

// wildcardHost is the configuration spelling of "any interface".
const wildcardHost = "*"

// applyDefaults fills in zero values with sensible defaults.
func (c *HTTPConfig) applyDefaults() {
	// Note: Enabled and Port defaults live in pkg/config/defaults.go so files
	// can set false and 0 explicitly.

	if c.Host == "" || c.Host == wildcardHost {
		c.Host = "0.0.0.0"
	}
	if c.WorkerCount < 1 {
		c.WorkerCount = 1
	}
	if c.MaxRequestSize <= 0 {
		c.MaxRequestSize = http1.DefaultMaxRequestSize
	}
	if c.ReadChunkSize <= 0 {
		c.ReadChunkSize = http1.DefaultReadChunkSize
	}
}

// validate checks the configuration after defaults are applied.
func (c *HTTPConfig) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 0-65535", c.Port)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("invalid ReadTimeout %v: must be >= 0", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("invalid WriteTimeout %v: must be >= 0", c.WriteTimeout)
	}
	if c.MetricsLogInterval < 0 {
		return fmt.Errorf("invalid MetricsLogInterval %v: must be >= 0", c.MetricsLogInterval)
	}
	return nil
}

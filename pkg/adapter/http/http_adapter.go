// Package http implements the socket-level HTTP/1.1 adapter: a TCP accept
// loop that hands each connection to a worker pool, where one request is
// parsed, dispatched and answered before the connection is closed.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/deckd/internal/logger"
	"github.com/marmos91/deckd/internal/protocol/http1"
	"github.com/marmos91/deckd/internal/ratelimiter"
	"github.com/marmos91/deckd/internal/workerpool"
	"github.com/marmos91/deckd/pkg/metrics"
)

// Dispatcher routes a parsed request to business logic. *router.Router
// satisfies it.
type Dispatcher interface {
	Handle(ctx context.Context, req *http1.Request) (*http1.Response, error)
}

// HTTPAdapter implements the adapter.Adapter interface for HTTP/1.1.
//
// Architecture:
// Start binds the listener and spawns one accept goroutine. Every accepted
// connection is submitted to the worker pool as a detached task, so
// accepting never waits on request processing. Each task parses exactly one
// request, dispatches it, writes one response and closes the connection.
//
// Shutdown flow:
//  1. Stop() called
//  2. Listener closed (accept loop exits, no new connections)
//  3. Accept goroutine joined
//  4. Worker pool drained: queued connections are still served
//
// In-flight reads are not interrupted by Stop. A peer that never finishes
// its request keeps its worker busy until ReadTimeout (if set) expires.
//
// Thread safety:
// All methods are safe for concurrent use.
type HTTPAdapter struct {
	// config holds the adapter configuration (address, workers, limits)
	config HTTPConfig

	// dispatcher resolves requests to handlers
	dispatcher Dispatcher

	log *logger.Logger

	// metrics provides optional Prometheus metrics collection
	metrics metrics.HTTPMetrics

	// poolMetrics is handed to the worker pool built by Start
	poolMetrics metrics.WorkerPoolMetrics

	// limiter throttles the accept loop; unlimited by default
	limiter *ratelimiter.RateLimiter

	// mu guards the running state below
	mu         sync.Mutex
	running    bool
	listener   net.Listener
	pool       *workerpool.Pool
	acceptDone chan struct{}
	cancel     context.CancelFunc
	port       int

	// connCount tracks connections accepted and not yet closed
	connCount atomic.Int32
}

// New creates a new HTTPAdapter with the specified configuration.
//
// The adapter is created in a stopped state; call Start to begin serving.
// Zero values in config are replaced with defaults. log and m may be nil.
//
// Panics if config validation fails.
func New(config HTTPConfig, dispatcher Dispatcher, log *logger.Logger, m metrics.HTTPMetrics) *HTTPAdapter {
	config.applyDefaults()

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("invalid HTTP config: %v", err))
	}
	if dispatcher == nil {
		panic("http adapter: nil dispatcher")
	}

	if log == nil {
		log = logger.Discard()
	}
	if m == nil {
		m = metrics.NewNoopHTTPMetrics()
	}

	limiter := ratelimiter.New(config.AcceptRate.RequestsPerSecond, config.AcceptRate.Burst)
	if limiter.Enabled() {
		log.Debug("HTTP accept rate: %d/s (burst %d)", config.AcceptRate.RequestsPerSecond, config.AcceptRate.Burst)
	}

	return &HTTPAdapter{
		config:      config,
		dispatcher:  dispatcher,
		log:         log,
		metrics:     m,
		poolMetrics: metrics.NewNoopWorkerPoolMetrics(),
		limiter:     limiter,
	}
}

// SetWorkerPoolMetrics sets the metrics used by pools created on Start.
func (s *HTTPAdapter) SetWorkerPoolMetrics(m metrics.WorkerPoolMetrics) {
	if m == nil {
		m = metrics.NewNoopWorkerPoolMetrics()
	}
	s.mu.Lock()
	s.poolMetrics = m
	s.mu.Unlock()
}

// Start binds the configured host and port, builds the worker pool and
// begins accepting in the background. It returns once the listener is
// ready. Calling Start on a running adapter is a no-op.
func (s *HTTPAdapter) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create HTTP listener on %s: %w", addr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool := workerpool.New(s.config.WorkerCount, s.log, s.poolMetrics)

	s.listener = listener
	s.pool = pool
	s.cancel = cancel
	s.acceptDone = make(chan struct{})
	s.port = listener.Addr().(*net.TCPAddr).Port
	s.running = true

	s.log.Info("HTTP server listening on %s", listener.Addr())
	s.log.Debug("HTTP config: workers=%d max_request_size=%d read_timeout=%v write_timeout=%v",
		s.config.WorkerCount, s.config.MaxRequestSize, s.config.ReadTimeout, s.config.WriteTimeout)

	go s.acceptLoop(ctx, listener, pool, s.acceptDone)

	if s.config.MetricsLogInterval > 0 {
		go s.logMetrics(ctx)
	}

	return nil
}

// Retry delays after a hard accept error such as EMFILE.
const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// nextAcceptBackoff doubles the previous delay, starting at
// minAcceptBackoff and capped at maxAcceptBackoff.
func nextAcceptBackoff(prev time.Duration) time.Duration {
	if prev <= 0 {
		return minAcceptBackoff
	}
	if next := prev * 2; next < maxAcceptBackoff {
		return next
	}
	return maxAcceptBackoff
}

// acceptLoop accepts until the listener is closed by Stop.
func (s *HTTPAdapter) acceptLoop(ctx context.Context, listener net.Listener, pool *workerpool.Pool, done chan struct{}) {
	defer close(done)

	var backoff time.Duration
	for {
		tcpConn, err := listener.Accept()
		if err != nil {
			// Once stopped, accept errors are the closed listener.
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			// Unexpected error - log, back off and continue
			backoff = nextAcceptBackoff(backoff)
			s.log.Warn("Failed to accept HTTP connection: %v; retrying in %v", err, backoff)

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			continue
		}
		backoff = 0

		if err := s.limiter.Wait(ctx); err != nil {
			_ = tcpConn.Close()
			if ctx.Err() != nil {
				return
			}
			continue
		}

		s.metrics.RecordConnectionAccepted()
		current := s.connCount.Add(1)
		s.metrics.SetActiveConnections(current)

		conn := newConnection(s, tcpConn)
		if err := pool.SubmitDetached(conn.serve); err != nil {
			// Only happens if the pool closed under us.
			s.log.Debug("Dropping HTTP connection from %s: %v", tcpConn.RemoteAddr(), err)
			_ = tcpConn.Close()
			s.connectionClosed()
		}
	}
}

// connectionClosed updates connection accounting after a connection ends.
func (s *HTTPAdapter) connectionClosed() {
	current := s.connCount.Add(-1)
	s.metrics.RecordConnectionClosed()
	s.metrics.SetActiveConnections(current)
}

// Stop closes the listener, waits for the accept loop to exit and drains
// the worker pool within ctx. Stopping a stopped adapter is a no-op.
//
// Returns ctx.Err() if queued connections were still being served when ctx
// expired; they keep draining in the background.
func (s *HTTPAdapter) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	listener, pool, done, cancel := s.listener, s.pool, s.acceptDone, s.cancel
	s.port = 0
	s.mu.Unlock()

	s.log.Debug("HTTP shutdown initiated")

	cancel()
	if err := listener.Close(); err != nil {
		s.log.Debug("Error closing HTTP listener: %v", err)
	}
	<-done

	s.log.Info("HTTP graceful shutdown: draining %d active connection(s)", s.connCount.Load())

	if ctx == nil {
		ctx = context.Background()
	}
	if err := pool.ShutdownContext(ctx); err != nil {
		s.log.Warn("HTTP shutdown context cancelled: %d connection(s) still active: %v", s.connCount.Load(), err)
		return err
	}

	s.log.Info("HTTP graceful shutdown complete")
	return nil
}

// logMetrics periodically logs the active connection count until ctx ends.
func (s *HTTPAdapter) logMetrics(ctx context.Context) {
	ticker := time.NewTicker(s.config.MetricsLogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.log.Info("HTTP metrics: active_connections=%d", s.connCount.Load())
		}
	}
}

// Protocol returns "HTTP".
func (s *HTTPAdapter) Protocol() string {
	return "HTTP"
}

// Port returns the bound TCP port, or 0 when stopped.
func (s *HTTPAdapter) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Addr returns the listener address, or "" when stopped.
func (s *HTTPAdapter) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ""
	}
	return s.listener.Addr().String()
}

// GetActiveConnections returns the number of connections accepted and not
// yet closed, including those waiting for a worker.
func (s *HTTPAdapter) GetActiveConnections() int32 {
	return s.connCount.Load()
}

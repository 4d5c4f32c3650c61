package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/marmos91/deckd/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsShutdownTimeout bounds the drain when Start's context is cancelled.
const metricsShutdownTimeout = 5 * time.Second

// Server exposes a Prometheus gatherer over HTTP.
//
// Routes:
//   - GET /metrics: the gatherer in text or OpenMetrics format, 503 when
//     the server was built without one
//   - GET /healthz: "ok" while the server is up, for scrape-side liveness
//   - GET /: redirects to /metrics
type Server struct {
	server *http.Server
	addr   string
	log    *logger.Logger

	mu       sync.Mutex
	listener net.Listener

	shutdownOnce sync.Once
}

// ServerConfig configures the metrics HTTP server.
type ServerConfig struct {
	// Host to bind. Empty binds all interfaces.
	Host string

	// Port to bind. 0 picks an ephemeral port, see Server.Port.
	Port int
}

// NewServer creates a stopped metrics server serving g. A nil g keeps the
// routes up but answers /metrics with 503.
func NewServer(config ServerConfig, g prometheus.Gatherer, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}

	mux := http.NewServeMux()
	if g != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorLog:          promErrorLog{log},
		}))
	} else {
		mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics collection is disabled", http.StatusServiceUnavailable)
		})
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("GET /{$}", http.RedirectHandler("/metrics", http.StatusFound))

	return &Server{
		server: &http.Server{
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		addr: net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		log:  log,
	}
}

// Listen binds the configured address. Start calls it when the server is
// not yet bound; calling it first lets the caller read Port before serving.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to create metrics listener on %s: %w", s.addr, err)
	}
	s.listener = ln
	return nil
}

// Start serves until ctx is cancelled or serving fails. On cancellation it
// drains in-flight scrapes for up to five seconds and returns the result of
// Stop.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	s.log.Info("Metrics server listening on %s", ln.Addr())

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("metrics server failed: %w", err)
	}
}

// Stop shuts the server down once. Later calls return nil.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("metrics server shutdown error: %w", err)
			s.log.Error("Metrics server shutdown error: %v", err)
			return
		}

		// Shutdown only closes listeners handed to Serve.
		s.mu.Lock()
		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.mu.Unlock()

		s.log.Info("Metrics server stopped")
	})
	return shutdownErr
}

// Port returns the bound TCP port, or 0 before Listen.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return 0
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}

// promErrorLog routes promhttp encoding errors to the deckd logger.
type promErrorLog struct{ log *logger.Logger }

func (p promErrorLog) Println(v ...any) {
	p.log.Error("Metrics gather error: %s", fmt.Sprint(v...))
}

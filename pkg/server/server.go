package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/marmos91/deckd/internal/logger"
	"github.com/marmos91/deckd/pkg/adapter"
)

// DefaultShutdownTimeout bounds adapter shutdown when New is given zero.
const DefaultShutdownTimeout = 30 * time.Second

// DeckServer manages the lifecycle of the protocol adapters and of the
// resources they depend on.
//
// Lifecycle:
//  1. Creation: New() with a logger and shutdown timeout
//  2. Registration: AddAdapter() for each front end, AddCloser() for each
//     shared resource (database pool, log file)
//  3. Startup: Serve() starts all adapters in registration order
//  4. Shutdown: context cancellation stops the adapters in reverse order,
//     then closes the resources in reverse order
//
// Resources are closed only after every adapter has drained, so handlers
// still running during shutdown can keep using the database pool.
//
// Example usage:
//
//	srv := server.New(log, cfg.Server.ShutdownTimeout)
//	srv.AddCloser("database", pool)
//	_ = srv.AddAdapter(httpAdapter)
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := srv.Serve(ctx); err != nil {
//	    log.Error("%v", err)
//	}
type DeckServer struct {
	log             *logger.Logger
	shutdownTimeout time.Duration

	// mu protects adapters, closers and served
	mu       sync.Mutex
	adapters []adapter.Adapter
	closers  []namedCloser
	served   bool
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// New creates a DeckServer. A zero shutdownTimeout uses DefaultShutdownTimeout.
func New(log *logger.Logger, shutdownTimeout time.Duration) *DeckServer {
	if log == nil {
		log = logger.Discard()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}

	return &DeckServer{
		log:             log,
		shutdownTimeout: shutdownTimeout,
		adapters:        make([]adapter.Adapter, 0, 2),
	}
}

// AddAdapter registers a protocol adapter.
//
// Returns an error if an adapter for the same protocol is already registered.
//
// Panics if a is nil or Serve() has already been called (programmer error).
func (s *DeckServer) AddAdapter(a adapter.Adapter) error {
	if a == nil {
		panic("adapter cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.served {
		panic("cannot add adapter after Serve() has been called")
	}

	protocol := a.Protocol()
	for _, existing := range s.adapters {
		if existing.Protocol() == protocol {
			return fmt.Errorf("adapter for protocol %s already registered", protocol)
		}
	}

	s.adapters = append(s.adapters, a)
	s.log.Debug("Registered %s adapter", protocol)

	return nil
}

// AddCloser registers a resource to close once all adapters have stopped.
// Closers run in reverse registration order.
//
// Panics if c is nil or Serve() has already been called.
func (s *DeckServer) AddCloser(name string, c io.Closer) {
	if c == nil {
		panic("closer cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.served {
		panic("cannot add closer after Serve() has been called")
	}

	s.closers = append(s.closers, namedCloser{name: name, closer: c})
}

// Serve starts all registered adapters and blocks until ctx is cancelled.
//
// Error handling:
//   - If any adapter fails to start: stops the adapters already started,
//     closes the registered resources and returns the start error
//   - On cancellation: stops every adapter within the shutdown timeout,
//     closes the resources and returns nil, or the joined stop/close errors
//
// Serve may only be called once per DeckServer.
func (s *DeckServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.served {
		s.mu.Unlock()
		return fmt.Errorf("serve has already been called on this server instance")
	}
	s.served = true

	if len(s.adapters) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("no adapters registered; call AddAdapter() before Serve()")
	}

	adapters := make([]adapter.Adapter, len(s.adapters))
	copy(adapters, s.adapters)
	closers := make([]namedCloser, len(s.closers))
	copy(closers, s.closers)
	s.mu.Unlock()

	s.log.Info("Starting deckd with %d adapter(s)", len(adapters))

	startTime := time.Now()
	for i, a := range adapters {
		if err := a.Start(); err != nil {
			s.log.Error("%s adapter failed to start: %v", a.Protocol(), err)
			startErr := fmt.Errorf("%s adapter: %w", a.Protocol(), err)

			stopErr := s.stopAdapters(adapters[:i])
			closeErr := s.closeResources(closers)
			return errors.Join(startErr, stopErr, closeErr)
		}
		s.log.Info("%s adapter listening on port %d", a.Protocol(), a.Port())
	}

	s.log.Info("All adapters started in %v", time.Since(startTime))

	<-ctx.Done()
	s.log.Info("Shutdown signal received (reason: %v)", context.Cause(ctx))

	stopErr := s.stopAdapters(adapters)
	closeErr := s.closeResources(closers)

	if err := errors.Join(stopErr, closeErr); err != nil {
		return err
	}

	s.log.Info("deckd stopped gracefully")
	return nil
}

// stopAdapters stops adapters in reverse registration order, sharing one
// shutdown deadline across all of them.
func (s *DeckServer) stopAdapters(adapters []adapter.Adapter) error {
	if len(adapters) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.log.Info("Initiating graceful shutdown of %d adapter(s)", len(adapters))

	var errs []error
	for i := len(adapters) - 1; i >= 0; i-- {
		a := adapters[i]
		if err := a.Stop(ctx); err != nil {
			s.log.Error("Error stopping %s adapter: %v", a.Protocol(), err)
			errs = append(errs, fmt.Errorf("stop %s adapter: %w", a.Protocol(), err))
			continue
		}
		s.log.Debug("%s adapter stopped", a.Protocol())
	}

	return errors.Join(errs...)
}

// closeResources closes registered resources in reverse order.
func (s *DeckServer) closeResources(closers []namedCloser) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.closer.Close(); err != nil {
			s.log.Error("Error closing %s: %v", c.name, err)
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
			continue
		}
		s.log.Debug("Closed %s", c.name)
	}

	return errors.Join(errs...)
}

// Adapters returns a snapshot of currently registered adapters.
func (s *DeckServer) Adapters() []adapter.Adapter {
	s.mu.Lock()
	defer s.mu.Unlock()

	adapters := make([]adapter.Adapter, len(s.adapters))
	copy(adapters, s.adapters)
	return adapters
}

package adapter

import (
	"context"
)

// Adapter is a network front end managed by the deckd server.
//
// Lifecycle:
//  1. Creation: the adapter is built from its configuration section
//  2. Startup: Start binds the listener and returns once it is accepting
//  3. Shutdown: Stop stops accepting, drains queued work and returns
//
// Thread safety:
// Implementations must be safe for concurrent use. Stop may race with
// in-flight requests and may be called more than once.
type Adapter interface {
	// Start binds the listener and begins accepting in the background.
	//
	// Starting an adapter that is already running is a no-op. A bind or listen
	// failure is returned and leaves the adapter stopped.
	Start() error

	// Stop initiates graceful shutdown.
	//
	// Implementations must:
	//   - Be safe to call multiple times (idempotent)
	//   - Stop accepting before draining queued work
	//   - Respect the context deadline while waiting for the drain
	//
	// Returns:
	//   - nil if shutdown completed
	//   - ctx.Err() if the drain outlived ctx; work keeps draining in the background
	Stop(ctx context.Context) error

	// Protocol returns the human-readable protocol name for logging and metrics.
	//
	// Examples: "HTTP"
	Protocol() string

	// Port returns the TCP port the adapter is listening on.
	//
	// When configured with port 0 this is the port the OS assigned. Returns 0
	// if the adapter is not running.
	Port() int
}

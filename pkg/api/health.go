// Package api registers the handlers deckd serves itself.
package api

import (
	"context"
	"time"

	"github.com/marmos91/deckd/internal/logger"
	"github.com/marmos91/deckd/internal/protocol/http1"
	"github.com/marmos91/deckd/pkg/dbpool"
	"github.com/marmos91/deckd/pkg/router"
)

// DBChecker is the part of the connection pool the health check needs.
// *dbpool.SQLPool satisfies it.
type DBChecker interface {
	Ping(ctx context.Context) error
	Stats() dbpool.Stats
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// DBHealthResponse is the body of GET /api/health/db.
type DBHealthResponse struct {
	Status string       `json:"status"`
	Pool   PoolResponse `json:"pool"`
}

// PoolResponse reports connection pool occupancy.
type PoolResponse struct {
	Size      int `json:"size"`
	Available int `json:"available"`
	Waiters   int `json:"waiters"`
}

// DBPingTimeout bounds how long the database health check waits, including
// the wait for a free connection.
const DBPingTimeout = 5 * time.Second

// Register adds the built-in routes to r. db may be nil, in which case
// only the liveness route is registered.
func Register(r *router.Router, db DBChecker, log *logger.Logger) {
	r.AddRoute("GET", "/api/health", Health)
	if db != nil {
		r.AddRoute("GET", "/api/health/db", DBHealth(db, log))
	}
}

// Health answers 200 {"status":"ok"}.
func Health(context.Context, *http1.Request) (*http1.Response, error) {
	return http1.JSON(http1.StatusOK, HealthResponse{Status: "ok"}), nil
}

// DBHealth pings the database through a leased connection.
func DBHealth(db DBChecker, log *logger.Logger) router.Handler {
	if log == nil {
		log = logger.Discard()
	}

	return func(ctx context.Context, _ *http1.Request) (*http1.Response, error) {
		ctx, cancel := context.WithTimeout(ctx, DBPingTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Warn("Database health check failed (request %s): %v", http1.RequestIDFromContext(ctx), err)
			return http1.Message(http1.StatusInternalServerError, "Database unavailable"), nil
		}

		stats := db.Stats()
		return http1.JSON(http1.StatusOK, DBHealthResponse{
			Status: "ok",
			Pool: PoolResponse{
				Size:      stats.Size,
				Available: stats.Available,
				Waiters:   stats.Waiters,
			},
		}), nil
	}
}

// Package router dispatches parsed requests to handlers by exact
// (method, path) match.
package router

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/deckd/internal/protocol/http1"
)

// Handler serves one request. A returned error is turned into a 500 by the
// server; the error text never reaches the client.
type Handler func(ctx context.Context, req *http1.Request) (*http1.Response, error)

// Router is an exact-match dispatch table. Routes are normally registered
// before serving starts, but registration is safe at any time.
type Router struct {
	mu     sync.RWMutex
	routes map[string]Handler
}

// New returns an empty Router.
func New() *Router {
	return &Router{routes: make(map[string]Handler)}
}

// AddRoute registers h for method and path. The method is matched without
// regard to case; the path must match exactly. Registering the same pair
// again replaces the previous handler.
func (r *Router) AddRoute(method, path string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[routeKey(method, path)] = h
}

// Handle answers OPTIONS for any path with 204, otherwise runs the matching
// handler on the calling goroutine and returns its result unchanged. A miss
// yields 404 {"message":"Route not found"}.
func (r *Router) Handle(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	if strings.EqualFold(req.Method, "OPTIONS") {
		resp := http1.NewResponse()
		resp.StatusCode = http1.StatusNoContent
		resp.StatusMessage = http1.ReasonPhrase(http1.StatusNoContent)
		resp.Body = nil
		return resp, nil
	}

	r.mu.RLock()
	h, ok := r.routes[routeKey(req.Method, req.Path)]
	r.mu.RUnlock()

	if !ok {
		return http1.Message(http1.StatusNotFound, "Route not found"), nil
	}
	return h(ctx, req)
}

// Routes lists the registered keys in sorted order, e.g. "get:/api/health".
func (r *Router) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func routeKey(method, path string) string {
	return strings.ToLower(method) + ":" + path
}

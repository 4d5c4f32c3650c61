package http

import (
	"context"
	"net"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/deckd/internal/logger"
	"github.com/marmos91/deckd/internal/protocol/http1"
)

// HTTPConnection serves exactly one request on an accepted connection.
type HTTPConnection struct {
	server *HTTPAdapter
	conn   net.Conn
	id     string
	log    *logger.Logger
}

func newConnection(server *HTTPAdapter, conn net.Conn) *HTTPConnection {
	id := uuid.NewString()
	return &HTTPConnection{
		server: server,
		conn:   conn,
		id:     id,
		log:    server.log.With("request_id", id),
	}
}

// serve reads, dispatches and answers one request, then closes the
// connection whatever happened. It runs on a worker.
func (c *HTTPConnection) serve() {
	start := time.Now()
	clientAddr := c.conn.RemoteAddr().String()

	defer func() {
		// Panic recovery - prevents a single connection from killing the worker
		if r := recover(); r != nil {
			c.log.Error("Panic in HTTP connection handler from %s: %v", clientAddr, r)
		}
		_ = c.conn.Close()
		c.server.connectionClosed()
	}()

	cfg := c.server.config
	if cfg.ReadTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout)); err != nil {
			c.log.Warn("Failed to set read deadline for %s: %v", clientAddr, err)
		}
	}

	method := "INVALID"
	req, err := http1.ParseRequest(c.conn, http1.ParseOptions{
		MaxRequestSize: cfg.MaxRequestSize,
		ReadChunkSize:  cfg.ReadChunkSize,
	})

	var resp *http1.Response
	if err != nil {
		c.log.Debug("Invalid HTTP request from %s: %v", clientAddr, err)
		c.server.metrics.RecordParseFailure()
		resp = http1.Message(http1.StatusBadRequest, "Invalid HTTP request")
	} else {
		method = strings.ToUpper(req.Method)
		ctx := http1.WithRequestID(context.Background(), c.id)
		resp = c.dispatch(ctx, req)
	}

	if cfg.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout)); err != nil {
			c.log.Warn("Failed to set write deadline for %s: %v", clientAddr, err)
		}
	}

	if err := http1.WriteResponse(c.conn, resp); err != nil {
		c.log.Debug("Failed to write response to %s: %v", clientAddr, err)
	}

	duration := time.Since(start)
	c.server.metrics.RecordRequest(method, resp.StatusCode, duration)

	if req != nil {
		c.log.Debug("%s %s from %s -> %d (%v)", method, req.Target, clientAddr, resp.StatusCode, duration)
	}
}

// dispatch runs the handler. Errors, panics and missing responses all become
// a generic 500; the detail only goes to the log.
func (c *HTTPConnection) dispatch(ctx context.Context, req *http1.Request) (resp *http1.Response) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Panic while processing %s %s: %v\n%s", req.Method, req.Path, r, debug.Stack())
			c.server.metrics.RecordHandlerFailure()
			resp = internalError()
		}
	}()

	var err error
	resp, err = c.server.dispatcher.Handle(ctx, req)
	if err != nil {
		c.log.Error("Unhandled error while processing %s %s: %v", req.Method, req.Path, err)
		c.server.metrics.RecordHandlerFailure()
		return internalError()
	}
	if resp == nil {
		c.log.Error("Handler for %s %s returned no response", req.Method, req.Path)
		c.server.metrics.RecordHandlerFailure()
		return internalError()
	}

	return resp
}

func internalError() *http1.Response {
	return http1.Message(http1.StatusInternalServerError, "Internal server error")
}

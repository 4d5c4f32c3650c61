package http1

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasonPhrase(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "OK"},
		{201, "Created"},
		{204, "No Content"},
		{206, "Partial Content"},
		{400, "Bad Request"},
		{401, "Unauthorized"},
		{403, "Forbidden"},
		{404, "Not Found"},
		{409, "Conflict"},
		{416, "Range Not Satisfiable"},
		{422, "Unprocessable Entity"},
		{500, "Internal Server Error"},
		{503, "OK"},
		{302, "OK"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ReasonPhrase(tt.code), "code %d", tt.code)
	}
}

func TestResponseConstructors(t *testing.T) {
	t.Run("NewResponse", func(t *testing.T) {
		resp := NewResponse()
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "OK", resp.StatusMessage)
		assert.Equal(t, ContentTypeJSON, resp.Headers["content-type"])
		assert.Equal(t, "{}", string(resp.Body))
	})

	t.Run("JSON", func(t *testing.T) {
		resp := JSON(StatusCreated, map[string]int{"id": 3})
		assert.Equal(t, 201, resp.StatusCode)
		assert.Equal(t, "Created", resp.StatusMessage)
		assert.JSONEq(t, `{"id":3}`, string(resp.Body))
	})

	t.Run("JSONUnencodable", func(t *testing.T) {
		resp := JSON(StatusOK, make(chan int))
		assert.Equal(t, 500, resp.StatusCode)
		assert.JSONEq(t, `{"message":"Internal server error"}`, string(resp.Body))
	})

	t.Run("Text", func(t *testing.T) {
		resp := Text(StatusForbidden, "nope")
		assert.Equal(t, ContentTypeText, resp.Headers["content-type"])
		assert.Equal(t, "Forbidden", resp.StatusMessage)
		assert.Equal(t, "nope", string(resp.Body))
	})

	t.Run("Message", func(t *testing.T) {
		resp := Message(StatusNotFound, "Route not found")
		assert.Equal(t, `{"message":"Route not found"}`, string(resp.Body))
	})
}

func TestWriteResponse(t *testing.T) {
	t.Run("Normalization", func(t *testing.T) {
		resp := JSON(StatusOK, map[string]string{"status": "ok"})
		resp.SetHeader("Content-Length", "999")
		resp.SetHeader("Connection", "keep-alive")

		var buf bytes.Buffer
		require.NoError(t, WriteResponse(&buf, resp))

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"))
		assert.Contains(t, out, "connection: close\r\n")
		assert.Contains(t, out, "content-length: 15\r\n")
		assert.NotContains(t, out, "999")
		assert.Contains(t, out, "access-control-allow-origin: *\r\n")
		assert.Contains(t, out, "access-control-allow-headers: "+CORSAllowHeaders+"\r\n")
		assert.Contains(t, out, "access-control-allow-methods: "+CORSAllowMethods+"\r\n")
		assert.True(t, strings.HasSuffix(out, "\r\n\r\n{\"status\":\"ok\"}"))

		// The handler's response is left untouched.
		assert.Equal(t, "999", resp.Headers["content-length"])
	})

	t.Run("DefaultsContentType", func(t *testing.T) {
		resp := &Response{StatusCode: 204}

		var buf bytes.Buffer
		require.NoError(t, WriteResponse(&buf, resp))

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "HTTP/1.1 204 No Content\r\n"))
		assert.Contains(t, out, "content-type: application/json\r\n")
		assert.Contains(t, out, "content-length: 0\r\n")
	})

	t.Run("ExplicitStatusMessageWins", func(t *testing.T) {
		resp := NewResponse()
		resp.StatusCode = 503
		resp.StatusMessage = "Service Unavailable"

		var buf bytes.Buffer
		require.NoError(t, WriteResponse(&buf, resp))
		assert.True(t, strings.HasPrefix(buf.String(), "HTTP/1.1 503 Service Unavailable\r\n"))
	})

	t.Run("UnknownCodeDefaultsToOK", func(t *testing.T) {
		resp := &Response{StatusCode: 418}

		var buf bytes.Buffer
		require.NoError(t, WriteResponse(&buf, resp))
		assert.True(t, strings.HasPrefix(buf.String(), "HTTP/1.1 418 OK\r\n"))
	})

	t.Run("SingleWrite", func(t *testing.T) {
		w := &countingWriter{}
		require.NoError(t, WriteResponse(w, NewResponse()))
		assert.Equal(t, 1, w.writes)
	})

	t.Run("WriteError", func(t *testing.T) {
		err := WriteResponse(failingWriter{}, NewResponse())
		assert.ErrorIs(t, err, errBrokenPipe)
	})

	t.Run("RoundTripsThroughParser", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteResponse(&buf, Text(StatusOK, "hello")))

		head, body, ok := strings.Cut(buf.String(), "\r\n\r\n")
		require.True(t, ok)
		assert.Equal(t, "hello", body)
		assert.Contains(t, head, "content-type: text/plain; charset=utf-8")
	})
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
}

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

var errBrokenPipe = errors.New("broken pipe")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errBrokenPipe
}

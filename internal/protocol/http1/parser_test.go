package http1

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	t.Run("RequestLineAndHeaders", func(t *testing.T) {
		raw := "GET /api/health?x=1 HTTP/1.1\r\nHost: example\r\n  X-Trace :  abc \r\n\r\n"

		req, err := ParseRequest(strings.NewReader(raw), ParseOptions{})
		require.NoError(t, err)

		assert.Equal(t, "GET", req.Method)
		assert.Equal(t, "/api/health?x=1", req.Target)
		assert.Equal(t, "/api/health", req.Path)
		assert.Equal(t, "HTTP/1.1", req.Version)
		assert.Equal(t, "example", req.Headers["host"])
		assert.Equal(t, "abc", req.Headers["x-trace"])
		assert.Equal(t, "abc", req.Header("X-TRACE"))
		assert.Equal(t, "1", req.Query("x"))
		assert.Empty(t, req.Body)
	})

	t.Run("MissingVersionAccepted", func(t *testing.T) {
		req, err := ParseRequest(strings.NewReader("GET /\r\n\r\n"), ParseOptions{})
		require.NoError(t, err)
		assert.Equal(t, "/", req.Path)
		assert.Empty(t, req.Version)
	})

	t.Run("BodyFramedByContentLength", func(t *testing.T) {
		raw := "POST /api/ppt HTTP/1.1\r\nContent-Length: 11\r\n\r\n{\"a\":\"bc\"}\nEXTRA"

		req, err := ParseRequest(strings.NewReader(raw), ParseOptions{})
		require.NoError(t, err)
		assert.Equal(t, "{\"a\":\"bc\"}\n", string(req.Body))
	})

	t.Run("BodySpanningManySmallReads", func(t *testing.T) {
		body := strings.Repeat("z", 10000)
		raw := "POST /upload HTTP/1.1\r\nContent-Length: 10000\r\n\r\n" + body

		req, err := ParseRequest(iotest.OneByteReader(strings.NewReader(raw)), ParseOptions{ReadChunkSize: 7})
		require.NoError(t, err)
		assert.Equal(t, body, string(req.Body))
	})

	t.Run("TerminatorSplitAcrossChunks", func(t *testing.T) {
		raw := "GET /a HTTP/1.1\r\nHost: x\r\n\r\n"

		req, err := ParseRequest(iotest.HalfReader(strings.NewReader(raw)), ParseOptions{ReadChunkSize: 3})
		require.NoError(t, err)
		assert.Equal(t, "/a", req.Path)
	})

	t.Run("HeaderWithoutColonSkipped", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\ngarbage line\r\nAccept: */*\r\n\r\n"

		req, err := ParseRequest(strings.NewReader(raw), ParseOptions{})
		require.NoError(t, err)
		assert.Len(t, req.Headers, 1)
		assert.Equal(t, "*/*", req.Headers["accept"])
	})

	t.Run("RepeatedHeaderLastWins", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nX-A: 1\r\nx-a: 2\r\n\r\n"

		req, err := ParseRequest(strings.NewReader(raw), ParseOptions{})
		require.NoError(t, err)
		assert.Equal(t, "2", req.Header("x-a"))
	})
}

func TestParseRequestErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		opts    ParseOptions
		wantErr error
	}{
		{"Empty", "", ParseOptions{}, ErrMalformedRequest},
		{"SingleNewline", "\n", ParseOptions{}, ErrMalformedRequest},
		{"NoTerminator", "GET / HTTP/1.1\r\nHost: x\r\n", ParseOptions{}, ErrMalformedRequest},
		{"MissingTarget", "GET\r\n\r\n", ParseOptions{}, ErrMalformedRequest},
		{"BlankRequestLine", "\r\n\r\n", ParseOptions{}, ErrMalformedRequest},
		{"BadContentLength", "POST / HTTP/1.1\r\nContent-Length: ten\r\n\r\n", ParseOptions{}, ErrMalformedRequest},
		{"NegativeContentLength", "POST / HTTP/1.1\r\nContent-Length: -1\r\n\r\n", ParseOptions{}, ErrMalformedRequest},
		{
			"ContentLengthOverLimit",
			"POST / HTTP/1.1\r\nContent-Length: 2048\r\n\r\n",
			ParseOptions{MaxRequestSize: 1024},
			ErrRequestTooLarge,
		},
		{
			"HeadersOverLimit",
			"GET / HTTP/1.1\r\nX-Big: " + strings.Repeat("a", 4096),
			ParseOptions{MaxRequestSize: 1024, ReadChunkSize: 256},
			ErrRequestTooLarge,
		},
		{"TruncatedBody", "POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\nabc", ParseOptions{}, ErrIncompleteBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest(strings.NewReader(tt.raw), tt.opts)
			assert.Nil(t, req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseRequestRejectsBeforeReadingBody(t *testing.T) {
	// Only the headers ever arrive, so a late check would report an
	// incomplete body instead.
	head := "POST / HTTP/1.1\r\nContent-Length: 5000000\r\n\r\n"
	r := iotest.DataErrReader(strings.NewReader(head))

	_, err := ParseRequest(r, ParseOptions{})
	assert.ErrorIs(t, err, ErrRequestTooLarge)
}

func TestParseRequestReadError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := ParseRequest(iotest.ErrReader(boom), ParseOptions{})
	assert.ErrorIs(t, err, boom)
}

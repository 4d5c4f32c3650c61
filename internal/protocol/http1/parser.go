package http1

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseOptions bounds how a request is read off the wire.
type ParseOptions struct {
	// MaxRequestSize caps both the header section and the declared body.
	// Zero means DefaultMaxRequestSize.
	MaxRequestSize int

	// ReadChunkSize is the buffer size of each Read. Zero means
	// DefaultReadChunkSize.
	ReadChunkSize int
}

func (o ParseOptions) withDefaults() ParseOptions {
	if o.MaxRequestSize <= 0 {
		o.MaxRequestSize = DefaultMaxRequestSize
	}
	if o.ReadChunkSize <= 0 {
		o.ReadChunkSize = DefaultReadChunkSize
	}
	return o
}

// ParseRequest reads exactly one request from r.
//
// Bytes are read in chunks until the blank line ending the headers is seen,
// then until Content-Length body bytes have arrived. Bytes past the body are
// ignored since the connection is closed after the response. Transfer
// encodings other than identity are not understood.
//
// The returned error wraps ErrMalformedRequest, ErrRequestTooLarge or
// ErrIncompleteBody for framing problems, or the underlying read error.
func ParseRequest(r io.Reader, opts ParseOptions) (*Request, error) {
	opts = opts.withDefaults()

	var (
		raw           = make([]byte, 0, opts.ReadChunkSize)
		chunk         = make([]byte, opts.ReadChunkSize)
		headerEnd     = -1
		contentLength = 0
		req           *Request
	)

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			searchFrom := len(raw) - (len(headerTerminator) - 1)
			if searchFrom < 0 {
				searchFrom = 0
			}
			raw = append(raw, chunk[:n]...)

			if headerEnd < 0 {
				if idx := bytes.Index(raw[searchFrom:], []byte(headerTerminator)); idx >= 0 {
					headerEnd = searchFrom + idx

					var perr error
					req, contentLength, perr = parseHead(raw[:headerEnd], opts.MaxRequestSize)
					if perr != nil {
						return nil, perr
					}
				} else if len(raw) > opts.MaxRequestSize {
					return nil, fmt.Errorf("%w: header section exceeds %d bytes", ErrRequestTooLarge, opts.MaxRequestSize)
				}
			}

			if headerEnd >= 0 && len(raw) >= headerEnd+len(headerTerminator)+contentLength {
				break
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read request: %w", err)
		}
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty request", ErrMalformedRequest)
	}
	if headerEnd < 0 {
		return nil, fmt.Errorf("%w: missing header terminator", ErrMalformedRequest)
	}

	bodyStart := headerEnd + len(headerTerminator)
	if len(raw) < bodyStart+contentLength {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrIncompleteBody, len(raw)-bodyStart, contentLength)
	}
	if contentLength > 0 {
		req.Body = raw[bodyStart : bodyStart+contentLength]
	}

	return req, nil
}

// parseHead parses the request line and headers, excluding the terminator.
func parseHead(head []byte, maxBody int) (*Request, int, error) {
	lines := strings.Split(string(head), "\n")

	fields := strings.Fields(strings.TrimSuffix(lines[0], "\r"))
	if len(fields) < 2 {
		return nil, 0, fmt.Errorf("%w: missing method or target", ErrMalformedRequest)
	}

	req := &Request{
		Method:      fields[0],
		Target:      fields[1],
		Path:        fields[1],
		Headers:     make(map[string]string),
		QueryParams: make(map[string]string),
	}
	if len(fields) > 2 {
		req.Version = fields[2]
	}
	if path, query, ok := strings.Cut(req.Target, "?"); ok {
		req.Path = path
		req.QueryParams = ParseQuery(query)
	}

	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		req.Headers[strings.ToLower(trim(name))] = trim(value)
	}

	contentLength := 0
	if v, ok := req.Headers["content-length"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, 0, fmt.Errorf("%w: invalid content-length %q", ErrMalformedRequest, v)
		}
		if n > maxBody {
			return nil, 0, fmt.Errorf("%w: content-length %d exceeds %d", ErrRequestTooLarge, n, maxBody)
		}
		contentLength = n
	}

	return req, contentLength, nil
}

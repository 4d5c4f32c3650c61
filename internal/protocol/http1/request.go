package http1

import "strings"

// Request is one parsed HTTP/1.1 request.
type Request struct {
	// Method as sent on the request line (case preserved).
	Method string

	// Target is the raw request target, path plus optional query.
	Target string

	// Path is Target without the query string.
	Path string

	// Version is the protocol token from the request line, possibly empty.
	Version string

	// Headers maps lowercased, trimmed names to trimmed values. A repeated
	// header keeps its last value.
	Headers map[string]string

	// QueryParams holds the decoded query string. A repeated key keeps its
	// last value; a key without '=' maps to "".
	QueryParams map[string]string

	// Body holds exactly Content-Length bytes, or nothing.
	Body []byte
}

// Header returns the value of the named header, ignoring case.
func (r *Request) Header(name string) string {
	return r.Headers[strings.ToLower(trim(name))]
}

// Query returns the decoded value of the named query parameter.
func (r *Request) Query(name string) string {
	return r.QueryParams[name]
}

// trim strips spaces, tabs, CR and LF from both ends.
func trim(s string) string {
	return strings.Trim(s, " \t\r\n")
}

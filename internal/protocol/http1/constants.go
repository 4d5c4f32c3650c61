package http1

// Framing limits
const (
	// DefaultMaxRequestSize bounds the bytes accepted for headers and for the
	// declared body of a single request (1 MiB).
	DefaultMaxRequestSize = 1 << 20

	// DefaultReadChunkSize is the size of each read from the connection.
	DefaultReadChunkSize = 4096
)

// headerTerminator marks the end of the header section.
const headerTerminator = "\r\n\r\n"

// CORS values applied to every response.
const (
	CORSAllowOrigin  = "*"
	CORSAllowHeaders = "Content-Type, Authorization, ngrok-skip-browser-warning"
	CORSAllowMethods = "GET, POST, DELETE, OPTIONS, HEAD"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
)

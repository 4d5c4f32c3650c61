package http1

import "errors"

// Framing errors. All of them are answered with 400.
var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrRequestTooLarge  = errors.New("request too large")
	ErrIncompleteBody   = errors.New("incomplete request body")
)

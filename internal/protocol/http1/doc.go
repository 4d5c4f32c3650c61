// Package http1 implements the subset of HTTP/1.1 framing deckd serves: one
// request per connection, bodies framed only by Content-Length, and a
// response that always closes the connection.
package http1

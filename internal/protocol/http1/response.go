package http1

import (
	"encoding/json"
	"strings"
)

// Response is what a handler hands back to the server. The server fills in
// CORS, connection and content-length headers before writing it.
type Response struct {
	StatusCode int

	// StatusMessage is written on the status line when set. When empty the
	// phrase comes from ReasonPhrase.
	StatusMessage string

	// Headers uses lowercase names.
	Headers map[string]string

	Body []byte
}

// NewResponse returns a 200 JSON response with an empty object body.
func NewResponse() *Response {
	return &Response{
		StatusCode:    StatusOK,
		StatusMessage: "OK",
		Headers:       map[string]string{"content-type": ContentTypeJSON},
		Body:          []byte("{}"),
	}
}

// JSON returns a response with payload encoded as the body.
//
// A payload that cannot be encoded yields a 500 with a generic message.
func JSON(status int, payload any) *Response {
	body, err := json.Marshal(payload)
	if err != nil {
		return Message(StatusInternalServerError, "Internal server error")
	}

	resp := NewResponse()
	resp.StatusCode = status
	resp.StatusMessage = ReasonPhrase(status)
	resp.Body = body
	return resp
}

// Text returns a plain text response.
func Text(status int, message string) *Response {
	resp := NewResponse()
	resp.StatusCode = status
	resp.StatusMessage = ReasonPhrase(status)
	resp.Headers["content-type"] = ContentTypeText
	resp.Body = []byte(message)
	return resp
}

// Message returns the {"message": msg} body used by every error path.
func Message(status int, message string) *Response {
	body, _ := json.Marshal(struct {
		Message string `json:"message"`
	}{message})

	resp := NewResponse()
	resp.StatusCode = status
	resp.StatusMessage = ReasonPhrase(status)
	resp.Body = body
	return resp
}

// SetHeader stores a header under its lowercased name.
func (r *Response) SetHeader(name, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[strings.ToLower(trim(name))] = value
}

// ApplyCORS sets the three CORS headers sent on every response.
func (r *Response) ApplyCORS() {
	r.SetHeader("access-control-allow-origin", CORSAllowOrigin)
	r.SetHeader("access-control-allow-headers", CORSAllowHeaders)
	r.SetHeader("access-control-allow-methods", CORSAllowMethods)
}

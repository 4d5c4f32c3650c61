package http1

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Finalize returns a copy of resp with the headers every response carries:
// the CORS triplet, a default content-type, connection: close and a
// content-length computed from the body. Handler supplied values for
// connection and content-length are overwritten.
func Finalize(resp *Response) *Response {
	out := &Response{
		StatusCode:    resp.StatusCode,
		StatusMessage: resp.StatusMessage,
		Headers:       make(map[string]string, len(resp.Headers)+6),
		Body:          resp.Body,
	}
	for k, v := range resp.Headers {
		out.SetHeader(k, v)
	}

	out.ApplyCORS()
	if _, ok := out.Headers["content-type"]; !ok {
		out.Headers["content-type"] = ContentTypeJSON
	}
	out.Headers["connection"] = "close"
	out.Headers["content-length"] = strconv.Itoa(len(out.Body))

	return out
}

// WriteResponse finalizes resp and writes it to w in a single Write.
// Headers are emitted in sorted order.
func WriteResponse(w io.Writer, resp *Response) error {
	final := Finalize(resp)

	reason := final.StatusMessage
	if reason == "" {
		reason = ReasonPhrase(final.StatusCode)
	}

	names := make([]string, 0, len(final.Headers))
	for name := range final.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.Grow(128 + len(final.Body))
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", final.StatusCode, reason)
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(final.Headers[name])
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(final.Body)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

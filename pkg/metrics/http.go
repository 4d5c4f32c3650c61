package metrics

import "time"

// HTTPMetrics provides observability for the HTTP adapter.
//
// Implementations can collect metrics about request outcomes, connection
// lifecycle and framing failures. This interface is optional - if not
// provided to the HTTP adapter, a no-op implementation is used.
type HTTPMetrics interface {
	// RecordRequest records a completed request.
	//
	// Parameters:
	//   - method: Request method as sent by the client (normalized to upper case)
	//   - status: Final status code written to the client
	//   - duration: Time from accepted connection to response written
	RecordRequest(method string, status int, duration time.Duration)

	// RecordParseFailure counts requests rejected with 400 before routing.
	RecordParseFailure()

	// RecordHandlerFailure counts handler errors and panics converted to 500.
	RecordHandlerFailure()

	// SetActiveConnections updates the current connection count.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the total accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the total closed connections counter.
	RecordConnectionClosed()
}

// NewNoopHTTPMetrics returns an HTTPMetrics that records nothing.
func NewNoopHTTPMetrics() HTTPMetrics {
	return noopHTTPMetrics{}
}

type noopHTTPMetrics struct{}

func (noopHTTPMetrics) RecordRequest(string, int, time.Duration) {}
func (noopHTTPMetrics) RecordParseFailure()                      {}
func (noopHTTPMetrics) RecordHandlerFailure()                    {}
func (noopHTTPMetrics) SetActiveConnections(int32)               {}
func (noopHTTPMetrics) RecordConnectionAccepted()                {}
func (noopHTTPMetrics) RecordConnectionClosed()                  {}

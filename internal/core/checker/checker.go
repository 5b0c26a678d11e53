// Package checker defines probe primitives and the timeout envelope that executes them
package checker

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Status classifies one probe outcome or a derived service state
type Status string

const (
	// StatusUp means the endpoint answered as expected
	StatusUp Status = "up"
	// StatusDegraded means the endpoint answered but outside normal bounds
	StatusDegraded Status = "degraded"
	// StatusDown means the endpoint failed to answer acceptably
	StatusDown Status = "down"
)

// Error codes recorded on failure results
const (
	// ErrCodeTimeout marks a probe cut off by its deadline
	ErrCodeTimeout = "TIMEOUT"
	// ErrCodeExecution marks a probe that failed for any other reason
	ErrCodeExecution = "CHECK_EXECUTION_ERROR"
)

// StatusForHTTP maps a response code onto the default status bands:
// 5xx and above are down, 4xx degraded, anything else up
func StatusForHTTP(code int) Status {
	switch {
	case code >= 500:
		return StatusDown
	case code >= 400:
		return StatusDegraded
	default:
		return StatusUp
	}
}

// Result is the in-memory outcome of one probe execution
type Result struct {
	CheckKey     string         `json:"check_key"`
	Status       Status         `json:"status"`
	ObservedAt   time.Time      `json:"observed_at"`
	LatencyMS    *int           `json:"latency_ms,omitempty"`
	HTTPStatus   *int           `json:"http_status,omitempty"`
	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Check is one HTTP probe bound to a single endpoint
type Check interface {
	// Key returns the check key, unique within its service
	Key() string
	// Run probes the endpoint through the supplied client. A missing CheckKey
	// or ObservedAt on the returned Result is filled in by Execute
	Run(ctx context.Context, client Client) (Result, error)
}

// Request describes one outbound probe request
type Request struct {
	Method string
	URL    string
	Header http.Header
	// Proxy is an opaque per-check forward proxy setting; the client resolves it
	Proxy string
	// Stream skips response buffering and hands the raw body to the caller
	Stream bool
}

// Metadata keys clients set when they buffer and cap a response body
const (
	MetaBodyTruncated = "body_truncated_by_client"
	MetaBodyLimit     = "body_limit_bytes"
	MetaBodySize      = "body_size_bytes"
)

// Response is the outcome of one probe request. Body holds the buffered
// payload, capped at the client's limit; a streaming request gets RawBody
// instead and the caller owns closing it
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Meta carries client annotations such as the body truncation keys
	Meta map[string]any
	// Latency is the wall time the request took as measured by the client
	Latency time.Duration
	RawBody io.ReadCloser
}

// Client is the outbound HTTP seam checks probe through.
// adapters/probe provides the bounded production implementation
type Client interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

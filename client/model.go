package client

import (
	"net/http"
	"time"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultConcurrency = 25
	defaultUserAgent   = "Nylas Go SDK"

	// maxDrainSize caps how much of an error response body is discarded
	// before the connection is closed instead of reused.
	maxDrainSize = 4 << 10 // 4KB

	contentTypeJSON = "application/json"
	requestIDHeader = "X-Request-ID"
)

// execFn represents a func to operate on a classified response.
type execFn func(response *http.Response) error

// HeaderFunc inspects a response after its status has been classified
// and before its body is read. A non-nil error aborts the call.
type HeaderFunc func(response *http.Response) error

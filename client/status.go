package client

import (
	"net/http"
)

// Kind enumerates the error taxonomy.
type Kind int

const (
	KindUnknown Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindMethodNotAllowed
	KindGone
	KindTeapot
	KindSendingError
	KindTooManyRequests
	KindServerError
	KindDefault
	KindNotReady
	KindTransport
	KindInvalidInput
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindBadRequest:       "bad-request",
	KindUnauthorized:     "unauthorized",
	KindForbidden:        "forbidden",
	KindNotFound:         "not-found",
	KindMethodNotAllowed: "method-not-allowed",
	KindGone:             "gone",
	KindTeapot:           "teapot",
	KindSendingError:     "sending-error",
	KindTooManyRequests:  "too-many-requests",
	KindServerError:      "server-error",
	KindDefault:          "unclassified",
	KindNotReady:         "not-ready",
	KindTransport:        "transport",
	KindInvalidInput:     "invalid-input",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

type entry struct {
	kind     Kind
	code     int
	message  string
	sentinel error
}

// statusTable is keyed by HTTP status. It is read-only after init.
var statusTable = map[int]entry{
	http.StatusBadRequest: {
		kind:     KindBadRequest,
		code:     http.StatusBadRequest,
		message:  "Malformed or missing a required parameter, or your email provider not support this.",
		sentinel: ErrBadRequest,
	},
	http.StatusUnauthorized: {
		kind:     KindUnauthorized,
		code:     http.StatusUnauthorized,
		message:  "No valid API key or access_token provided.",
		sentinel: ErrUnauthorized,
	},
	http.StatusForbidden: {
		kind:     KindForbidden,
		code:     http.StatusForbidden,
		message:  "Includes authentication errors, blocked developer applications, and cancelled accounts.",
		sentinel: ErrForbidden,
	},
	http.StatusNotFound: {
		kind:     KindNotFound,
		code:     http.StatusNotFound,
		message:  "The requested item doesn't exist.",
		sentinel: ErrNotFound,
	},
	http.StatusMethodNotAllowed: {
		kind:     KindMethodNotAllowed,
		code:     http.StatusMethodNotAllowed,
		message:  "You tried to access a resource with an invalid method.",
		sentinel: ErrMethodNotAllowed,
	},
	http.StatusGone: {
		kind:     KindGone,
		code:     http.StatusGone,
		message:  "The requested resource has been removed from our servers.",
		sentinel: ErrGone,
	},
	http.StatusTeapot: {
		kind:     KindTeapot,
		code:     http.StatusTeapot,
		message:  "I'm a teapot",
		sentinel: ErrTeapot,
	},
	http.StatusUnprocessableEntity: {
		kind:     KindSendingError,
		code:     http.StatusUnprocessableEntity,
		message:  "This is returned during sending. See sending errors",
		sentinel: ErrSendingError,
	},
	http.StatusTooManyRequests: {
		kind:     KindTooManyRequests,
		code:     http.StatusTooManyRequests,
		message:  "Slow down! (If you legitimately require this many requests, please contact support.)",
		sentinel: ErrTooManyRequests,
	},
	http.StatusInternalServerError: {
		kind:     KindServerError,
		code:     http.StatusInternalServerError,
		message:  "An error occurred in the Nylas server. If this persists, please see our status page or contact support.",
		sentinel: ErrServerError,
	},
}

var fallbackEntry = entry{
	kind:     KindDefault,
	message:  "Unexpected response status from the Nylas API.",
	sentinel: ErrUnexpectedStatus,
}

// notReadyEntry documents the 202 response. classify never returns it.
var notReadyEntry = entry{
	kind:     KindNotReady,
	code:     http.StatusAccepted,
	message:  "The request was valid but the resource wasn't ready. Retry the request with exponential backoff",
	sentinel: ErrNotReady,
}

func entryFor(kind Kind) entry {
	switch kind {
	case KindNotReady:
		return notReadyEntry
	case KindDefault:
		return fallbackEntry
	case KindTransport:
		return entry{kind: KindTransport, message: ErrTransport.Error(), sentinel: ErrTransport}
	case KindInvalidInput:
		return entry{kind: KindInvalidInput, message: ErrInvalidRequest.Error(), sentinel: ErrInvalidRequest}
	}
	for _, ent := range statusTable {
		if ent.kind == kind {
			return ent
		}
	}
	return entry{kind: KindUnknown, message: kindNames[KindUnknown]}
}

// classify maps a response status to its taxonomy entry. It only looks at
// the status code and returns nil for anything below 400. Unmapped codes
// get the fallback entry carrying the actual status as Code.
func classify(statusCode int) *Error {
	if statusCode < http.StatusBadRequest {
		return nil
	}

	ent, ok := statusTable[statusCode]
	if !ok {
		ent = fallbackEntry
		ent.code = statusCode
	}

	return &Error{
		Kind:    ent.kind,
		Code:    ent.code,
		Message: ent.message,
		Err:     ent.sentinel,
	}
}

// Classify is the exported form of the status classifier.
func Classify(statusCode int) error {
	if e := classify(statusCode); e != nil {
		return e
	}
	return nil
}

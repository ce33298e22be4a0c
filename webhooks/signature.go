package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"
)

// SignatureHeader carries the hex HMAC-SHA256 of a notification body.
const SignatureHeader = "X-Nylas-Signature"

const maxNotificationSize = 1 << 20

var (
	ErrInvalidSignature    = errors.New("not a valid nylas request")
	ErrInvalidNotification = errors.New("invalid notification data")
)

// Delta is one change reported by a notification.
type Delta struct {
	Type       string
	Date       int64
	Object     string
	ObjectData map[string]any
}

// NotificationFunc handles the deltas of a verified notification.
type NotificationFunc func(ctx context.Context, deltas []Delta) error

// VerifySignature reports whether signature is the hex HMAC-SHA256 of
// body keyed with secret. The comparison runs in constant time.
func VerifySignature(secret, signature string, body []byte) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return hmac.Equal(got, mac.Sum(nil))
}

// VerifySignature checks body against signature keyed with the API key
// of the bound client.
func (w *Webhooks) VerifySignature(signature string, body []byte) bool {
	return VerifySignature(w.c.APIKey(), signature, body)
}

// ParseNotification extracts the deltas of a notification body. A body
// that is not JSON or has no deltas is rejected.
func ParseNotification(body []byte) ([]Delta, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidNotification)
	}

	raw := gjson.GetBytes(body, "deltas")
	if !raw.Exists() || !raw.IsArray() {
		return nil, fmt.Errorf("%w: missing deltas", ErrInvalidNotification)
	}

	deltas := make([]Delta, 0, len(raw.Array()))
	raw.ForEach(func(_, d gjson.Result) bool {
		delta := Delta{
			Type:   d.Get("type").String(),
			Date:   d.Get("date").Int(),
			Object: d.Get("object").String(),
		}
		if data, ok := d.Get("object_data").Value().(map[string]any); ok {
			delta.ObjectData = data
		}
		deltas = append(deltas, delta)
		return true
	})

	return deltas, nil
}

// ChallengeHandler answers the verification request sent when a webhook
// is registered by echoing the challenge query parameter.
func ChallengeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		challenge := r.URL.Query().Get("challenge")
		if challenge == "" {
			http.Error(w, "missing challenge", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, challenge)
	})
}

// NewHandler serves a webhook endpoint. GET requests get the challenge
// echoed back. POST requests must be signed with secret; their deltas
// are passed to fn.
func NewHandler(secret string, logger *slog.Logger, fn NotificationFunc) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	challenge := ChallengeHandler()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			challenge.ServeHTTP(w, r)
			return
		case http.MethodPost:
		default:
			w.Header().Set("Allow", "GET, POST")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationSize))
		if err != nil {
			logger.Error("reading notification", "error", err)
			http.Error(w, "unreadable body", http.StatusBadRequest)
			return
		}

		if !VerifySignature(secret, r.Header.Get(SignatureHeader), body) {
			logger.Warn("rejected notification", "error", ErrInvalidSignature, "remote", r.RemoteAddr)
			http.Error(w, ErrInvalidSignature.Error(), http.StatusUnauthorized)
			return
		}

		deltas, err := ParseNotification(body)
		if err != nil {
			logger.Warn("rejected notification", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := fn(r.Context(), deltas); err != nil {
			logger.Error("handling notification", "error", err, "deltas", len(deltas))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	})
}

// Handler serves a webhook endpoint verified with the client's API key
// and logged to the client's logger.
func (w *Webhooks) Handler(fn NotificationFunc) http.Handler {
	return NewHandler(w.c.APIKey(), w.c.Logger(), fn)
}

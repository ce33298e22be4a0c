package throttle

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config holds the limiter's requests per second and burst capacity.
type Config struct {
	RPS   int
	Burst int
}

func (cfg Config) validate() error {
	if cfg.RPS <= 0 || cfg.Burst <= 0 {
		return fmt.Errorf("rps[%d] and burst[%d] %w", cfg.RPS, cfg.Burst, ErrMustNotBeZero)
	}
	return nil
}

// throttle is an http.RoundTripper, using the time/rate token
// bucket limiter to restrict calls to the API.
type throttle struct {
	limiter *rate.Limiter
	cfg     Config
	next    http.RoundTripper
	logFn   func() *slog.Logger
}

// NewRoundTripper returns an http.RoundTripper that throttles outbound
// requests. logFn lazily resolves the logger at request time; a nil
// result skips the exhaustion logs.
func NewRoundTripper(cfg Config, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := &throttle{
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		cfg:     cfg,
		next:    next,
		logFn:   logFn,
	}

	return t, nil
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	logger := t.logFn()
	if logger != nil && t.limiter.Tokens() < 1 {
		logger.Info("nylas throttle tokens exhausted", "rps", t.cfg.RPS, "burst", t.cfg.Burst, "path", r.URL.Path)
	}

	start := time.Now()
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if waited := time.Since(start); logger != nil && waited > time.Millisecond {
		logger.Info("nylas throttle wait complete", "waited", waited.String(), "path", r.URL.Path)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return t.next.RoundTrip(r)
}

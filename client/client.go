package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/nylas/api"
	"github.com/adamwoolhether/nylas/client/download"
	"github.com/adamwoolhether/nylas/client/throttle"
)

// Client is the transport gateway shared by every resource. It holds the
// immutable configuration and an *http.Client, and is safe for concurrent use.
type Client struct {
	c           *http.Client
	cfg         Config
	logger      *slog.Logger
	tracer      trace.Tracer
	concurrency int
}

// Build assembles a Client. An API key is required, either through
// WithAPIKey or WithConfig.
func Build(optFns ...Option) (*Client, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	cfg := Config{Region: api.RegionUS, Timeout: defaultTimeout}
	if opts.cfg != nil {
		cfg = *opts.cfg
		if cfg.Region == "" {
			cfg.Region = api.RegionUS
		}
		if cfg.Timeout == 0 {
			cfg.Timeout = defaultTimeout
		}
	}
	if opts.apiKey != "" {
		cfg.APIKey = opts.apiKey
	}
	if opts.region != nil {
		cfg.Region = *opts.region
	}
	if opts.server != "" {
		cfg.Server = opts.server
	}
	if opts.clientID != "" {
		cfg.ClientID = opts.clientID
	}
	if opts.grantID != "" {
		cfg.GrantID = opts.grantID
	}
	if opts.timeout != nil {
		cfg.Timeout = *opts.timeout
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	client := &Client{
		c:           &http.Client{},
		cfg:         cfg,
		logger:      slog.Default(),
		tracer:      noop.NewTracerProvider().Tracer(""),
		concurrency: defaultConcurrency,
	}

	if opts.client != nil {
		hc := *opts.client
		client.c = &hc
	}

	switch {
	case opts.logger != nil:
		client.logger = opts.logger
	case opts.debug != nil:
		client.logger = slog.New(slog.NewTextHandler(opts.debug, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case cfg.Debug:
		client.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.concurrency > 0 {
		client.concurrency = opts.concurrency
	}

	client.c.Timeout = cfg.Timeout

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}

	ua := defaultUserAgent
	if opts.userAgent != "" {
		ua = opts.userAgent
	}
	transport = userAgent{value: ua, base: transport}

	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// Config returns a copy of the Client's configuration.
func (c *Client) Config() Config { return c.cfg }

// APIKey returns the configured API key.
func (c *Client) APIKey() string { return c.cfg.APIKey }

// ClientID returns the configured OAuth client id.
func (c *Client) ClientID() string { return c.cfg.ClientID }

// GrantID returns the default grant id, if any.
func (c *Client) GrantID() string { return c.cfg.GrantID }

// GrantOrDefault returns id, or the configured grant id when id is blank.
func (c *Client) GrantOrDefault(id string) string {
	if strings.TrimSpace(id) == "" {
		return c.cfg.GrantID
	}
	return id
}

// Region returns the configured region.
func (c *Client) Region() api.Region { return c.cfg.Region }

// Server returns the resolved base URL.
func (c *Client) Server() string { return c.cfg.server() }

// Logger returns the Client's logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// AuthorizationHeader returns the Authorization header for token, or for
// the API key when token is empty.
func (c *Client) AuthorizationHeader(token string) map[string]string {
	if token == "" {
		token = c.cfg.APIKey
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// Get sends a GET request. See [Client.Send].
func (c *Client) Get(ctx context.Context, template string, opts ...RequestOption) (any, error) {
	return c.Send(ctx, http.MethodGet, template, opts...)
}

// Put sends a PUT request. See [Client.Send].
func (c *Client) Put(ctx context.Context, template string, opts ...RequestOption) (any, error) {
	return c.Send(ctx, http.MethodPut, template, opts...)
}

// Post sends a POST request. See [Client.Send].
func (c *Client) Post(ctx context.Context, template string, opts ...RequestOption) (any, error) {
	return c.Send(ctx, http.MethodPost, template, opts...)
}

// Patch sends a PATCH request. See [Client.Send].
func (c *Client) Patch(ctx context.Context, template string, opts ...RequestOption) (any, error) {
	return c.Send(ctx, http.MethodPatch, template, opts...)
}

// Delete sends a DELETE request. See [Client.Send].
func (c *Client) Delete(ctx context.Context, template string, opts ...RequestOption) (any, error) {
	return c.Send(ctx, http.MethodDelete, template, opts...)
}

// Send builds a request from template and opts and executes it. A
// response status >= 400 returns an *Error from the taxonomy; any
// other failure returns an *Error of KindTransport.
func (c *Client) Send(ctx context.Context, method, template string, opts ...RequestOption) (any, error) {
	req, err := NewRequest(method, template, opts...)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, req)
}

// Do executes a prepared request and decodes the response.
func (c *Client) Do(ctx context.Context, req *Request) (any, error) {
	var out any
	doFunc := func(resp *http.Response) error {
		if req.headersOnly {
			out = resp.Header.Clone()
			return nil
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}

		out = decode(resp.StatusCode, resp.Header, body, req.useJSONNum)
		return nil
	}

	if err := c.exec(ctx, req, doFunc); err != nil {
		return nil, transportError(err)
	}

	return out, nil
}

// Download streams the response body of req to destPath. Data streams
// to a temp file in the same directory, which is renamed to destPath on
// success or removed on failure.
func (c *Client) Download(ctx context.Context, req *Request, destPath string, opts ...download.Option) error {
	if destPath == "" {
		return callerError(ErrInvalidRequest, "destPath must not be empty")
	}

	dlFunc := func(resp *http.Response) error {
		if err := download.Handle(ctx, resp.Body, resp.ContentLength, destPath, c.logger, opts...); err != nil {
			return fmt.Errorf("download: %w", err)
		}

		return nil
	}

	return transportError(c.exec(ctx, req, dlFunc))
}

// exec runs the request and the injected function on a response whose
// status has already been classified as a success.
func (c *Client) exec(ctx context.Context, req *Request, fn execFn) error {
	resp, err := c.roundTrip(ctx, req)
	if err != nil {
		return err
	}
	defer c.discard(resp)

	if err := fn(resp); err != nil {
		return fmt.Errorf("exec fn: %w", err)
	}

	return nil
}

// roundTrip sends req and classifies the status before the body is read.
// On a failure status the body is discarded and the taxonomy *Error is
// returned. On success the caller owns the open body.
func (c *Client) roundTrip(ctx context.Context, req *Request) (*http.Response, error) {
	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, "nylas "+req.method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method),
			attribute.String("nylas.path_template", req.template),
			attribute.String("nylas.request_id", requestID),
		),
	)
	defer span.End()

	hreq, err := c.httpRequest(ctx, req, requestID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "building request")
		return nil, err
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(hreq.Header))

	start := time.Now()
	resp, err := c.c.Do(hreq)
	if err != nil {
		c.logger.Debug("request failed", "method", req.method, "path", req.path, "request_id", requestID, "elapsed", time.Since(start), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, fmt.Errorf("exec http do: %w", err)
	}

	c.logger.Debug("request completed", "method", req.method, "path", req.path, "status", resp.StatusCode, "request_id", requestID, "elapsed", time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if cerr := classify(resp.StatusCode); cerr != nil {
		c.discard(resp)
		span.SetStatus(codes.Error, cerr.Kind.String())
		return nil, cerr
	}

	for _, fn := range req.headerFns {
		if err := fn(resp); err != nil {
			c.discard(resp)
			span.RecordError(err)
			return nil, fmt.Errorf("header func: %w", err)
		}
	}

	return resp, nil
}

// discard drains a bounded amount of the body so the connection can be
// reused, then closes it.
func (c *Client) discard(resp *http.Response) {
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainSize)); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Error("failed to discard unused body", "error", err)
	}
	if err := resp.Body.Close(); err != nil {
		c.logger.Error("failed to close response body", "error", err)
	}
}


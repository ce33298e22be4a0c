package client

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/nylas/api"
	"github.com/adamwoolhether/nylas/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	apiKey      string
	cfg         *Config
	region      *api.Region
	server      string
	clientID    string
	grantID     string
	client      *http.Client
	rt          http.RoundTripper
	timeout     *time.Duration
	userAgent   string
	throttle    *throttle.Config
	concurrency int
	logger      *slog.Logger
	debug       io.Writer
	tracer      trace.Tracer
}

// WithAPIKey sets the key sent as the Bearer credential.
func WithAPIKey(key string) Option {
	return func(o *options) error {
		if strings.TrimSpace(key) == "" {
			return errors.New("api key must not be empty")
		}
		o.apiKey = key
		return nil
	}
}

// WithConfig seeds the Client from cfg. Options applied after it override
// the matching fields.
func WithConfig(cfg Config) Option {
	return func(o *options) error {
		if err := cfg.validate(); err != nil {
			return err
		}
		o.cfg = &cfg
		return nil
	}
}

// WithRegion selects the regional API host.
func WithRegion(region api.Region) Option {
	return func(o *options) error {
		if _, ok := api.Servers[region]; !ok {
			return fmt.Errorf("unknown region %q", region)
		}
		o.region = &region
		return nil
	}
}

// WithServer overrides the regional host with an explicit base URL.
func WithServer(server string) Option {
	return func(o *options) error {
		if strings.TrimSpace(server) == "" {
			return errors.New("server must not be empty")
		}
		o.server = server
		return nil
	}
}

// WithClientID sets the application's OAuth client id.
func WithClientID(id string) Option {
	return func(o *options) error {
		o.clientID = id
		return nil
	}
}

// WithGrantID binds a default grant id.
func WithGrantID(id string) Option {
	return func(o *options) error {
		o.grantID = id
		return nil
	}
}

// WithHTTPClient replaces the default [http.Client] used by the [Client].
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		o.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
// Tests use it to intercept calls.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		o.rt = rt
		return nil
	}
}

// WithTimeout bounds every call made by the [Client]. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		o.timeout = &d
		return nil
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(header string) Option {
	return func(o *options) error {
		if header == "" {
			return errors.New("user agent must not be empty")
		}
		o.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		o.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithConcurrency caps the number of in-flight requests of [Async.Pool].
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("concurrency[%d] must be greater than zero", n)
		}
		o.concurrency = n
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithDebug writes debug level request logs to w.
func WithDebug(w io.Writer) Option {
	return func(o *options) error {
		if w == nil {
			return errors.New("debug writer must not be nil")
		}
		o.debug = w
		return nil
	}
}

// WithTracer records a client span for every call.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// RequestOption configures one outgoing call. Options are applied in order
// by [NewRequest]; later options overwrite earlier ones for the same field.
type RequestOption func(*requestOpts) error

type requestOpts struct {
	segments    []string
	query       map[string]any
	json        any
	hasJSON     bool
	parts       []Part
	body        []byte
	hasBody     bool
	headers     map[string]string
	headerFns   []HeaderFunc
	accessToken string
	headersOnly bool
	useJSONNum  bool
}

// WithPath sets the positional segments interpolated into the path
// template. It replaces any segments set before.
func WithPath(segments ...string) RequestOption {
	return func(o *requestOpts) error {
		o.segments = append([]string(nil), segments...)
		return nil
	}
}

// WithQuery sets the query parameters. Booleans are sent as "true"/"false".
// An empty map leaves earlier parameters in place.
func WithQuery(query map[string]any) RequestOption {
	return func(o *requestOpts) error {
		if len(query) > 0 {
			o.query = query
		}
		return nil
	}
}

// WithQueryParams flattens a struct tagged with `mapstructure` into the
// query parameters. Fields tagged omitempty are dropped when zero; a
// struct with nothing left leaves earlier parameters in place.
func WithQueryParams(params any) RequestOption {
	return func(o *requestOpts) error {
		query := map[string]any{}
		if err := mapstructure.Decode(params, &query); err != nil {
			return fmt.Errorf("decoding query params: %w", err)
		}
		if len(query) > 0 {
			o.query = query
		}
		return nil
	}
}

// WithJSON sets the JSON request body.
func WithJSON(body any) RequestOption {
	return func(o *requestOpts) error {
		o.json = body
		o.hasJSON = true
		return nil
	}
}

// WithMultipart sends parts as multipart/form-data. It takes precedence
// over WithJSON and WithBody.
func WithMultipart(parts ...Part) RequestOption {
	return func(o *requestOpts) error {
		for i, p := range parts {
			if p.Name == "" {
				return fmt.Errorf("multipart part[%d] has no name", i)
			}
		}
		o.parts = parts
		return nil
	}
}

// WithBody sends raw as the request body without encoding it.
func WithBody(raw []byte) RequestOption {
	return func(o *requestOpts) error {
		o.body = raw
		o.hasBody = true
		return nil
	}
}

// WithHeaders merges caller headers under the mandatory defaults.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOpts) error {
		o.headers = headers
		return nil
	}
}

// WithAccessToken authorizes the call with a grant access token instead
// of the API key.
func WithAccessToken(token string) RequestOption {
	return func(o *requestOpts) error {
		o.accessToken = token
		return nil
	}
}

// WithHeaderFunc registers fn to run once response headers arrive.
func WithHeaderFunc(fn HeaderFunc) RequestOption {
	return func(o *requestOpts) error {
		if fn == nil {
			return errors.New("header func must not be nil")
		}
		o.headerFns = append(o.headerFns, fn)
		return nil
	}
}

// WithResponseHeaders returns the response headers instead of the body.
func WithResponseHeaders() RequestOption {
	return func(o *requestOpts) error {
		o.headersOnly = true
		return nil
	}
}

// WithJSONNumber tells the decoder to use [json.Decoder.UseNumber],
// preserving number precision as [json.Number] instead of float64.
func WithJSONNumber() RequestOption {
	return func(o *requestOpts) error {
		o.useJSONNum = true
		return nil
	}
}

// PoolOption is a functional option for [Async.Pool].
type PoolOption func(*poolOpts)

type poolOpts struct {
	headersOnly bool
}

// PoolHeadersOnly returns each successful response's headers instead of its body.
func PoolHeadersOnly() PoolOption {
	return func(o *poolOpts) {
		o.headersOnly = true
	}
}

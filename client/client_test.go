package client_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/nylas/api"
	"github.com/adamwoolhether/nylas/client"
	"github.com/adamwoolhether/nylas/client/download"
	"github.com/adamwoolhether/nylas/client/throttle"
)

const testAPIKey = "nyk_test_key"

type test struct {
	*client.Client

	server   *httptest.Server
	teardown func()
}

// roundTripFunc adapts a function into an http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(r *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    r,
	}
}

func TestBuild_Validation(t *testing.T) {
	testCases := map[string][]client.Option{
		"missingAPIKey":   nil,
		"blankAPIKey":     {client.WithAPIKey("  ")},
		"unknownRegion":   {client.WithAPIKey(testAPIKey), client.WithRegion("ap")},
		"emptyServer":     {client.WithAPIKey(testAPIKey), client.WithServer("")},
		"nilTransport":    {client.WithAPIKey(testAPIKey), client.WithTransport(nil)},
		"nilHTTPClient":   {client.WithAPIKey(testAPIKey), client.WithHTTPClient(nil)},
		"negativeTimeout": {client.WithAPIKey(testAPIKey), client.WithTimeout(-time.Second)},
		"zeroConcurrency": {client.WithAPIKey(testAPIKey), client.WithConcurrency(0)},
		"nilLogger":       {client.WithAPIKey(testAPIKey), client.WithLogger(nil)},
		"emptyUserAgent":  {client.WithAPIKey(testAPIKey), client.WithUserAgent("")},
	}

	for name, opts := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := client.Build(opts...); err == nil {
				t.Fatal("expected build error")
			}
		})
	}
}

func TestBuild_ThrottleValidation(t *testing.T) {
	_, err := client.Build(client.WithAPIKey(testAPIKey), client.WithThrottle(0, 1))
	if !errors.Is(err, throttle.ErrMustNotBeZero) {
		t.Errorf("expected ErrMustNotBeZero, got %v", err)
	}
}

func TestBuild_Configuration(t *testing.T) {
	testCases := map[string]struct {
		opts       []client.Option
		expServer  string
		expRegion  api.Region
		expTimeout time.Duration
	}{
		"defaults": {
			opts:       []client.Option{client.WithAPIKey(testAPIKey)},
			expServer:  "https://api.us.nylas.com",
			expRegion:  api.RegionUS,
			expTimeout: 30 * time.Second,
		},
		"configDefaultsTimeout": {
			opts:       []client.Option{client.WithConfig(client.Config{APIKey: testAPIKey})},
			expServer:  "https://api.us.nylas.com",
			expRegion:  api.RegionUS,
			expTimeout: 30 * time.Second,
		},
		"timeoutDisabled": {
			opts:      []client.Option{client.WithConfig(client.Config{APIKey: testAPIKey}), client.WithTimeout(0)},
			expServer: "https://api.us.nylas.com",
			expRegion: api.RegionUS,
		},
		"region": {
			opts:       []client.Option{client.WithAPIKey(testAPIKey), client.WithRegion(api.RegionEU)},
			expServer:  "https://api.eu.nylas.com",
			expRegion:  api.RegionEU,
			expTimeout: 30 * time.Second,
		},
		"serverWins": {
			opts:       []client.Option{client.WithAPIKey(testAPIKey), client.WithRegion(api.RegionEU), client.WithServer("http://localhost:8080/")},
			expServer:  "http://localhost:8080",
			expRegion:  api.RegionEU,
			expTimeout: 30 * time.Second,
		},
		"config": {
			opts:       []client.Option{client.WithConfig(client.Config{APIKey: testAPIKey, Region: api.RegionEU, GrantID: "g1", Timeout: 5 * time.Second})},
			expServer:  "https://api.eu.nylas.com",
			expRegion:  api.RegionEU,
			expTimeout: 5 * time.Second,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			c, err := client.Build(tc.opts...)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if c.Server() != tc.expServer {
				t.Errorf("exp server %q, got %q", tc.expServer, c.Server())
			}
			if c.Region() != tc.expRegion {
				t.Errorf("exp region %q, got %q", tc.expRegion, c.Region())
			}
			if c.APIKey() != testAPIKey {
				t.Errorf("exp api key %q, got %q", testAPIKey, c.APIKey())
			}
			if c.Config().Timeout != tc.expTimeout {
				t.Errorf("exp timeout %s, got %s", tc.expTimeout, c.Config().Timeout)
			}
		})
	}
}

func TestClient_AuthorizationHeader(t *testing.T) {
	c, err := client.Build(client.WithAPIKey(testAPIKey))
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(map[string]string{"Authorization": "Bearer " + testAPIKey}, c.AuthorizationHeader("")); diff != "" {
		t.Errorf("api key header mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"Authorization": "Bearer tok"}, c.AuthorizationHeader("tok")); diff != "" {
		t.Errorf("token header mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Get(t *testing.T) {
	test := mockServer(t)
	defer test.teardown()

	testCases := map[string]struct {
		segments []string
		exp      any
		expKind  client.Kind
		expErr   error
	}{
		"found": {
			segments: []string{"g1", "e1"},
			exp:      map[string]any{"data": map[string]any{"id": "e1", "busy": true}},
		},
		"notFound": {
			segments: []string{"g1", "missing"},
			expKind:  client.KindNotFound,
			expErr:   client.ErrNotFound,
		},
		"html": {
			segments: []string{"g1", "html"},
			exp:      client.InvalidJSON{HTTPStatus: "200", InvalidJSON: true, ContentType: "text/html", ContentBody: "<html>"},
		},
		"unmappedStatus": {
			segments: []string{"g1", "unavailable"},
			expKind:  client.KindDefault,
			expErr:   client.ErrUnexpectedStatus,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := test.Get(t.Context(), api.CrudOnEvent, client.WithPath(tc.segments...))

			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("exp %v, got %v", tc.expErr, err)
				}
				if client.KindOf(err) != tc.expKind {
					t.Errorf("exp kind %v, got %v", tc.expKind, client.KindOf(err))
				}
				if got != nil {
					t.Errorf("exp no value on failure, got %v", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("response mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClient_UnmappedStatusCarriesCode(t *testing.T) {
	test := mockServer(t)
	defer test.teardown()

	_, err := test.Get(t.Context(), api.CrudOnEvent, client.WithPath("g1", "unavailable"))

	e, ok := client.AsError(err)
	if !ok {
		t.Fatalf("exp *client.Error, got %T", err)
	}
	if e.Code != http.StatusServiceUnavailable {
		t.Errorf("exp code 503, got %d", e.Code)
	}
}

func TestClient_PathSegmentMismatch(t *testing.T) {
	var called bool
	c, err := client.Build(
		client.WithAPIKey(testAPIKey),
		client.WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
			called = true
			return jsonResponse(r, http.StatusOK, `{}`), nil
		})),
	)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Get(t.Context(), api.CrudOnEvent, client.WithPath("g1"))
	if !errors.Is(err, client.ErrPathSegments) {
		t.Fatalf("exp ErrPathSegments, got %v", err)
	}
	if called {
		t.Error("no request should be sent on a path mismatch")
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	testCases := map[string]struct {
		opts    []client.RequestOption
		buildUA []client.Option
		check   func(t *testing.T, h http.Header)
	}{
		"defaults": {
			check: func(t *testing.T, h http.Header) {
				t.Helper()
				want := map[string]string{
					"Authorization": "Bearer " + testAPIKey,
					"User-Agent":    "Nylas Go SDK",
					"Accept":        "application/json",
					"Content-Type":  "application/json",
				}
				for k, v := range want {
					if h.Get(k) != v {
						t.Errorf("header %s: exp %q, got %q", k, v, h.Get(k))
					}
				}
				if h.Get("X-Request-ID") == "" {
					t.Error("exp X-Request-ID header")
				}
			},
		},
		"callerHeadersMerged": {
			opts: []client.RequestOption{client.WithHeaders(map[string]string{"X-Trace": "abc", "Accept": "text/plain"})},
			check: func(t *testing.T, h http.Header) {
				t.Helper()
				if h.Get("X-Trace") != "abc" {
					t.Errorf("exp caller header, got %q", h.Get("X-Trace"))
				}
				if h.Get("Accept") != "application/json" {
					t.Errorf("mandatory Accept must win, got %q", h.Get("Accept"))
				}
			},
		},
		"accessToken": {
			opts: []client.RequestOption{client.WithAccessToken("grant-token")},
			check: func(t *testing.T, h http.Header) {
				t.Helper()
				if h.Get("Authorization") != "Bearer grant-token" {
					t.Errorf("exp token auth, got %q", h.Get("Authorization"))
				}
			},
		},
		"userAgent": {
			buildUA: []client.Option{client.WithUserAgent("scheduler/2.1")},
			check: func(t *testing.T, h http.Header) {
				t.Helper()
				if h.Get("User-Agent") != "scheduler/2.1" {
					t.Errorf("exp custom UA, got %q", h.Get("User-Agent"))
				}
			},
		},
		"multipart": {
			opts: []client.RequestOption{client.WithMultipart(client.Part{Name: "message", Contents: []byte(`{}`)})},
			check: func(t *testing.T, h http.Header) {
				t.Helper()
				if !strings.HasPrefix(h.Get("Content-Type"), "multipart/form-data; boundary=") {
					t.Errorf("exp multipart content type, got %q", h.Get("Content-Type"))
				}
			},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var got http.Header
			opts := append([]client.Option{
				client.WithAPIKey(testAPIKey),
				client.WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
					got = r.Header.Clone()
					return jsonResponse(r, http.StatusOK, `{}`), nil
				})),
			}, tc.buildUA...)

			c, err := client.Build(opts...)
			if err != nil {
				t.Fatal(err)
			}

			if _, err := c.Post(t.Context(), api.Webhooks, tc.opts...); err != nil {
				t.Fatalf("unexpected err: %v", err)
			}

			tc.check(t, got)
		})
	}
}

func TestClient_BooleanEncoding(t *testing.T) {
	var gotURL string
	var gotBody map[string]any

	c, err := client.Build(
		client.WithAPIKey(testAPIKey),
		client.WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotURL = r.URL.String()
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				return nil, err
			}
			return jsonResponse(r, http.StatusOK, `{"data":{}}`), nil
		})),
	)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Put(t.Context(), api.CrudOnEvent,
		client.WithPath("g1", "e1"),
		client.WithQuery(map[string]any{"notify_participants": true}),
		client.WithJSON(map[string]any{"busy": true}),
	)
	if err != nil {
		t.Fatal(err)
	}

	if gotURL != "https://api.us.nylas.com/v3/grants/g1/events/e1?notify_participants=true" {
		t.Errorf("unexpected url %s", gotURL)
	}
	if gotBody["busy"] != true {
		t.Errorf("json body bool must stay a bool, got %#v", gotBody["busy"])
	}
}

func TestClient_ResponseHeaders(t *testing.T) {
	c, err := client.Build(
		client.WithAPIKey(testAPIKey),
		client.WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
			resp := jsonResponse(r, http.StatusOK, `{"data":[]}`)
			resp.Header.Set("X-Nylas-Request-Id", "req-42")
			return resp, nil
		})),
	)
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.Get(t.Context(), api.Webhooks, client.WithResponseHeaders())
	if err != nil {
		t.Fatal(err)
	}

	h, ok := got.(http.Header)
	if !ok {
		t.Fatalf("exp http.Header, got %T", got)
	}
	if h.Get("X-Nylas-Request-Id") != "req-42" {
		t.Errorf("unexpected headers %v", h)
	}
}

func TestClient_HeaderFunc(t *testing.T) {
	errStop := errors.New("stop")
	var seen string

	c, err := client.Build(
		client.WithAPIKey(testAPIKey),
		client.WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
			resp := jsonResponse(r, http.StatusOK, `{}`)
			resp.Header.Set("X-RateLimit-Remaining", "7")
			return resp, nil
		})),
	)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Get(t.Context(), api.Webhooks, client.WithHeaderFunc(func(resp *http.Response) error {
		seen = resp.Header.Get("X-RateLimit-Remaining")
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if seen != "7" {
		t.Errorf("exp header func to observe 7, got %q", seen)
	}

	_, err = c.Get(t.Context(), api.Webhooks, client.WithHeaderFunc(func(*http.Response) error { return errStop }))
	if !errors.Is(err, errStop) || client.KindOf(err) != client.KindTransport {
		t.Errorf("exp transport error wrapping errStop, got %v", err)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	errDial := errors.New("dial tcp: connection refused")

	c, err := client.Build(
		client.WithAPIKey(testAPIKey),
		client.WithTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errDial
		})),
	)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Get(t.Context(), api.Webhooks)
	if !errors.Is(err, client.ErrTransport) || !errors.Is(err, errDial) {
		t.Fatalf("exp transport error wrapping dial error, got %v", err)
	}
	if e, ok := client.AsError(err); !ok || e.Code != 0 {
		t.Errorf("exp *client.Error with code 0, got %#v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	c, err := client.Build(
		client.WithAPIKey(testAPIKey),
		client.WithServer(ts.URL),
		client.WithTimeout(50*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Get(t.Context(), api.Webhooks); client.KindOf(err) != client.KindTransport {
		t.Errorf("exp transport kind on timeout, got %v", err)
	}
}

func TestClient_DebugLogging(t *testing.T) {
	var buf bytes.Buffer

	c, err := client.Build(
		client.WithAPIKey(testAPIKey),
		client.WithDebug(&buf),
		client.WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(r, http.StatusOK, `{}`), nil
		})),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Get(t.Context(), api.CrudOnGrant, client.WithPath("g1")); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "request completed") || !strings.Contains(out, "path=/v3/grants/g1") {
		t.Errorf("unexpected debug log: %s", out)
	}
	if strings.Contains(out, testAPIKey) {
		t.Error("api key must not be logged")
	}
}

func TestClient_Download(t *testing.T) {
	test := mockServer(t)
	defer test.teardown()

	sum := sha256.Sum256([]byte(attachmentBody))
	goodSum := hex.EncodeToString(sum[:])

	testCases := map[string]struct {
		attachmentID string
		opts         []download.Option
		expErr       error
	}{
		"ok":               {attachmentID: "a1", opts: []download.Option{download.WithChecksum(sha256.New(), goodSum)}},
		"checksumMismatch": {attachmentID: "a1", opts: []download.Option{download.WithChecksum(sha256.New(), "00")}, expErr: download.ErrChecksumMismatch},
		"notFound":         {attachmentID: "missing", expErr: client.ErrNotFound},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "attachment.bin")

			req, err := client.NewRequest(http.MethodGet, api.DownloadAttachment,
				client.WithPath("g1", tc.attachmentID),
				client.WithQuery(map[string]any{"message_id": "m1"}),
			)
			if err != nil {
				t.Fatal(err)
			}

			err = test.Download(t.Context(), req, dest, tc.opts...)
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("exp %v, got %v", tc.expErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}

			got, err := os.ReadFile(dest)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != attachmentBody {
				t.Errorf("exp %q, got %q", attachmentBody, got)
			}
		})
	}
}

func TestClient_DownloadEmptyDest(t *testing.T) {
	c, err := client.Build(client.WithAPIKey(testAPIKey))
	if err != nil {
		t.Fatal(err)
	}

	req, err := client.NewRequest(http.MethodGet, api.Webhooks)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Download(t.Context(), req, ""); !errors.Is(err, client.ErrInvalidRequest) {
		t.Errorf("exp ErrInvalidRequest, got %v", err)
	}
}

// =============================================================================

const attachmentBody = "%PDF-1.7 quarterly report"

func mockServer(t *testing.T) *test {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v3/grants/{grant}/events/{event}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch r.PathValue("event") {
		case "missing":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"not_found_error"}}`))
		case "html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>"))
		case "unavailable":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"id":"` + r.PathValue("event") + `","busy":true}}`))
		}
	})
	mux.HandleFunc("GET /v3/grants/{grant}/attachments/{attachment}/download", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("attachment") != "a1" || r.URL.Query().Get("message_id") != "m1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte(attachmentBody))
	})
	server := httptest.NewServer(mux)

	testClient, err := client.Build(
		client.WithAPIKey(testAPIKey),
		client.WithServer(server.URL),
		client.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("failed to create testClient: %v", err)
	}

	return &test{
		Client:   testClient,
		server:   server,
		teardown: server.Close,
	}
}

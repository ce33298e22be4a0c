package client

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInterpolate(t *testing.T) {
	testCases := map[string]struct {
		template string
		segments []string
		exp      string
		err      error
	}{
		"noPlaceholders":  {template: "/v3/webhooks", exp: "/v3/webhooks"},
		"twoSegments":     {template: "/v3/grants/%s/events/%s", segments: []string{"g1", "e1"}, exp: "/v3/grants/g1/events/e1"},
		"escapesSegment":  {template: "/v3/grants/%s", segments: []string{"a/b c"}, exp: "/v3/grants/a%2Fb%20c"},
		"tooFewSegments":  {template: "/v3/grants/%s/events/%s", segments: []string{"g1"}, err: ErrPathSegments},
		"tooManySegments": {template: "/v3/grants/%s", segments: []string{"g1", "e1"}, err: ErrPathSegments},
		"emptySegment":    {template: "/v3/grants/%s", segments: []string{""}, err: ErrPathSegments},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := interpolate(tc.template, tc.segments)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("exp %v, got %v", tc.err, err)
				}
				if KindOf(err) != KindInvalidInput {
					t.Errorf("exp KindInvalidInput, got %v", KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tc.exp {
				t.Errorf("exp %q, got %q", tc.exp, got)
			}
		})
	}
}

func TestNormalizeQuery(t *testing.T) {
	yes := true
	limit := 5
	var nilPtr *string

	testCases := map[string]struct {
		query map[string]any
		exp   url.Values
	}{
		"nil":   {query: nil, exp: nil},
		"empty": {query: map[string]any{}, exp: nil},
		"bools": {
			query: map[string]any{"busy": true, "expand_recurring": false},
			exp:   url.Values{"busy": {"true"}, "expand_recurring": {"false"}},
		},
		"pointers": {
			query: map[string]any{"show_cancelled": &yes, "limit": &limit, "page_token": nilPtr},
			exp:   url.Values{"show_cancelled": {"true"}, "limit": {"5"}},
		},
		"numbersAndStrings": {
			query: map[string]any{"limit": 50, "start": int64(1700000000), "calendar_id": "primary"},
			exp:   url.Values{"limit": {"50"}, "start": {"1700000000"}, "calendar_id": {"primary"}},
		},
		"slicesRepeat": {
			query: map[string]any{"any_email": []string{"a@x.io", "b@x.io"}, "flags": []bool{true, false}},
			exp:   url.Values{"any_email": {"a@x.io", "b@x.io"}, "flags": {"true", "false"}},
		},
		"nilDropped": {
			query: map[string]any{"only": nil},
			exp:   nil,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := normalizeQuery(tc.query)
			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("query mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewRequest_Body(t *testing.T) {
	testCases := map[string]struct {
		opts          []RequestOption
		expBody       string
		expMultipart  bool
		expContentTyp string
	}{
		"none": {
			expContentTyp: contentTypeJSON,
		},
		"json": {
			opts:          []RequestOption{WithJSON(map[string]any{"title": "Standup", "busy": true})},
			expBody:       "{\"busy\":true,\"title\":\"Standup\"}\n",
			expContentTyp: contentTypeJSON,
		},
		"rawBeatsJSON": {
			opts:          []RequestOption{WithJSON(map[string]any{"a": 1}), WithBody([]byte(`{"raw":1}`))},
			expBody:       `{"raw":1}`,
			expContentTyp: contentTypeJSON,
		},
		"multipartBeatsAll": {
			opts: []RequestOption{
				WithJSON(map[string]any{"a": 1}),
				WithBody([]byte("raw")),
				WithMultipart(Part{Name: "message", Contents: []byte(`{"subject":"hi"}`)}),
			},
			expMultipart:  true,
			expContentTyp: "multipart/form-data",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			req, err := NewRequest(http.MethodPost, "/v3/grants/%s/messages/send", append([]RequestOption{WithPath("g1")}, tc.opts...)...)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}

			if req.Multipart() != tc.expMultipart {
				t.Errorf("exp multipart %v, got %v", tc.expMultipart, req.Multipart())
			}
			if !strings.HasPrefix(req.contentType, tc.expContentTyp) {
				t.Errorf("exp content type %q, got %q", tc.expContentTyp, req.contentType)
			}
			if !tc.expMultipart && string(req.body) != tc.expBody {
				t.Errorf("exp body %q, got %q", tc.expBody, req.body)
			}
		})
	}
}

func TestNewRequest_QueryParams(t *testing.T) {
	type listParams struct {
		CalendarID string `mapstructure:"calendar_id"`
		Limit      int    `mapstructure:"limit,omitempty"`
		PageToken  string `mapstructure:"page_token,omitempty"`
		Busy       *bool  `mapstructure:"busy,omitempty"`
		Unread     *bool  `mapstructure:"unread,omitempty"`
	}

	no := false
	req, err := NewRequest(http.MethodGet, "/v3/grants/%s/events",
		WithPath("g1"),
		WithQueryParams(listParams{CalendarID: "primary", Limit: 25, Unread: &no}),
	)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	exp := url.Values{"calendar_id": {"primary"}, "limit": {"25"}, "unread": {"false"}}
	if diff := cmp.Diff(exp, req.Query()); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}

	if _, err := NewRequest(http.MethodGet, "/v3/webhooks", WithQueryParams(42)); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("exp ErrInvalidRequest for non-struct params, got %v", err)
	}
}

func TestNewRequest_EmptyQueryKeepsEarlier(t *testing.T) {
	type noParams struct {
		PageToken string `mapstructure:"page_token,omitempty"`
	}

	req, err := NewRequest(http.MethodGet, "/v3/webhooks",
		WithQuery(map[string]any{"limit": 5, "expanded": true}),
		WithQuery(map[string]any{}),
		WithQuery(nil),
		WithQueryParams(noParams{}),
	)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	exp := url.Values{"limit": {"5"}, "expanded": {"true"}}
	if diff := cmp.Diff(exp, req.Query()); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRequest_InvalidOptions(t *testing.T) {
	testCases := map[string]RequestOption{
		"unnamedPart":   WithMultipart(Part{Contents: []byte("x")}),
		"nilHeaderFunc": WithHeaderFunc(nil),
	}

	for name, opt := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := NewRequest(http.MethodGet, "/v3/webhooks", opt)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("exp ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestNewRequest_FrozenCopy(t *testing.T) {
	segments := []string{"g1"}
	query := map[string]any{"limit": 5}

	req, err := NewRequest(http.MethodGet, "/v3/grants/%s/events", WithPath(segments...), WithQuery(query))
	if err != nil {
		t.Fatal(err)
	}

	segments[0] = "changed"
	query["limit"] = 10
	q := req.Query()
	q.Set("limit", "99")

	if req.Path() != "/v3/grants/g1/events" {
		t.Errorf("path changed after build: %s", req.Path())
	}
	if got := req.Query().Get("limit"); got != "5" {
		t.Errorf("query changed after build: %s", got)
	}
}

func TestMultipartParts(t *testing.T) {
	attachments := []Attachment{
		{Filename: "logo.png", ContentType: "image/png", Content: []byte("png-bytes"), ContentID: "logo", IsInline: true},
		{Filename: "notes.txt", ContentType: "text/plain", Content: []byte("hello")},
	}
	metadata := map[string]any{
		"subject":     "Quarterly",
		"to":          []map[string]string{{"email": "a@x.io"}},
		"attachments": attachments,
	}

	parts, err := MultipartParts(metadata, attachments, MultipartMessage)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, p := range parts {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"logo", "file1", "message"}, names); diff != "" {
		t.Errorf("part names mismatch (-want +got):\n%s", diff)
	}

	if _, ok := metadata["attachments"]; !ok {
		t.Error("caller metadata must not be modified")
	}
	if strings.Contains(string(parts[2].Contents), "attachments") {
		t.Errorf("metadata part must not carry attachments: %s", parts[2].Contents)
	}

	body, contentType, err := encodeMultipart(parts)
	if err != nil {
		t.Fatal(err)
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatal(err)
	}

	r := multipart.NewReader(strings.NewReader(string(body)), params["boundary"])
	got := map[string]string{}
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		b, err := io.ReadAll(p)
		if err != nil {
			t.Fatal(err)
		}
		got[p.FormName()] = string(b)

		if p.FormName() == "logo" {
			if p.FileName() != "logo.png" || p.Header.Get("Content-Type") != "image/png" || p.Header.Get("Content-Id") != "logo" {
				t.Errorf("unexpected logo part headers: %v", p.Header)
			}
		}
	}

	if got["logo"] != "png-bytes" || got["file1"] != "hello" {
		t.Errorf("unexpected part contents: %v", got)
	}
	if !strings.Contains(got["message"], `"subject":"Quarterly"`) {
		t.Errorf("unexpected message part: %s", got["message"])
	}
}

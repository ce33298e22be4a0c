package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Request is the frozen, send-ready description of one call. It is built
// by [NewRequest] and never modified afterwards, so it can be sent from
// any goroutine.
type Request struct {
	method      string
	template    string
	path        string
	query       url.Values
	body        []byte
	contentType string
	multipart   bool
	headers     map[string]string
	headerFns   []HeaderFunc
	accessToken string
	headersOnly bool
	useJSONNum  bool
}

// NewRequest applies opts and freezes the result. The number of path
// segments must match the number of %s placeholders in template.
func NewRequest(method, template string, opts ...RequestOption) (*Request, error) {
	var settings requestOpts
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return nil, callerError(ErrInvalidRequest, err.Error())
		}
	}

	path, err := interpolate(template, settings.segments)
	if err != nil {
		return nil, err
	}

	req := Request{
		method:      method,
		template:    template,
		path:        path,
		query:       normalizeQuery(settings.query),
		contentType: contentTypeJSON,
		headers:     maps.Clone(settings.headers),
		headerFns:   slices.Clone(settings.headerFns),
		accessToken: settings.accessToken,
		headersOnly: settings.headersOnly,
		useJSONNum:  settings.useJSONNum,
	}

	switch {
	case len(settings.parts) > 0:
		body, contentType, err := encodeMultipart(settings.parts)
		if err != nil {
			return nil, callerError(ErrInvalidRequest, err.Error())
		}
		req.body = body
		req.contentType = contentType
		req.multipart = true

	case settings.hasBody:
		req.body = settings.body

	case settings.hasJSON:
		var payload bytes.Buffer
		if err := json.NewEncoder(&payload).Encode(settings.json); err != nil {
			return nil, callerError(ErrInvalidRequest, fmt.Sprintf("encoding request payload: %v", err))
		}
		req.body = payload.Bytes()
	}

	return &req, nil
}

// Method returns the HTTP verb.
func (r *Request) Method() string { return r.method }

// Path returns the interpolated request path.
func (r *Request) Path() string { return r.path }

// Query returns a copy of the encoded query parameters.
func (r *Request) Query() url.Values {
	if r.query == nil {
		return nil
	}
	q := make(url.Values, len(r.query))
	for k, v := range r.query {
		q[k] = append([]string(nil), v...)
	}
	return q
}

// Multipart reports whether the body is multipart/form-data.
func (r *Request) Multipart() bool { return r.multipart }

// httpRequest renders r against the client's base server.
func (c *Client) httpRequest(ctx context.Context, r *Request, requestID string) (*http.Request, error) {
	u, err := url.Parse(c.cfg.server() + r.path)
	if err != nil {
		return nil, callerError(ErrInvalidRequest, fmt.Sprintf("parsing url: %v", err))
	}
	if r.query != nil {
		u.RawQuery = r.query.Encode()
	}

	var body *bytes.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, r.method, u.String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, r.method, u.String(), nil)
	}
	if err != nil {
		return nil, callerError(ErrInvalidRequest, fmt.Sprintf("instantiating request: %v", err))
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	if r.accessToken != "" || req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", c.AuthorizationHeader(r.accessToken)["Authorization"])
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("Content-Type", r.contentType)
	req.Header.Set(requestIDHeader, requestID)

	return req, nil
}

// interpolate fills template's %s placeholders with the escaped segments.
func interpolate(template string, segments []string) (string, error) {
	want := strings.Count(template, "%s")
	if want != len(segments) {
		return "", callerError(ErrPathSegments, fmt.Sprintf("template %q wants %d, got %d", template, want, len(segments)))
	}
	if want == 0 {
		return template, nil
	}

	args := make([]any, len(segments))
	for i, s := range segments {
		if s == "" {
			return "", callerError(ErrPathSegments, fmt.Sprintf("segment[%d] of %q is empty", i, template))
		}
		args[i] = url.PathEscape(s)
	}

	return fmt.Sprintf(template, args...), nil
}

// normalizeQuery converts query into url.Values, rendering booleans as
// "true"/"false". Nil values and nil pointers are dropped. A query that
// ends up empty yields nil so no "?" is added to the URL.
func normalizeQuery(query map[string]any) url.Values {
	if len(query) == 0 {
		return nil
	}

	vals := url.Values{}
	for k, v := range query {
		for _, s := range queryStrings(v) {
			vals.Add(k, s)
		}
	}

	if len(vals) == 0 {
		return nil
	}

	return vals
}

func queryStrings(v any) []string {
	switch tv := v.(type) {
	case nil:
		return nil
	case bool:
		return []string{strconv.FormatBool(tv)}
	case string:
		return []string{tv}
	case []string:
		return tv
	case fmt.Stringer:
		return []string{tv.String()}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return queryStrings(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		var out []string
		for i := range rv.Len() {
			out = append(out, queryStrings(rv.Index(i).Interface())...)
		}
		return out
	}

	return []string{fmt.Sprint(v)}
}

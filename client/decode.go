package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// InvalidJSON is returned in place of a decoded body when the response is
// not JSON or does not parse. ContentBody holds the raw body verbatim.
type InvalidJSON struct {
	HTTPStatus  string `json:"httpStatus"`
	InvalidJSON bool   `json:"invalidJson"`
	ContentType string `json:"contentType"`
	ContentBody string `json:"contentBody"`
}

// Decode turns a successful response into a value. JSON bodies yield
// map[string]any, []any or a scalar; a JSON null yields an empty map.
// Anything else yields an InvalidJSON envelope.
func Decode(statusCode int, header http.Header, body []byte) any {
	return decode(statusCode, header, body, false)
}

func decode(statusCode int, header http.Header, body []byte, useNumber bool) any {
	contentType := header.Get("Content-Type")

	if !strings.Contains(strings.ToLower(contentType), contentTypeJSON) {
		return invalidJSON(statusCode, contentType, body)
	}

	v, err := parseJSON(body, contentType, useNumber)
	if err != nil {
		return invalidJSON(statusCode, contentType, body)
	}

	if v == nil {
		return map[string]any{}
	}

	return v
}

// parseJSON normalizes body to UTF-8, trims surrounding whitespace and
// decodes exactly one JSON value.
func parseJSON(body []byte, contentType string, useNumber bool) (any, error) {
	text, err := toUTF8(body, contentType)
	if err != nil {
		return nil, err
	}

	d := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(text)))
	if useNumber {
		d.UseNumber()
	}

	var v any
	if err := d.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}

	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decoding body: trailing data after json value")
	}

	return v, nil
}

// toUTF8 transcodes body only when the content type names a charset
// other than UTF-8. The body is never sniffed: JSON is UTF-8 unless the
// server says otherwise.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body, nil
	}

	label := params["charset"]
	if label == "" {
		return body, nil
	}

	enc, name := charset.Lookup(label)
	if enc == nil || name == "utf-8" {
		return body, nil
	}

	text, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return nil, fmt.Errorf("reading body as %s: %w", name, err)
	}

	return text, nil
}

func invalidJSON(statusCode int, contentType string, body []byte) InvalidJSON {
	return InvalidJSON{
		HTTPStatus:  strconv.Itoa(statusCode),
		InvalidJSON: true,
		ContentType: contentType,
		ContentBody: string(body),
	}
}

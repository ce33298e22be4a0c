package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// MultipartKind names the JSON metadata part of a multipart send.
type MultipartKind string

const (
	MultipartMessage MultipartKind = "message"
	MultipartDraft   MultipartKind = "draft"
)

// Part is one chunk of a multipart/form-data body.
type Part struct {
	Name               string
	Contents           []byte
	Filename           string
	ContentType        string
	ContentID          string
	ContentDisposition string
	IsInline           bool
}

// Attachment is a file sent along with a message or draft.
type Attachment struct {
	Filename           string `json:"filename" validate:"required"`
	ContentType        string `json:"content_type" validate:"required"`
	Content            []byte `json:"content" validate:"required"`
	ContentID          string `json:"content_id,omitempty"`
	ContentDisposition string `json:"content_disposition,omitempty"`
	IsInline           bool   `json:"is_inline,omitempty"`
}

// MultipartParts turns attachments into parts named by their content id,
// or file{n} when it is empty, followed by one part holding metadata as
// JSON under kind's name. An "attachments" key is dropped from map
// metadata.
func MultipartParts(metadata any, attachments []Attachment, kind MultipartKind) ([]Part, error) {
	parts := make([]Part, 0, len(attachments)+1)
	for i, a := range attachments {
		name := a.ContentID
		if name == "" {
			name = fmt.Sprintf("file%d", i)
		}
		parts = append(parts, Part{
			Name:               name,
			Contents:           a.Content,
			Filename:           a.Filename,
			ContentType:        a.ContentType,
			ContentID:          a.ContentID,
			ContentDisposition: a.ContentDisposition,
			IsInline:           a.IsInline,
		})
	}

	if m, ok := metadata.(map[string]any); ok {
		m = maps.Clone(m)
		delete(m, "attachments")
		metadata = m
	}

	meta, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("encoding %s part: %w", kind, err)
	}

	return append(parts, Part{Name: string(kind), Contents: meta}), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeMultipart renders parts and returns the body with its
// boundary-bearing content type.
func encodeMultipart(parts []Part) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		h := make(textproto.MIMEHeader)

		disposition := fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(p.Name))
		if p.Filename != "" {
			disposition += fmt.Sprintf(`; filename="%s"`, quoteEscaper.Replace(p.Filename))
		}
		h.Set("Content-Disposition", disposition)

		switch {
		case p.ContentType != "":
			h.Set("Content-Type", p.ContentType)
		case p.Filename != "":
			h.Set("Content-Type", "application/octet-stream")
		}
		if p.ContentID != "" {
			h.Set("Content-Id", p.ContentID)
		}

		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("creating part %q: %w", p.Name, err)
		}
		if _, err := pw.Write(p.Contents); err != nil {
			return nil, "", fmt.Errorf("writing part %q: %w", p.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

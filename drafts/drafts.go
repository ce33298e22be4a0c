// Package drafts manages unsent message drafts of a grant.
package drafts

import (
	"context"
	"net/http"

	"github.com/adamwoolhether/nylas/api"
	"github.com/adamwoolhether/nylas/client"
	"github.com/adamwoolhether/nylas/messages"
	"github.com/adamwoolhether/nylas/validate"
)

// Drafts is the drafts namespace.
type Drafts struct {
	c *client.Client
}

// New binds the namespace to c.
func New(c *client.Client) *Drafts {
	return &Drafts{c: c}
}

// ListParams filters List.
type ListParams struct {
	Limit         int    `json:"limit,omitempty" mapstructure:"limit,omitempty" validate:"omitempty,min=1,max=200"`
	PageToken     string `json:"page_token,omitempty" mapstructure:"page_token,omitempty"`
	Select        string `json:"select,omitempty" mapstructure:"select,omitempty"`
	Subject       string `json:"subject,omitempty" mapstructure:"subject,omitempty"`
	AnyEmail      string `json:"any_email,omitempty" mapstructure:"any_email,omitempty"`
	To            string `json:"to,omitempty" mapstructure:"to,omitempty"`
	Cc            string `json:"cc,omitempty" mapstructure:"cc,omitempty"`
	Bcc           string `json:"bcc,omitempty" mapstructure:"bcc,omitempty"`
	Starred       *bool  `json:"starred,omitempty" mapstructure:"starred,omitempty"`
	ThreadID      string `json:"thread_id,omitempty" mapstructure:"thread_id,omitempty"`
	HasAttachment *bool  `json:"has_attachment,omitempty" mapstructure:"has_attachment,omitempty"`
}

// Request is the body of Create and Update. Every field is optional.
type Request struct {
	Subject          string                    `json:"subject,omitempty"`
	Body             string                    `json:"body,omitempty"`
	From             []messages.Recipient      `json:"from,omitempty" validate:"omitempty,dive"`
	To               []messages.Recipient      `json:"to,omitempty" validate:"omitempty,dive"`
	Cc               []messages.Recipient      `json:"cc,omitempty" validate:"omitempty,dive"`
	Bcc              []messages.Recipient      `json:"bcc,omitempty" validate:"omitempty,dive"`
	ReplyTo          []messages.Recipient      `json:"reply_to,omitempty" validate:"omitempty,dive"`
	ReplyToMessageID string                    `json:"reply_to_message_id,omitempty"`
	Starred          *bool                     `json:"starred,omitempty"`
	TrackingOptions  *messages.TrackingOptions `json:"tracking_options,omitempty"`
	CustomHeaders    []messages.CustomHeader   `json:"custom_headers,omitempty"`
	Attachments      []client.Attachment       `json:"attachments,omitempty" validate:"omitempty,dive"`
}

// List returns the drafts of a grant.
func (d *Drafts) List(ctx context.Context, grantID string, params ListParams) (any, error) {
	grantID = d.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID), validate.Check(params)); err != nil {
		return nil, err
	}

	return d.c.Get(ctx, api.Drafts,
		client.WithPath(grantID),
		client.WithQueryParams(params),
	)
}

// Find returns one draft.
func (d *Drafts) Find(ctx context.Context, grantID, draftID string) (any, error) {
	grantID = d.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, draftID)); err != nil {
		return nil, err
	}

	return d.c.Get(ctx, api.CrudOnDraft, client.WithPath(grantID, draftID))
}

// Create saves a new draft.
func (d *Drafts) Create(ctx context.Context, grantID string, body Request) (any, error) {
	grantID = d.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID), validate.Check(body)); err != nil {
		return nil, err
	}

	return d.write(ctx, http.MethodPost, api.Drafts, body, grantID)
}

// Update replaces the contents of a draft.
func (d *Drafts) Update(ctx context.Context, grantID, draftID string, body Request) (any, error) {
	grantID = d.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, draftID), validate.Check(body)); err != nil {
		return nil, err
	}

	return d.write(ctx, http.MethodPut, api.CrudOnDraft, body, grantID, draftID)
}

// Delete removes a draft.
func (d *Drafts) Delete(ctx context.Context, grantID, draftID string) (any, error) {
	grantID = d.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, draftID)); err != nil {
		return nil, err
	}

	return d.c.Delete(ctx, api.CrudOnDraft, client.WithPath(grantID, draftID))
}

// Send sends a draft as a message.
func (d *Drafts) Send(ctx context.Context, grantID, draftID string) (any, error) {
	grantID = d.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, draftID)); err != nil {
		return nil, err
	}

	return d.c.Post(ctx, api.CrudOnDraft, client.WithPath(grantID, draftID))
}

// write sends body as JSON, or as multipart/form-data with a "draft"
// part when it carries attachments.
func (d *Drafts) write(ctx context.Context, method, template string, body Request, segments ...string) (any, error) {
	if len(body.Attachments) == 0 {
		return d.c.Send(ctx, method, template,
			client.WithPath(segments...),
			client.WithJSON(body),
		)
	}

	attachments := body.Attachments
	body.Attachments = nil

	parts, err := client.MultipartParts(body, attachments, client.MultipartDraft)
	if err != nil {
		return nil, client.InvalidInput(err)
	}

	return d.c.Send(ctx, method, template,
		client.WithPath(segments...),
		client.WithMultipart(parts...),
	)
}

func ids(grantID, draftID string) error {
	return validate.All(validate.Required("grant_id", grantID), validate.Required("draft_id", draftID))
}

func check(errs ...error) error {
	if err := validate.All(errs...); err != nil {
		return client.InvalidInput(err)
	}
	return nil
}

// Package messages reads, sends and schedules email messages of a grant.
package messages

import (
	"context"

	"github.com/adamwoolhether/nylas/api"
	"github.com/adamwoolhether/nylas/client"
	"github.com/adamwoolhether/nylas/validate"
)

// Messages is the messages namespace.
type Messages struct {
	c *client.Client
}

// New binds the namespace to c.
func New(c *client.Client) *Messages {
	return &Messages{c: c}
}

// ListParams filters List.
type ListParams struct {
	Limit             int    `json:"limit,omitempty" mapstructure:"limit,omitempty" validate:"omitempty,min=1,max=200"`
	PageToken         string `json:"page_token,omitempty" mapstructure:"page_token,omitempty"`
	Select            string `json:"select,omitempty" mapstructure:"select,omitempty"`
	Subject           string `json:"subject,omitempty" mapstructure:"subject,omitempty"`
	AnyEmail          string `json:"any_email,omitempty" mapstructure:"any_email,omitempty"`
	To                string `json:"to,omitempty" mapstructure:"to,omitempty"`
	From              string `json:"from,omitempty" mapstructure:"from,omitempty"`
	Cc                string `json:"cc,omitempty" mapstructure:"cc,omitempty"`
	Bcc               string `json:"bcc,omitempty" mapstructure:"bcc,omitempty"`
	In                string `json:"in,omitempty" mapstructure:"in,omitempty"`
	Unread            *bool  `json:"unread,omitempty" mapstructure:"unread,omitempty"`
	Starred           *bool  `json:"starred,omitempty" mapstructure:"starred,omitempty"`
	ThreadID          string `json:"thread_id,omitempty" mapstructure:"thread_id,omitempty"`
	ReceivedBefore    int64  `json:"received_before,omitempty" mapstructure:"received_before,omitempty"`
	ReceivedAfter     int64  `json:"received_after,omitempty" mapstructure:"received_after,omitempty"`
	HasAttachment     *bool  `json:"has_attachment,omitempty" mapstructure:"has_attachment,omitempty"`
	Fields            string `json:"fields,omitempty" mapstructure:"fields,omitempty" validate:"omitempty,oneof=standard include_headers"`
	SearchQueryNative string `json:"search_query_native,omitempty" mapstructure:"search_query_native,omitempty"`
}

// FindParams shapes Find and Update.
type FindParams struct {
	Fields string `json:"fields,omitempty" mapstructure:"fields,omitempty" validate:"omitempty,oneof=standard include_headers"`
	Select string `json:"select,omitempty" mapstructure:"select,omitempty"`
}

// Recipient is a named email address.
type Recipient struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email" validate:"required,email"`
}

// TrackingOptions turns on open, link and reply tracking.
type TrackingOptions struct {
	Opens         bool   `json:"opens,omitempty"`
	ThreadReplies bool   `json:"thread_replies,omitempty"`
	Links         bool   `json:"links,omitempty"`
	Label         string `json:"label,omitempty" validate:"omitempty,max=2048"`
}

// CustomHeader is an extra MIME header on an outgoing message.
type CustomHeader struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// SendRequest is the body of Send.
type SendRequest struct {
	Subject          string              `json:"subject" validate:"required"`
	Body             string              `json:"body" validate:"required"`
	From             []Recipient         `json:"from,omitempty" validate:"omitempty,dive"`
	To               []Recipient         `json:"to" validate:"required,min=1,dive"`
	Cc               []Recipient         `json:"cc,omitempty" validate:"omitempty,dive"`
	Bcc              []Recipient         `json:"bcc,omitempty" validate:"omitempty,dive"`
	ReplyTo          []Recipient         `json:"reply_to,omitempty" validate:"omitempty,dive"`
	TrackingOptions  *TrackingOptions    `json:"tracking_options,omitempty"`
	SendAt           int64               `json:"send_at,omitempty"`
	ReplyToMessageID string              `json:"reply_to_message_id,omitempty"`
	UseDraft         bool                `json:"use_draft,omitempty"`
	CustomHeaders    []CustomHeader      `json:"custom_headers,omitempty"`
	Metadata         map[string]string   `json:"metadata,omitempty"`
	Attachments      []client.Attachment `json:"attachments,omitempty" validate:"omitempty,dive"`
}

// UpdateRequest is the body of Update.
type UpdateRequest struct {
	Starred  *bool             `json:"starred,omitempty"`
	Unread   *bool             `json:"unread,omitempty"`
	Folders  []string          `json:"folders,omitempty" validate:"omitempty,dive,required"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CleanRequest is the body of Clean.
type CleanRequest struct {
	MessageID               []string `json:"message_id" validate:"required,min=1,max=20,dive,required"`
	IgnoreLinks             *bool    `json:"ignore_links,omitempty"`
	IgnoreImages            *bool    `json:"ignore_images,omitempty"`
	ImagesAsMarkdown        *bool    `json:"images_as_markdown,omitempty"`
	IgnoreTables            *bool    `json:"ignore_tables,omitempty"`
	RemoveConclusionPhrases *bool    `json:"remove_conclusion_phrases,omitempty"`
}

// Prompt is the body of Compose and ComposeReply.
type Prompt struct {
	Prompt string `json:"prompt" validate:"required,max=1000"`
}

// List returns the messages of a grant.
func (m *Messages) List(ctx context.Context, grantID string, params ListParams) (any, error) {
	grantID = m.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID), validate.Check(params)); err != nil {
		return nil, err
	}

	return m.c.Get(ctx, api.Messages,
		client.WithPath(grantID),
		client.WithQueryParams(params),
	)
}

// Find returns one message.
func (m *Messages) Find(ctx context.Context, grantID, messageID string, params FindParams) (any, error) {
	grantID = m.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, messageID), validate.Check(params)); err != nil {
		return nil, err
	}

	return m.c.Get(ctx, api.CrudOnMessage,
		client.WithPath(grantID, messageID),
		client.WithQueryParams(params),
	)
}

// Send delivers a message. Attachments go out as multipart/form-data
// unless the message is sent through a draft.
func (m *Messages) Send(ctx context.Context, grantID string, body SendRequest) (any, error) {
	grantID = m.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID), validate.Check(body)); err != nil {
		return nil, err
	}

	if body.UseDraft || len(body.Attachments) == 0 {
		return m.c.Post(ctx, api.SendMessage,
			client.WithPath(grantID),
			client.WithJSON(body),
		)
	}

	attachments := body.Attachments
	body.Attachments = nil

	parts, err := client.MultipartParts(body, attachments, client.MultipartMessage)
	if err != nil {
		return nil, client.InvalidInput(err)
	}

	return m.c.Post(ctx, api.SendMessage,
		client.WithPath(grantID),
		client.WithMultipart(parts...),
	)
}

// Update changes folders, flags or metadata of a message.
func (m *Messages) Update(ctx context.Context, grantID, messageID string, params FindParams, body UpdateRequest) (any, error) {
	grantID = m.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, messageID), validate.Check(params), validate.Check(body)); err != nil {
		return nil, err
	}

	return m.c.Put(ctx, api.CrudOnMessage,
		client.WithPath(grantID, messageID),
		client.WithQueryParams(params),
		client.WithJSON(body),
	)
}

// Delete moves a message to the trash.
func (m *Messages) Delete(ctx context.Context, grantID, messageID string) (any, error) {
	grantID = m.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, messageID)); err != nil {
		return nil, err
	}

	return m.c.Delete(ctx, api.CrudOnMessage, client.WithPath(grantID, messageID))
}

// Clean strips quoted text, signatures and markup from message bodies.
func (m *Messages) Clean(ctx context.Context, grantID string, body CleanRequest) (any, error) {
	grantID = m.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID), validate.Check(body)); err != nil {
		return nil, err
	}

	return m.c.Put(ctx, api.CleanMessages,
		client.WithPath(grantID),
		client.WithJSON(body),
	)
}

// ListScheduled returns the messages waiting to be sent.
func (m *Messages) ListScheduled(ctx context.Context, grantID string) (any, error) {
	grantID = m.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID)); err != nil {
		return nil, err
	}

	return m.c.Get(ctx, api.ScheduledMessages, client.WithPath(grantID))
}

// FindScheduled returns one scheduled message.
func (m *Messages) FindScheduled(ctx context.Context, grantID, scheduleID string) (any, error) {
	grantID = m.c.GrantOrDefault(grantID)
	if err := check(scheduleIDs(grantID, scheduleID)); err != nil {
		return nil, err
	}

	return m.c.Get(ctx, api.CrudOnScheduleMessage, client.WithPath(grantID, scheduleID))
}

// StopScheduled cancels a scheduled message.
func (m *Messages) StopScheduled(ctx context.Context, grantID, scheduleID string) (any, error) {
	grantID = m.c.GrantOrDefault(grantID)
	if err := check(scheduleIDs(grantID, scheduleID)); err != nil {
		return nil, err
	}

	return m.c.Delete(ctx, api.CrudOnScheduleMessage, client.WithPath(grantID, scheduleID))
}

// Compose generates a message body from a prompt.
func (m *Messages) Compose(ctx context.Context, grantID string, prompt Prompt) (any, error) {
	grantID = m.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID), validate.Check(prompt)); err != nil {
		return nil, err
	}

	return m.c.Post(ctx, api.SmartCompose,
		client.WithPath(grantID),
		client.WithJSON(prompt),
	)
}

// ComposeReply generates a reply to messageID from a prompt.
func (m *Messages) ComposeReply(ctx context.Context, grantID, messageID string, prompt Prompt) (any, error) {
	grantID = m.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, messageID), validate.Check(prompt)); err != nil {
		return nil, err
	}

	return m.c.Post(ctx, api.SmartComposeReply,
		client.WithPath(grantID, messageID),
		client.WithJSON(prompt),
	)
}

func ids(grantID, messageID string) error {
	return validate.All(validate.Required("grant_id", grantID), validate.Required("message_id", messageID))
}

func scheduleIDs(grantID, scheduleID string) error {
	return validate.All(validate.Required("grant_id", grantID), validate.Required("schedule_id", scheduleID))
}

func check(errs ...error) error {
	if err := validate.All(errs...); err != nil {
		return client.InvalidInput(err)
	}
	return nil
}

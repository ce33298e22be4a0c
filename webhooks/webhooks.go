// Package webhooks manages webhook destinations of an application and
// verifies the notifications delivered to them.
package webhooks

import (
	"context"

	"github.com/adamwoolhether/nylas/api"
	"github.com/adamwoolhether/nylas/client"
	"github.com/adamwoolhether/nylas/validate"
)

// Webhooks is the webhooks namespace.
type Webhooks struct {
	c *client.Client
}

// New binds the namespace to c.
func New(c *client.Client) *Webhooks {
	return &Webhooks{c: c}
}

// CreateRequest is the body of Create.
type CreateRequest struct {
	Description                string   `json:"description,omitempty"`
	TriggerTypes               []string `json:"trigger_types" validate:"required,min=1,dive,trigger"`
	WebhookURL                 string   `json:"webhook_url" validate:"required,url"`
	NotificationEmailAddresses []string `json:"notification_email_addresses,omitempty" validate:"omitempty,dive,email"`
}

// UpdateRequest is the body of Update. Every field is optional.
type UpdateRequest struct {
	Description                string   `json:"description,omitempty"`
	TriggerTypes               []string `json:"trigger_types,omitempty" validate:"omitempty,dive,trigger"`
	WebhookURL                 string   `json:"webhook_url,omitempty" validate:"omitempty,url"`
	NotificationEmailAddresses []string `json:"notification_email_addresses,omitempty" validate:"omitempty,dive,email"`
	Status                     string   `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// MockRequest is the body of MockPayload.
type MockRequest struct {
	TriggerType string `json:"trigger_type" validate:"required,trigger"`
}

// List returns the webhooks of the application.
func (w *Webhooks) List(ctx context.Context) (any, error) {
	return w.c.Get(ctx, api.Webhooks)
}

// Find returns one webhook.
func (w *Webhooks) Find(ctx context.Context, id string) (any, error) {
	if err := check(validate.Required("id", id)); err != nil {
		return nil, err
	}

	return w.c.Get(ctx, api.CrudOnWebhook, client.WithPath(id))
}

// Create registers a webhook destination. The response carries the
// secret used to sign notifications.
func (w *Webhooks) Create(ctx context.Context, body CreateRequest) (any, error) {
	if err := check(validate.Check(body)); err != nil {
		return nil, err
	}

	return w.c.Post(ctx, api.Webhooks, client.WithJSON(body))
}

// Update modifies a webhook.
func (w *Webhooks) Update(ctx context.Context, id string, body UpdateRequest) (any, error) {
	if err := check(validate.Required("id", id), validate.Check(body)); err != nil {
		return nil, err
	}

	return w.c.Put(ctx, api.CrudOnWebhook,
		client.WithPath(id),
		client.WithJSON(body),
	)
}

// Delete removes a webhook.
func (w *Webhooks) Delete(ctx context.Context, id string) (any, error) {
	if err := check(validate.Required("id", id)); err != nil {
		return nil, err
	}

	return w.c.Delete(ctx, api.CrudOnWebhook, client.WithPath(id))
}

// RotateSecret issues a new signing secret for a webhook.
func (w *Webhooks) RotateSecret(ctx context.Context, id string) (any, error) {
	if err := check(validate.Required("id", id)); err != nil {
		return nil, err
	}

	return w.c.Post(ctx, api.RotateWebhookSecret, client.WithPath(id))
}

// MockPayload returns a sample notification for a trigger type.
func (w *Webhooks) MockPayload(ctx context.Context, body MockRequest) (any, error) {
	if err := check(validate.Check(body)); err != nil {
		return nil, err
	}

	return w.c.Post(ctx, api.MockWebhookPayload, client.WithJSON(body))
}

func check(errs ...error) error {
	if err := validate.All(errs...); err != nil {
		return client.InvalidInput(err)
	}
	return nil
}

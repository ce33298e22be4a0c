// Package administration manages the grants of an application.
package administration

import (
	"context"

	"github.com/adamwoolhether/nylas/api"
	"github.com/adamwoolhether/nylas/client"
	"github.com/adamwoolhether/nylas/validate"
)

// Grants is the grants namespace.
type Grants struct {
	c *client.Client
}

// New binds the namespace to c.
func New(c *client.Client) *Grants {
	return &Grants{c: c}
}

// ListParams filters List.
type ListParams struct {
	Limit       int    `json:"limit,omitempty" mapstructure:"limit,omitempty" validate:"omitempty,min=1"`
	Offset      int    `json:"offset,omitempty" mapstructure:"offset,omitempty" validate:"omitempty,min=0"`
	SortBy      string `json:"sort_by,omitempty" mapstructure:"sort_by,omitempty" validate:"omitempty,oneof=created_at updated_at"`
	OrderBy     string `json:"order_by,omitempty" mapstructure:"order_by,omitempty" validate:"omitempty,oneof=desc asc"`
	Since       int64  `json:"since,omitempty" mapstructure:"since,omitempty"`
	Before      int64  `json:"before,omitempty" mapstructure:"before,omitempty"`
	Email       string `json:"email,omitempty" mapstructure:"email,omitempty" validate:"omitempty,email"`
	GrantStatus string `json:"grant_status,omitempty" mapstructure:"grant_status,omitempty" validate:"omitempty,oneof=valid invalid"`
	IP          string `json:"ip,omitempty" mapstructure:"ip,omitempty"`
	Provider    string `json:"provider,omitempty" mapstructure:"provider,omitempty" validate:"omitempty,provider"`
}

// UpdateRequest is the body of Update.
type UpdateRequest struct {
	Settings map[string]any `json:"settings,omitempty"`
	Scope    []string       `json:"scope,omitempty"`
}

// List returns the grants of the application.
func (g *Grants) List(ctx context.Context, params ListParams) (any, error) {
	if err := check(validate.Check(params)); err != nil {
		return nil, err
	}

	return g.c.Get(ctx, api.Grants, client.WithQueryParams(params))
}

// Find returns one grant.
func (g *Grants) Find(ctx context.Context, grantID string) (any, error) {
	grantID = g.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID)); err != nil {
		return nil, err
	}

	return g.c.Get(ctx, api.CrudOnGrant, client.WithPath(grantID))
}

// Current returns the grant the access token was issued for.
func (g *Grants) Current(ctx context.Context, accessToken string) (any, error) {
	if err := check(validate.Required("access_token", accessToken)); err != nil {
		return nil, err
	}

	return g.c.Get(ctx, api.CurrentGrant, client.WithAccessToken(accessToken))
}

// Update changes the settings or scopes of a grant.
func (g *Grants) Update(ctx context.Context, grantID string, body UpdateRequest) (any, error) {
	grantID = g.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID)); err != nil {
		return nil, err
	}

	return g.c.Patch(ctx, api.CrudOnGrant,
		client.WithPath(grantID),
		client.WithJSON(body),
	)
}

// Delete revokes a grant.
func (g *Grants) Delete(ctx context.Context, grantID string) (any, error) {
	grantID = g.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID)); err != nil {
		return nil, err
	}

	return g.c.Delete(ctx, api.CrudOnGrant, client.WithPath(grantID))
}

func check(errs ...error) error {
	if err := validate.All(errs...); err != nil {
		return client.InvalidInput(err)
	}
	return nil
}

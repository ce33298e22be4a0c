// Package calendars manages calendars of a grant and queries their
// free/busy state and availability.
package calendars

import (
	"context"

	"github.com/adamwoolhether/nylas/api"
	"github.com/adamwoolhether/nylas/client"
	"github.com/adamwoolhether/nylas/validate"
)

// Calendars is the calendars namespace.
type Calendars struct {
	c *client.Client
}

// New binds the namespace to c.
func New(c *client.Client) *Calendars {
	return &Calendars{c: c}
}

// ListParams filters List.
type ListParams struct {
	Limit        int    `json:"limit,omitempty" mapstructure:"limit,omitempty" validate:"omitempty,min=1,max=200"`
	PageToken    string `json:"page_token,omitempty" mapstructure:"page_token,omitempty"`
	MetadataPair string `json:"metadata_pair,omitempty" mapstructure:"metadata_pair,omitempty"`
	Select       string `json:"select,omitempty" mapstructure:"select,omitempty"`
}

// Request is the body of Create and Update.
type Request struct {
	Name               string            `json:"name" validate:"required"`
	Description        string            `json:"description,omitempty"`
	Location           string            `json:"location,omitempty"`
	Timezone           string            `json:"timezone,omitempty" validate:"omitempty,timezone"`
	HexColor           string            `json:"hex_color,omitempty" validate:"omitempty,hexcolor"`
	HexForegroundColor string            `json:"hex_foreground_color,omitempty" validate:"omitempty,hexcolor"`
	Metadata           map[string]string `json:"metadata,omitempty" validate:"omitempty,max=50"`
}

// FreeBusyRequest is the body of FreeBusy.
type FreeBusyRequest struct {
	StartTime int64    `json:"start_time" validate:"required"`
	EndTime   int64    `json:"end_time" validate:"required,gtfield=StartTime"`
	Emails    []string `json:"emails" validate:"required,min=1,dive,email"`
}

// AvailabilityParticipant is one person whose calendars are checked.
type AvailabilityParticipant struct {
	Email       string   `json:"email" validate:"required,email"`
	CalendarIDs []string `json:"calendar_ids,omitempty"`
}

// AvailabilityRequest is the body of Availability.
type AvailabilityRequest struct {
	StartTime       int64                     `json:"start_time" validate:"required"`
	EndTime         int64                     `json:"end_time" validate:"required,gtfield=StartTime"`
	DurationMinutes int                       `json:"duration_minutes" validate:"required,min=5"`
	IntervalMinutes int                       `json:"interval_minutes,omitempty" validate:"omitempty,min=5"`
	RoundTo         int                       `json:"round_to,omitempty"`
	Participants    []AvailabilityParticipant `json:"participants" validate:"required,min=1,dive"`
}

// List returns the calendars of a grant.
func (c *Calendars) List(ctx context.Context, grantID string, params ListParams) (any, error) {
	grantID = c.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID), validate.Check(params)); err != nil {
		return nil, err
	}

	return c.c.Get(ctx, api.Calendars,
		client.WithPath(grantID),
		client.WithQueryParams(params),
	)
}

// Find returns one calendar. calendarID may be "primary".
func (c *Calendars) Find(ctx context.Context, grantID, calendarID string) (any, error) {
	grantID = c.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, calendarID)); err != nil {
		return nil, err
	}

	return c.c.Get(ctx, api.CrudOnCalendar, client.WithPath(grantID, calendarID))
}

// Create adds a calendar.
func (c *Calendars) Create(ctx context.Context, grantID string, body Request) (any, error) {
	grantID = c.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID), validate.Check(body)); err != nil {
		return nil, err
	}

	return c.c.Post(ctx, api.Calendars,
		client.WithPath(grantID),
		client.WithJSON(body),
	)
}

// Update modifies a calendar.
func (c *Calendars) Update(ctx context.Context, grantID, calendarID string, body Request) (any, error) {
	grantID = c.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, calendarID), validate.Check(body)); err != nil {
		return nil, err
	}

	return c.c.Put(ctx, api.CrudOnCalendar,
		client.WithPath(grantID, calendarID),
		client.WithJSON(body),
	)
}

// Delete removes a calendar.
func (c *Calendars) Delete(ctx context.Context, grantID, calendarID string) (any, error) {
	grantID = c.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, calendarID)); err != nil {
		return nil, err
	}

	return c.c.Delete(ctx, api.CrudOnCalendar, client.WithPath(grantID, calendarID))
}

// FreeBusy returns the busy blocks of each email between two timestamps.
func (c *Calendars) FreeBusy(ctx context.Context, grantID string, body FreeBusyRequest) (any, error) {
	grantID = c.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID), validate.Check(body)); err != nil {
		return nil, err
	}

	return c.c.Post(ctx, api.CalendarFreeBusy,
		client.WithPath(grantID),
		client.WithJSON(body),
	)
}

// Availability finds the slots where all participants are free. It is
// an application level call and is not scoped to a grant.
func (c *Calendars) Availability(ctx context.Context, body AvailabilityRequest) (any, error) {
	if err := check(validate.Check(body)); err != nil {
		return nil, err
	}

	return c.c.Post(ctx, api.CalendarAvailability, client.WithJSON(body))
}

func ids(grantID, calendarID string) error {
	return validate.All(validate.Required("grant_id", grantID), validate.Required("calendar_id", calendarID))
}

func check(errs ...error) error {
	if err := validate.All(errs...); err != nil {
		return client.InvalidInput(err)
	}
	return nil
}

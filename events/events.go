// Package events manages calendar events of a grant.
package events

import (
	"context"

	"github.com/adamwoolhether/nylas/api"
	"github.com/adamwoolhether/nylas/client"
	"github.com/adamwoolhether/nylas/validate"
)

// Events is the events namespace.
type Events struct {
	c *client.Client
}

// New binds the namespace to c.
func New(c *client.Client) *Events {
	return &Events{c: c}
}

// ListParams filters List.
type ListParams struct {
	CalendarID      string `json:"calendar_id" mapstructure:"calendar_id" validate:"required"`
	Limit           int    `json:"limit,omitempty" mapstructure:"limit,omitempty" validate:"omitempty,min=1,max=200"`
	PageToken       string `json:"page_token,omitempty" mapstructure:"page_token,omitempty"`
	Title           string `json:"title,omitempty" mapstructure:"title,omitempty"`
	Description     string `json:"description,omitempty" mapstructure:"description,omitempty"`
	Location        string `json:"location,omitempty" mapstructure:"location,omitempty"`
	Start           int64  `json:"start,omitempty" mapstructure:"start,omitempty"`
	End             int64  `json:"end,omitempty" mapstructure:"end,omitempty" validate:"omitempty,gtfield=Start"`
	ShowCancelled   *bool  `json:"show_cancelled,omitempty" mapstructure:"show_cancelled,omitempty"`
	ExpandRecurring *bool  `json:"expand_recurring,omitempty" mapstructure:"expand_recurring,omitempty"`
	Busy            *bool  `json:"busy,omitempty" mapstructure:"busy,omitempty"`
	Select          string `json:"select,omitempty" mapstructure:"select,omitempty"`
}

// CalendarParams scopes a single-event call to a calendar.
type CalendarParams struct {
	CalendarID         string `json:"calendar_id" mapstructure:"calendar_id" validate:"required"`
	NotifyParticipants *bool  `json:"notify_participants,omitempty" mapstructure:"notify_participants,omitempty"`
	Select             string `json:"select,omitempty" mapstructure:"select,omitempty"`
}

// When is the time span of an event. Exactly one shape applies: a
// timespan, a single time, a date or a datespan.
type When struct {
	StartTime     int64  `json:"start_time,omitempty"`
	EndTime       int64  `json:"end_time,omitempty" validate:"omitempty,gtfield=StartTime"`
	StartTimezone string `json:"start_timezone,omitempty" validate:"omitempty,timezone"`
	EndTimezone   string `json:"end_timezone,omitempty" validate:"omitempty,timezone"`
	Time          int64  `json:"time,omitempty"`
	Timezone      string `json:"timezone,omitempty" validate:"omitempty,timezone"`
	Date          string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StartDate     string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate       string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Participant is an invitee of an event.
type Participant struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name,omitempty"`
	Status  string `json:"status,omitempty" validate:"omitempty,oneof=yes no maybe noreply"`
	Comment string `json:"comment,omitempty"`
}

// Reminders overrides the calendar's reminder settings.
type Reminders struct {
	UseDefault bool `json:"use_default"`
	Overrides  []struct {
		ReminderMinutes int    `json:"reminder_minutes"`
		ReminderMethod  string `json:"reminder_method,omitempty"`
	} `json:"overrides,omitempty"`
}

// Request is the body of Create and Update.
type Request struct {
	Title        string            `json:"title,omitempty"`
	Description  string            `json:"description,omitempty"`
	Location     string            `json:"location,omitempty"`
	When         *When             `json:"when,omitempty"`
	Busy         *bool             `json:"busy,omitempty"`
	Participants []Participant     `json:"participants,omitempty" validate:"dive"`
	Recurrence   []string          `json:"recurrence,omitempty"`
	Reminders    *Reminders        `json:"reminders,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty" validate:"omitempty,max=50"`
	Visibility   string            `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}

// RSVP is the body of SendRSVP.
type RSVP struct {
	Status string `json:"status" validate:"required,oneof=yes no maybe"`
}

// List returns the events of a calendar.
func (e *Events) List(ctx context.Context, grantID string, params ListParams) (any, error) {
	grantID = e.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID), validate.Check(params)); err != nil {
		return nil, err
	}

	return e.c.Get(ctx, api.Events,
		client.WithPath(grantID),
		client.WithQueryParams(params),
	)
}

// Find returns one event.
func (e *Events) Find(ctx context.Context, grantID, eventID string, params CalendarParams) (any, error) {
	grantID = e.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, eventID), validate.Check(params)); err != nil {
		return nil, err
	}

	return e.c.Get(ctx, api.CrudOnEvent,
		client.WithPath(grantID, eventID),
		client.WithQueryParams(params),
	)
}

// Create adds an event. When is required.
func (e *Events) Create(ctx context.Context, grantID string, params CalendarParams, body Request) (any, error) {
	grantID = e.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID), validate.Check(params), validate.Check(body)); err != nil {
		return nil, err
	}
	if body.When == nil {
		return nil, client.InvalidInput(validate.FieldErrors{{Field: "when", Err: "This field is required"}})
	}

	return e.c.Post(ctx, api.Events,
		client.WithPath(grantID),
		client.WithQueryParams(params),
		client.WithJSON(body),
	)
}

// Update modifies an event. Only non-zero fields are sent.
func (e *Events) Update(ctx context.Context, grantID, eventID string, params CalendarParams, body Request) (any, error) {
	grantID = e.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, eventID), validate.Check(params), validate.Check(body)); err != nil {
		return nil, err
	}

	return e.c.Put(ctx, api.CrudOnEvent,
		client.WithPath(grantID, eventID),
		client.WithQueryParams(params),
		client.WithJSON(body),
	)
}

// Delete removes an event.
func (e *Events) Delete(ctx context.Context, grantID, eventID string, params CalendarParams) (any, error) {
	grantID = e.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, eventID), validate.Check(params)); err != nil {
		return nil, err
	}

	return e.c.Delete(ctx, api.CrudOnEvent,
		client.WithPath(grantID, eventID),
		client.WithQueryParams(params),
	)
}

// SendRSVP answers an invitation on behalf of the grant.
func (e *Events) SendRSVP(ctx context.Context, grantID, eventID, calendarID string, rsvp RSVP) (any, error) {
	grantID = e.c.GrantOrDefault(grantID)
	if err := check(ids(grantID, eventID), validate.Required("calendar_id", calendarID), validate.Check(rsvp)); err != nil {
		return nil, err
	}

	return e.c.Post(ctx, api.RSVPEvent,
		client.WithPath(grantID, eventID),
		client.WithQuery(map[string]any{"calendar_id": calendarID}),
		client.WithJSON(rsvp),
	)
}

// FindMany fetches several events concurrently. Results match eventIDs
// by index; a missing event fails only its own entry.
func (e *Events) FindMany(ctx context.Context, grantID string, eventIDs []string, params CalendarParams) ([]client.Result, error) {
	grantID = e.c.GrantOrDefault(grantID)
	if err := check(validate.Required("grant_id", grantID), validate.Check(params)); err != nil {
		return nil, err
	}

	a := e.c.Async()
	calls := make([]client.Deferred, len(eventIDs))
	for i, id := range eventIDs {
		calls[i] = a.Get(api.CrudOnEvent,
			client.WithPath(grantID, id),
			client.WithQueryParams(params),
		)
	}

	return a.Pool(ctx, calls)
}

func ids(grantID, eventID string) error {
	return validate.All(validate.Required("grant_id", grantID), validate.Required("event_id", eventID))
}

func check(errs ...error) error {
	if err := validate.All(errs...); err != nil {
		return client.InvalidInput(err)
	}
	return nil
}

// Package api lists the Nylas v3 regional servers and the endpoint path
// templates consumed by the resource packages. Templates use %s
// placeholders which are filled positionally by client.WithPath.
package api

// Region identifies a Nylas data residency region.
type Region string

const (
	RegionUS Region = "us"
	RegionEU Region = "eu"
)

// Servers maps each region to its API host.
var Servers = map[Region]string{
	RegionUS: "https://api.us.nylas.com",
	RegionEU: "https://api.eu.nylas.com",
}

// Providers supported by v3 grants.
var Providers = []string{
	"google",
	"icloud",
	"imap",
	"microsoft",
	"virtual-calendar",
	"yahoo",
	"ews",
	"zoom",
}

// TriggerTypes are the events a webhook can subscribe to.
var TriggerTypes = []string{
	"calendar.created",
	"calendar.updated",
	"calendar.deleted",
	"event.created",
	"event.updated",
	"event.deleted",
	"grant.created",
	"grant.updated",
	"grant.deleted",
	"grant.expired",
	"message.send_success",
	"message.send_failed",
	"message.bounce_detected",
	"message.created",
	"message.opened",
	"message.updated",
	"contact.updated",
	"contact.deleted",
	"folder.created",
	"folder.updated",
	"folder.deleted",
}

// Grants
const (
	Grants       = "/v3/grants"
	CrudOnGrant  = "/v3/grants/%s"
	CurrentGrant = "/v3/grants/me"
)

// Calendars
const (
	Calendars            = "/v3/grants/%s/calendars"
	CrudOnCalendar       = "/v3/grants/%s/calendars/%s"
	CalendarFreeBusy     = "/v3/grants/%s/calendars/free-busy"
	CalendarAvailability = "/v3/calendars/availability"
)

// Events
const (
	Events      = "/v3/grants/%s/events"
	CrudOnEvent = "/v3/grants/%s/events/%s"
	RSVPEvent   = "/v3/grants/%s/events/%s/send-rsvp"
)

// Messages
const (
	Messages              = "/v3/grants/%s/messages"
	CrudOnMessage         = "/v3/grants/%s/messages/%s"
	SendMessage           = "/v3/grants/%s/messages/send"
	CleanMessages         = "/v3/grants/%s/messages/clean"
	ScheduledMessages     = "/v3/grants/%s/messages/schedules"
	CrudOnScheduleMessage = "/v3/grants/%s/messages/schedules/%s"
	SmartCompose          = "/v3/grants/%s/messages/smart-compose"
	SmartComposeReply     = "/v3/grants/%s/messages/%s/smart-compose"
)

// Drafts
const (
	Drafts      = "/v3/grants/%s/drafts"
	CrudOnDraft = "/v3/grants/%s/drafts/%s"
)

// Attachments
const (
	Attachment         = "/v3/grants/%s/attachments/%s"
	DownloadAttachment = "/v3/grants/%s/attachments/%s/download"
)

// Webhooks
const (
	Webhooks            = "/v3/webhooks"
	CrudOnWebhook       = "/v3/webhooks/%s"
	RotateWebhookSecret = "/v3/webhooks/rotate-secret/%s"
	MockWebhookPayload  = "/v3/webhooks/mock-payload"
)

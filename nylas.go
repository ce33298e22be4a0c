// Package nylas is the entry point of the Nylas v3 client. It builds the
// shared gateway and hands out the resource namespaces bound to it.
package nylas

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/adamwoolhether/nylas/administration"
	"github.com/adamwoolhether/nylas/attachments"
	"github.com/adamwoolhether/nylas/calendars"
	"github.com/adamwoolhether/nylas/client"
	"github.com/adamwoolhether/nylas/drafts"
	"github.com/adamwoolhether/nylas/events"
	"github.com/adamwoolhether/nylas/messages"
	"github.com/adamwoolhether/nylas/webhooks"
)

// Names of the built-in namespaces.
const (
	Administration = "administration"
	Attachments    = "attachments"
	Calendars      = "calendars"
	Drafts         = "drafts"
	Events         = "events"
	Messages       = "messages"
	Webhooks       = "webhooks"
)

var (
	ErrUnknownNamespace   = errors.New("unknown namespace")
	ErrNamespaceExists    = errors.New("namespace already registered")
	ErrInvalidConstructor = errors.New("namespace constructor must not be nil")
)

// Constructor builds a namespace bound to the gateway.
type Constructor func(*client.Client) any

// Client owns the gateway and a registry of namespaces. Each namespace
// is built on first use and then reused.
type Client struct {
	c *client.Client

	mu           sync.Mutex
	constructors map[string]Constructor
	instances    map[string]any
}

// New builds a Client authenticated with apiKey. Options are applied
// after the key and may override it.
func New(apiKey string, opts ...client.Option) (*Client, error) {
	c, err := client.Build(append([]client.Option{client.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("building gateway: %w", err)
	}

	return Wrap(c), nil
}

// NewFromEnv builds a Client from the NYLAS_* environment variables.
func NewFromEnv(opts ...client.Option) (*Client, error) {
	cfg, err := client.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	c, err := client.Build(append([]client.Option{client.WithConfig(cfg)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("building gateway: %w", err)
	}

	return Wrap(c), nil
}

// Wrap registers the built-in namespaces on an existing gateway.
func Wrap(c *client.Client) *Client {
	return &Client{
		c: c,
		constructors: map[string]Constructor{
			Administration: func(c *client.Client) any { return administration.New(c) },
			Attachments:    func(c *client.Client) any { return attachments.New(c) },
			Calendars:      func(c *client.Client) any { return calendars.New(c) },
			Drafts:         func(c *client.Client) any { return drafts.New(c) },
			Events:         func(c *client.Client) any { return events.New(c) },
			Messages:       func(c *client.Client) any { return messages.New(c) },
			Webhooks:       func(c *client.Client) any { return webhooks.New(c) },
		},
		instances: make(map[string]any),
	}
}

// Gateway returns the shared request gateway.
func (n *Client) Gateway() *client.Client { return n.c }

// Register adds a namespace under name. Built-in names cannot be
// replaced.
func (n *Client) Register(name string, fn Constructor) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return errors.New("namespace name must not be empty")
	}
	if fn == nil {
		return ErrInvalidConstructor
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.constructors[name]; ok {
		return fmt.Errorf("%w: %s", ErrNamespaceExists, name)
	}
	n.constructors[name] = fn

	return nil
}

// Namespace returns the namespace registered under name. Lookups are
// case-insensitive.
func (n *Client) Namespace(name string) (any, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	n.mu.Lock()
	defer n.mu.Unlock()

	if inst, ok := n.instances[name]; ok {
		return inst, nil
	}

	fn, ok := n.constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNamespace, name)
	}

	inst := fn(n.c)
	n.instances[name] = inst

	return inst, nil
}

// Namespaces lists the registered names in sorted order.
func (n *Client) Namespaces() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	names := make([]string, 0, len(n.constructors))
	for name := range n.constructors {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

func (n *Client) Administration() *administration.Grants {
	return namespace[*administration.Grants](n, Administration)
}

func (n *Client) Attachments() *attachments.Attachments {
	return namespace[*attachments.Attachments](n, Attachments)
}

func (n *Client) Calendars() *calendars.Calendars {
	return namespace[*calendars.Calendars](n, Calendars)
}

func (n *Client) Drafts() *drafts.Drafts {
	return namespace[*drafts.Drafts](n, Drafts)
}

func (n *Client) Events() *events.Events {
	return namespace[*events.Events](n, Events)
}

func (n *Client) Messages() *messages.Messages {
	return namespace[*messages.Messages](n, Messages)
}

func (n *Client) Webhooks() *webhooks.Webhooks {
	return namespace[*webhooks.Webhooks](n, Webhooks)
}

// namespace resolves a built-in name. Built-ins are always registered
// and cannot be replaced, so the assertion holds.
func namespace[T any](n *Client, name string) T {
	inst, err := n.Namespace(name)
	if err != nil {
		panic(err)
	}
	return inst.(T)
}

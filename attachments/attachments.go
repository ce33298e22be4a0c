// Package attachments reads attachment metadata and downloads attachment
// content to disk.
package attachments

import (
	"context"
	"net/http"

	"github.com/adamwoolhether/nylas/api"
	"github.com/adamwoolhether/nylas/client"
	"github.com/adamwoolhether/nylas/client/download"
	"github.com/adamwoolhether/nylas/validate"
)

// Attachments is the attachments namespace.
type Attachments struct {
	c *client.Client
}

// New binds the namespace to c.
func New(c *client.Client) *Attachments {
	return &Attachments{c: c}
}

// Find returns the metadata of an attachment of messageID.
func (a *Attachments) Find(ctx context.Context, grantID, attachmentID, messageID string) (any, error) {
	grantID = a.c.GrantOrDefault(grantID)
	if err := check(grantID, attachmentID, messageID); err != nil {
		return nil, err
	}

	return a.c.Get(ctx, api.Attachment,
		client.WithPath(grantID, attachmentID),
		client.WithQuery(map[string]any{"message_id": messageID}),
	)
}

// Download writes the attachment content to destPath. The file only
// appears once the whole body has been received and verified.
func (a *Attachments) Download(ctx context.Context, grantID, attachmentID, messageID, destPath string, opts ...download.Option) error {
	grantID = a.c.GrantOrDefault(grantID)
	if err := check(grantID, attachmentID, messageID); err != nil {
		return err
	}

	req, err := client.NewRequest(http.MethodGet, api.DownloadAttachment,
		client.WithPath(grantID, attachmentID),
		client.WithQuery(map[string]any{"message_id": messageID}),
	)
	if err != nil {
		return err
	}

	return a.c.Download(ctx, req, destPath, opts...)
}

func check(grantID, attachmentID, messageID string) error {
	err := validate.All(
		validate.Required("grant_id", grantID),
		validate.Required("attachment_id", attachmentID),
		validate.Required("message_id", messageID),
	)
	if err != nil {
		return client.InvalidInput(err)
	}
	return nil
}

// Package client is the transport gateway behind every Nylas resource.
//
// # Building a Client
//
// Use [Build] with functional options:
//
//	c, err := client.Build(
//		client.WithAPIKey(key),
//		client.WithRegion(api.RegionEU),
//		client.WithTimeout(10*time.Second),
//	)
//
// # Making Requests
//
// Every call names a path template from the api package and fills its
// placeholders positionally:
//
//	out, err := c.Get(ctx, api.CrudOnEvent,
//		client.WithPath(grantID, eventID),
//		client.WithQuery(map[string]any{"calendar_id": "primary"}),
//	)
//
// A response status >= 400 is returned as an [*Error] whose Kind, Code
// and Message come from a fixed taxonomy; match it with [errors.Is]
// against the Err* sentinels or inspect it with [AsError]. Successful
// JSON bodies decode into map[string]any, []any or a scalar. Bodies that
// are not JSON decode into an [InvalidJSON] envelope instead of failing.
//
// # Concurrent Calls
//
// [Async] prepares [Deferred] calls without sending them. [Async.Pool]
// sends them on a bounded number of goroutines and returns one [Result]
// per call in input order:
//
//	a := c.Async()
//	results, err := a.Pool(ctx, []client.Deferred{
//		a.Get(api.CrudOnEvent, client.WithPath(grantID, "e1")),
//		a.Get(api.CrudOnEvent, client.WithPath(grantID, "e2")),
//	})
//
// # Downloading Attachments
//
// [Client.Download] streams a body to disk through the download package:
//
//	req, _ := client.NewRequest(http.MethodGet, api.DownloadAttachment,
//		client.WithPath(grantID, attachmentID),
//		client.WithQuery(map[string]any{"message_id": messageID}),
//	)
//	err = c.Download(ctx, req, "/tmp/invoice.pdf",
//		download.WithChecksum(sha256.New(), expectedHex),
//	)
package client

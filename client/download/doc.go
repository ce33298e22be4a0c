// Package download streams attachment bodies to disk with optional
// checksum validation, size limits and progress logging.
//
// [Handle] writes into a temporary file beside the destination and
// renames it into place only after every check passes:
//
//	err := download.Handle(ctx, resp.Body, resp.ContentLength, destPath, logger,
//		download.WithChecksum(sha256.New(), expectedHex),
//	)
//
// Most callers reach it through client.Client.Download or the
// attachments package rather than calling Handle directly.
package download

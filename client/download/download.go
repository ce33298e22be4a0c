package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Handle streams body into a temp file next to destPath and renames it
// into place once every check has passed. On any error the temp file is
// removed and destPath is left untouched.
func Handle(ctx context.Context, body io.Reader, contentLength int64, destPath string, logger *slog.Logger, optFns ...Option) error {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return fmt.Errorf("applying option: %w", err)
		}
	}

	if opts.skipExisting {
		if _, err := os.Stat(destPath); err == nil {
			logger.Info("skipping existing attachment", "path", destPath)
			return nil
		}
	}

	if opts.maxBytes > 0 && contentLength > opts.maxBytes {
		return &Error{
			Path:     destPath,
			Expected: fmt.Sprintf("at most %d bytes", opts.maxBytes),
			Actual:   fmt.Sprintf("%d bytes", contentLength),
			Err:      ErrTooLarge,
		}
	}

	file, err := os.CreateTemp(filepath.Dir(destPath), ".nylas-attachment-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool
	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Error("defer closing temp file", "error", err)
		}
		if !successful {
			if err := os.Remove(file.Name()); err != nil {
				logger.Error("failed to remove temp file", "error", err)
			}
		}
	}()

	var src io.Reader = &contextReader{ctx: ctx, r: body}
	if opts.maxBytes > 0 {
		// One extra byte tells an oversized body apart from an exact fit.
		src = io.LimitReader(src, opts.maxBytes+1)
	}

	var dst io.Writer = file
	if opts.checksum != nil {
		dst = io.MultiWriter(dst, opts.checksum)
	}
	if opts.progress {
		dst = &progressWriter{
			w:         dst,
			logger:    logger,
			path:      destPath,
			total:     contentLength,
			startTime: time.Now(),
		}
	}

	n, err := io.Copy(dst, src)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", ErrDownloadCancelled, err)
		}

		return fmt.Errorf("copying attachment body: %w", err)
	}

	if err := verify(destPath, n, contentLength, opts); err != nil {
		return err
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	successful = true

	return nil
}

// contextReader stops a copy as soon as ctx ends, even when the
// underlying reader would keep producing data.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}

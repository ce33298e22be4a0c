package download

import (
	"errors"
	"hash"
)

// Option configures Handle.
type Option func(*options) error

type options struct {
	checksum     *digest
	progress     bool
	skipExisting bool
	maxBytes     int64
}

// WithChecksum verifies the written bytes against expected, the
// hex-encoded digest of h (e.g. sha256.New()).
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.checksum = &digest{hash: h, expected: expected}
		return nil
	}
}

// WithProgress logs transfer progress at most once per second.
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

// WithSkipExisting returns early when destPath already exists.
func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}

// WithMaxBytes rejects attachments larger than n bytes.
func WithMaxBytes(n int64) Option {
	return func(opts *options) error {
		if n <= 0 {
			return errors.New("max bytes must be greater than zero")
		}
		opts.maxBytes = n
		return nil
	}
}

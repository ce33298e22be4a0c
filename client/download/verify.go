package download

import (
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// digest feeds every written byte into a hash so the attachment can be
// compared against a known checksum once the copy ends.
type digest struct {
	hash     hash.Hash
	expected string
}

func (d *digest) Write(p []byte) (int, error) {
	return d.hash.Write(p)
}

// verify runs the post-copy checks on n received bytes. The size limit
// wins over the declared length, which wins over the checksum.
func verify(path string, n, contentLength int64, opts options) error {
	if opts.maxBytes > 0 && n > opts.maxBytes {
		return &Error{
			Path:     path,
			Expected: fmt.Sprintf("at most %d bytes", opts.maxBytes),
			Actual:   fmt.Sprintf("%d+ bytes", n),
			Err:      ErrTooLarge,
		}
	}

	if contentLength >= 0 && n != contentLength {
		return &Error{
			Path:     path,
			Expected: fmt.Sprintf("%d bytes", contentLength),
			Actual:   fmt.Sprintf("%d bytes", n),
			Err:      ErrContentLengthMismatch,
		}
	}

	if opts.checksum == nil {
		return nil
	}

	actual := hex.EncodeToString(opts.checksum.hash.Sum(nil))
	if !strings.EqualFold(actual, opts.checksum.expected) {
		return &Error{
			Path:     path,
			Expected: opts.checksum.expected,
			Actual:   actual,
			Err:      ErrChecksumMismatch,
		}
	}

	return nil
}

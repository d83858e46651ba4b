package codec

import (
	"errors"
	"fmt"
	"regexp"
)

// Error taxonomy. Only ErrCapacity is ever retried (once, with a simpler
// plan); everything else propagates to the transport layer's origin
// fallback.
var (
	// ErrDecode marks malformed or unsupported input.
	ErrDecode = errors.New("cannot decode source image")

	// ErrCapacity marks an encoder rejection caused by the target
	// container's structural dimension/size limits, distinct from
	// generic encode failures.
	ErrCapacity = errors.New("image exceeds container capacity")

	// ErrEncode marks any other codec failure.
	ErrEncode = errors.New("encode failed")
)

// reCapacity classifies encoder error text. libvips and libheif report the
// HEIF/AVIF dimension ceiling in several phrasings depending on version;
// first match wins, everything unmatched is a generic encode failure.
var reCapacity = regexp.MustCompile(
	`(?i)image (is )?too large|` +
		`maximum (image )?size exceeded|` +
		`exceeds? the maximum|` +
		`too many pixels|` +
		`width or height (is )?too (big|large)|` +
		`invalid image size`)

// ClassifyEncode wraps a raw encoder error with the matching sentinel.
func ClassifyEncode(err error) error {
	if err == nil {
		return nil
	}
	if reCapacity.MatchString(err.Error()) {
		return fmt.Errorf("%w: %v", ErrCapacity, err)
	}
	return fmt.Errorf("%w: %v", ErrEncode, err)
}

// IsCapacity reports whether err is (or wraps) a container capacity error.
func IsCapacity(err error) bool {
	return errors.Is(err, ErrCapacity)
}

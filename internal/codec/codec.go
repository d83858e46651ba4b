// Package codec is the boundary to the image codec library. It defines the
// two operations the pipeline needs (metadata probe and plan-driven encode),
// the error taxonomy that drives the fallback state machine, and the libvips
// implementation.
package codec

import (
	"context"

	"github.com/imgpress/imgpress/internal/planner"
)

// Codec decodes source metadata and executes encode plans.
type Codec interface {
	// Probe decodes just enough of data to report dimensions and frame
	// count. Fails with ErrDecode on corrupt or unsupported input.
	Probe(ctx context.Context, data []byte) (planner.SourceInfo, error)

	// Encode runs the full filter-and-encode pipeline described by plan
	// and returns the encoded bytes. Fails with ErrCapacity when the
	// target container rejects the image's dimensions, ErrEncode on any
	// other codec failure.
	Encode(ctx context.Context, data []byte, plan *planner.EncodePlan) ([]byte, error)
}

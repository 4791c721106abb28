// Package convert re-encodes images to a requested target format under size
// and dimension constraints.
package convert

import "context"

// Options mirror the compression settings the frontend works with: a soft
// output size target, a cap on the longest side, and the target MIME type.
type Options struct {
	SizeLimitMB    float64
	MaxDimensionPx int
	TargetMIME     string
}

// Service converts one image blob. Implementations are opaque to the
// orchestrator; a failed conversion surfaces only as the returned error.
type Service interface {
	Convert(ctx context.Context, data []byte, opts Options) ([]byte, error)
}

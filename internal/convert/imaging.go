package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	// Registers webp decoding so webp sources pass through imaging.Decode.
	_ "golang.org/x/image/webp"
)

// Encoder quality search: start high, step down until the output fits the
// size target or the floor is reached. The floor keeps badly compressible
// images usable instead of chasing an impossible target.
const (
	qualityStart = 90
	qualityFloor = 40
	qualityStep  = 10
)

// ImagingService implements Service on top of the imaging and webp
// libraries. Zero value is ready to use.
type ImagingService struct{}

// NewImagingService returns the standard image conversion service.
func NewImagingService() *ImagingService {
	return &ImagingService{}
}

// Convert decodes the source, downscales it so the longest side fits
// opts.MaxDimensionPx (never upscaling), and re-encodes it to the target
// format. Lossy targets are re-encoded at decreasing quality until the
// output fits the size limit; png is encoded once at best compression, so
// its size limit is best-effort.
func (s *ImagingService) Convert(ctx context.Context, data []byte, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding source image: %w", err)
	}

	img = downscale(img, opts.MaxDimensionPx)

	limit := int64(opts.SizeLimitMB * 1024 * 1024)

	switch opts.TargetMIME {
	case "image/webp":
		return encodeLossy(ctx, limit, func(q int) ([]byte, error) {
			var buf bytes.Buffer
			if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(q)}); err != nil {
				return nil, fmt.Errorf("encoding webp: %w", err)
			}
			return buf.Bytes(), nil
		})
	case "image/jpeg":
		return encodeLossy(ctx, limit, func(q int) ([]byte, error) {
			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
				return nil, fmt.Errorf("encoding jpeg: %w", err)
			}
			return buf.Bytes(), nil
		})
	case "image/png":
		var buf bytes.Buffer
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported target format: %s", opts.TargetMIME)
	}
}

// downscale fits the image inside a max x max box when it exceeds the cap.
// Images already within bounds pass through untouched.
func downscale(img image.Image, max int) image.Image {
	if max <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= max && b.Dy() <= max {
		return img
	}
	return imaging.Fit(img, max, max, imaging.Lanczos)
}

// encodeLossy runs the quality search for lossy encoders. A limit of zero or
// less disables the search and encodes once at the starting quality.
func encodeLossy(ctx context.Context, limit int64, encode func(quality int) ([]byte, error)) ([]byte, error) {
	var out []byte
	for q := qualityStart; q >= qualityFloor; q -= qualityStep {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := encode(q)
		if err != nil {
			return nil, err
		}
		out = b
		if limit <= 0 || int64(len(b)) <= limit {
			return out, nil
		}
	}
	// Floor reached; return the smallest attempt even if over the limit.
	return out, nil
}

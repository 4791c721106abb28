package convert_test

import (
	"bytes"
	"context"
	"image"
	"testing"

	_ "image/jpeg"
	_ "image/png"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batch-image-converter/backend/internal/convert"
	"github.com/batch-image-converter/backend/internal/testutil"
)

func TestImagingService_ConvertPNGToJPEG(t *testing.T) {
	svc := convert.NewImagingService()

	out, err := svc.Convert(context.Background(), testutil.PNGBytes(64, 48), convert.Options{
		SizeLimitMB:    1,
		MaxDimensionPx: 1920,
		TargetMIME:     "image/jpeg",
	})
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestImagingService_ConvertJPEGToPNG(t *testing.T) {
	svc := convert.NewImagingService()

	out, err := svc.Convert(context.Background(), testutil.JPEGBytes(32, 32), convert.Options{
		TargetMIME: "image/png",
	})
	require.NoError(t, err)

	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestImagingService_ConvertToWebP(t *testing.T) {
	svc := convert.NewImagingService()

	out, err := svc.Convert(context.Background(), testutil.PNGBytes(16, 16), convert.Options{
		SizeLimitMB: 1,
		TargetMIME:  "image/webp",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out)

	// RIFF....WEBP container header
	require.True(t, len(out) >= 12)
	assert.Equal(t, "RIFF", string(out[0:4]))
	assert.Equal(t, "WEBP", string(out[8:12]))
}

func TestImagingService_DownscalesLongestSide(t *testing.T) {
	svc := convert.NewImagingService()

	out, err := svc.Convert(context.Background(), testutil.JPEGBytes(4000, 1000), convert.Options{
		MaxDimensionPx: 1920,
		TargetMIME:     "image/jpeg",
	})
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1920, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy(), "aspect ratio preserved")
}

func TestImagingService_NeverUpscales(t *testing.T) {
	svc := convert.NewImagingService()

	out, err := svc.Convert(context.Background(), testutil.PNGBytes(100, 80), convert.Options{
		MaxDimensionPx: 1920,
		TargetMIME:     "image/png",
	})
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestImagingService_GarbageInput(t *testing.T) {
	svc := convert.NewImagingService()

	_, err := svc.Convert(context.Background(), []byte("definitely not an image"), convert.Options{
		TargetMIME: "image/webp",
	})
	assert.Error(t, err)
}

func TestImagingService_UnsupportedTarget(t *testing.T) {
	svc := convert.NewImagingService()

	_, err := svc.Convert(context.Background(), testutil.PNGBytes(8, 8), convert.Options{
		TargetMIME: "image/tiff",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported target format")
}

func TestImagingService_CancelledContext(t *testing.T) {
	svc := convert.NewImagingService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Convert(ctx, testutil.PNGBytes(8, 8), convert.Options{TargetMIME: "image/png"})
	assert.ErrorIs(t, err, context.Canceled)
}

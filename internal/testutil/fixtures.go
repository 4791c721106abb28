package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
)

// TestImage builds a solid-color RGBA image of the given size.
func TestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

// PNGBytes returns a PNG-encoded test image.
func PNGBytes(width, height int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, TestImage(width, height)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// JPEGBytes returns a JPEG-encoded test image.
func JPEGBytes(width, height int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, TestImage(width, height), &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

var (
	ErrTooLarge     = errors.New("file too large")
	ErrInvalidImage = errors.New("invalid image")
	ErrUnsupported  = errors.New("unsupported image type")
)

// AvatarOptions bounds and shapes avatar re-encoding. All uploads are
// normalized to JPEG so the stored avatar set has one format.
type AvatarOptions struct {
	MaxBytes    int64
	MaxDim      int
	JPEGQuality int
	// Alpha sources (PNG, WebP) are flattened onto this background.
	FlattenBackground colorRGB
}

type colorRGB struct{ R, G, B uint8 }

func DefaultAvatarOptions() AvatarOptions {
	return AvatarOptions{
		MaxBytes:          5 * 1024 * 1024,
		MaxDim:            2048,
		JPEGQuality:       85,
		FlattenBackground: colorRGB{R: 255, G: 255, B: 255},
	}
}

// sniffImageType identifies the upload by magic number, never by the
// client-declared content type.
func sniffImageType(header []byte) (string, error) {
	if len(header) < 12 {
		return "", ErrInvalidImage
	}
	switch {
	case bytes.HasPrefix(header, []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg", nil
	case bytes.HasPrefix(header, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png", nil
	case bytes.HasPrefix(header, []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WEBP")):
		return "image/webp", nil
	}
	return "", ErrUnsupported
}

// fitWithin computes the target size that fits inside maxDim while keeping
// the aspect ratio. Images already inside the bound are not upscaled.
func fitWithin(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	tw, th := maxDim, int(float64(h)*(float64(maxDim)/float64(w)))
	if h > w {
		tw, th = int(float64(w)*(float64(maxDim)/float64(h))), maxDim
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}

// ProcessAvatarImage validates, decodes, downscales, and re-encodes an
// uploaded avatar as JPEG. It returns the encoded bytes, the output content
// type, and the output size.
func ProcessAvatarImage(r io.Reader, opts AvatarOptions) ([]byte, string, int64, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 5 * 1024 * 1024
	}
	if opts.MaxDim <= 0 {
		opts.MaxDim = 2048
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 85
	}

	data, err := io.ReadAll(io.LimitReader(r, opts.MaxBytes+1))
	if err != nil {
		return nil, "", 0, err
	}
	if int64(len(data)) > opts.MaxBytes {
		return nil, "", 0, ErrTooLarge
	}
	if len(data) < 12 {
		return nil, "", 0, ErrInvalidImage
	}

	srcType, err := sniffImageType(data[:12])
	if err != nil {
		return nil, "", 0, err
	}

	var img image.Image
	switch srcType {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	case "image/webp":
		img, err = webp.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, "", 0, fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, "", 0, ErrInvalidImage
	}
	tw, th := fitWithin(bounds.Dx(), bounds.Dy(), opts.MaxDim)

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	bg := image.NewUniform(color.RGBA{
		R: opts.FlattenBackground.R,
		G: opts.FlattenBackground.G,
		B: opts.FlattenBackground.B,
		A: 255,
	})
	draw.Draw(dst, dst.Bounds(), bg, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
		return nil, "", 0, fmt.Errorf("encode: %w", err)
	}
	return out.Bytes(), "image/jpeg", int64(out.Len()), nil
}

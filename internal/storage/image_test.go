package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcessAvatarImageConvertsToJPEG(t *testing.T) {
	out, ct, size, err := ProcessAvatarImage(bytes.NewReader(encodePNG(t, 120, 60)), DefaultAvatarOptions())
	if err != nil {
		t.Fatalf("ProcessAvatarImage: %v", err)
	}
	if ct != "image/jpeg" {
		t.Fatalf("content type = %q, want image/jpeg", ct)
	}
	if size != int64(len(out)) {
		t.Fatalf("size = %d, encoded %d bytes", size, len(out))
	}

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("jpeg decode: %v", err)
	}
	if decoded.Bounds().Dx() != 120 || decoded.Bounds().Dy() != 60 {
		t.Fatalf("dims = %dx%d, want 120x60", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestProcessAvatarImageDownscales(t *testing.T) {
	opts := DefaultAvatarOptions()
	opts.MaxDim = 100

	out, _, _, err := ProcessAvatarImage(bytes.NewReader(encodePNG(t, 200, 50)), opts)
	if err != nil {
		t.Fatalf("ProcessAvatarImage: %v", err)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("jpeg decode: %v", err)
	}
	if decoded.Bounds().Dx() != 100 || decoded.Bounds().Dy() != 25 {
		t.Fatalf("dims = %dx%d, want 100x25", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestProcessAvatarImageRejections(t *testing.T) {
	small := DefaultAvatarOptions()
	small.MaxBytes = 10
	if _, _, _, err := ProcessAvatarImage(bytes.NewReader(make([]byte, 11)), small); err != ErrTooLarge {
		t.Fatalf("oversized payload error = %v, want ErrTooLarge", err)
	}

	junk := bytes.Repeat([]byte{0x01}, 128)
	if _, _, _, err := ProcessAvatarImage(bytes.NewReader(junk), DefaultAvatarOptions()); err != ErrUnsupported {
		t.Fatalf("junk payload error = %v, want ErrUnsupported", err)
	}

	if _, _, _, err := ProcessAvatarImage(bytes.NewReader([]byte{0xFF}), DefaultAvatarOptions()); err != ErrInvalidImage {
		t.Fatalf("truncated payload error = %v, want ErrInvalidImage", err)
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max int
		tw, th    int
	}{
		{100, 100, 2048, 100, 100}, // never upscale
		{4096, 2048, 2048, 2048, 1024},
		{2048, 4096, 2048, 1024, 2048},
		{3000, 10, 100, 100, 1}, // floor at 1px
	}
	for _, tt := range tests {
		tw, th := fitWithin(tt.w, tt.h, tt.max)
		if tw != tt.tw || th != tt.th {
			t.Errorf("fitWithin(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.w, tt.h, tt.max, tw, th, tt.tw, tt.th)
		}
	}
}

func TestSafeJoinObjectKey(t *testing.T) {
	if _, err := SafeJoinObjectKey("", "../x"); err == nil {
		t.Fatal("traversal key accepted")
	}
	if _, err := SafeJoinObjectKey("", "..\\x"); err == nil {
		t.Fatal("backslash key accepted")
	}
	key, err := SafeJoinObjectKey("", "/media/1/a.jpg")
	if err != nil {
		t.Fatalf("SafeJoinObjectKey: %v", err)
	}
	if key != "media/1/a.jpg" {
		t.Fatalf("key = %q", key)
	}
}

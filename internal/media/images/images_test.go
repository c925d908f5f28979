package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// makeJPEG encodes a solid-color test image.
func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 120, B: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func makePNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", makeJPEG(t, 10, 10), "image/jpeg"},
		{"png", makePNG(t), "image/png"},
		{"gif", []byte("GIF89a\x00\x00\x00\x00"), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"text", []byte("definitely not an image"), ""},
		{"too short", []byte{0xFF, 0xD8}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectType(tt.data); got != tt.want {
				t.Errorf("DetectType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", "jpg"},
		{"image/png", "png"},
		{"image/gif", "gif"},
		{"image/webp", "webp"},
		{"application/pdf", ""},
	}

	for _, tt := range tests {
		if got := Extension(tt.contentType); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(makeJPEG(t, 200, 300))
	if err != nil {
		t.Fatalf("ComputeBlurHash() error = %v", err)
	}
	if len(hash) < 6 {
		t.Errorf("hash = %q, looks too short", hash)
	}
}

func TestComputeBlurHash_SmallImage(t *testing.T) {
	// Images under the thumbnail size skip resizing.
	hash, err := ComputeBlurHash(makeJPEG(t, 16, 16))
	if err != nil {
		t.Fatalf("ComputeBlurHash() error = %v", err)
	}
	if hash == "" {
		t.Error("hash is empty")
	}
}

func TestComputeBlurHash_InvalidData(t *testing.T) {
	if _, err := ComputeBlurHash([]byte("not an image")); err == nil {
		t.Error("expected error for invalid data")
	}
}

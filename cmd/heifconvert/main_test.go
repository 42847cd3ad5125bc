package main

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
)

func testImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	for y := range 8 {
		for x := range 16 {
			img.Set(x, y, color.NRGBA{uint8(x * 16), uint8(y * 32), 128, 255})
		}
	}
	return img
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		decode func([]byte) (image.Image, error)
	}{
		{"out.png", func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) }},
		{"out.JPG", func(b []byte) (image.Image, error) { return jpeg.Decode(bytes.NewReader(b)) }},
		{"out.webp", func(b []byte) (image.Image, error) { return webp.Decode(bytes.NewReader(b)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := encode(&buf, tt.name, testImage(), 90); err != nil {
				t.Fatalf("encode() error = %v", err)
			}
			img, err := tt.decode(buf.Bytes())
			if err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if got := img.Bounds().Size(); got != (image.Point{16, 8}) {
				t.Errorf("size = %v, want 16x8", got)
			}
		})
	}
}

func TestEncodeUnknownExtension(t *testing.T) {
	var buf bytes.Buffer
	if err := encode(&buf, "out.xyz", testImage(), 90); err == nil {
		t.Error("encode() to .xyz succeeded")
	}
}

func TestIsHEIF(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.heic", true},
		{"b.HEIF", true},
		{"c.png", false},
		{"heic", false},
	}
	for _, tt := range tests {
		if got := isHEIF(tt.name); got != tt.want {
			t.Errorf("isHEIF(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

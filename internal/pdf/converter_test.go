package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func testImage(t *testing.T) image.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	return img
}

func TestNormalizeResumeImageConvertsPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(t)); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	out, err := NormalizeResumeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("NormalizeResumeImage() error = %v", err)
	}
	if len(out) < 2 || out[0] != 0xFF || out[1] != 0xD8 {
		t.Errorf("output is not JPEG, got leading bytes % X", out[:2])
	}
	if _, err := jpeg.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("output does not decode as JPEG: %v", err)
	}
}

func TestNormalizeResumeImagePassesThroughJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(t), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}

	out, err := NormalizeResumeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("NormalizeResumeImage() error = %v", err)
	}
	if !bytes.Equal(out, buf.Bytes()) {
		t.Error("JPEG input should pass through without re-encoding")
	}
}

func TestNormalizeResumeImageRejectsGarbage(t *testing.T) {
	if _, err := NormalizeResumeImage([]byte("not an image at all")); err == nil {
		t.Error("expected error for undecodable input")
	}
}

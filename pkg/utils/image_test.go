package utils

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func testFrame(t *testing.T, width, height int) []byte {
	t.Helper()
	frame, err := EncodeJPEG(image.NewRGBA(image.Rect(0, 0, width, height)), 90)
	if err != nil {
		t.Fatal(err)
	}
	return frame
}

func TestConvertJPEGPassThrough(t *testing.T) {
	frame := testFrame(t, 32, 24)

	out, err := ConvertJPEG(frame, "jpg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, frame) {
		t.Error("jpg conversion should be a pass-through")
	}
}

func TestConvertJPEGToPNG(t *testing.T) {
	out, err := ConvertJPEG(testFrame(t, 32, 24), "png")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 32 || cfg.Height != 24 {
		t.Errorf("got %dx%d, want 32x24", cfg.Width, cfg.Height)
	}
}

func TestConvertJPEGToBMP(t *testing.T) {
	out, err := ConvertJPEG(testFrame(t, 32, 24), "bmp")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := bmp.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 32 || cfg.Height != 24 {
		t.Errorf("got %dx%d, want 32x24", cfg.Width, cfg.Height)
	}
}

func TestConvertJPEGUnsupported(t *testing.T) {
	if _, err := ConvertJPEG(testFrame(t, 8, 8), "gif"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConvertJPEGGarbage(t *testing.T) {
	if _, err := ConvertJPEG([]byte("not a jpeg"), "png"); err == nil {
		t.Fatal("expected error for invalid frame")
	}
}

func TestJPEGSize(t *testing.T) {
	w, h, err := JPEGSize(testFrame(t, 320, 240))
	if err != nil {
		t.Fatal(err)
	}
	if w != 320 || h != 240 {
		t.Errorf("got %dx%d, want 320x240", w, h)
	}
}

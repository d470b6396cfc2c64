package storage

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"snapcam/pkg/utils"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func testFrame(t *testing.T, width, height int) []byte {
	t.Helper()
	frame, err := utils.EncodeJPEG(image.NewRGBA(image.Rect(0, 0, width, height)), 90)
	if err != nil {
		t.Fatal(err)
	}
	return frame
}

func TestPhotoNameTimestamp(t *testing.T) {
	s := newTestStorage(t)

	name := s.PhotoName("", "png")
	matched, err := regexp.MatchString(`^photo_\d{8}_\d{6}\.png$`, name)
	if err != nil {
		t.Fatal(err)
	}
	if !matched {
		t.Errorf("unexpected generated name %q", name)
	}
}

func TestPhotoNameUserSupplied(t *testing.T) {
	s := newTestStorage(t)

	if got := s.PhotoName("holiday", "jpg"); got != "holiday.jpg" {
		t.Errorf("got %q, want holiday.jpg", got)
	}
	if got := s.PhotoName("holiday.jpg", "jpg"); got != "holiday.jpg" {
		t.Errorf("got %q, want extension not doubled", got)
	}
}

func TestVideoName(t *testing.T) {
	s := newTestStorage(t)

	name := s.VideoName("", ".avi")
	if !strings.HasPrefix(name, "video_") || !strings.HasSuffix(name, ".avi") {
		t.Errorf("unexpected generated name %q", name)
	}
	if got := s.VideoName("clip", ".avi"); got != "clip.avi" {
		t.Errorf("got %q, want clip.avi", got)
	}
}

func TestVideoNameReplacesExtensionOnFallback(t *testing.T) {
	s := newTestStorage(t)

	for _, tc := range []struct {
		name, ext, want string
	}{
		{"clip.mp4", ".avi", "clip.avi"},
		{"clip.MKV", ".avi", "clip.avi"},
		{"clip.avi", ".avi", "clip.avi"},
		{"clip.backup.mp4", ".avi", "clip.backup.avi"},
		{"clip.raw", ".avi", "clip.raw.avi"},
	} {
		if got := s.VideoName(tc.name, tc.ext); got != tc.want {
			t.Errorf("VideoName(%q, %q) = %q, want %q", tc.name, tc.ext, got, tc.want)
		}
	}
}

func TestSavePhoto(t *testing.T) {
	s := newTestStorage(t)
	const width, height = 320, 240

	artifact, err := s.SavePhoto("shot", testFrame(t, width, height), "png")
	if err != nil {
		t.Fatal(err)
	}
	if artifact.Name != "shot.png" {
		t.Errorf("artifact name = %q, want shot.png", artifact.Name)
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file, got %d", len(entries))
	}

	// the declared resolution must survive the conversion
	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != width || cfg.Height != height {
		t.Errorf("saved resolution %dx%d, want %dx%d", cfg.Width, cfg.Height, width, height)
	}
}

func TestSavePhotoBadFormat(t *testing.T) {
	s := newTestStorage(t)

	if _, err := s.SavePhoto("x", testFrame(t, 8, 8), "gif"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestList(t *testing.T) {
	s := newTestStorage(t)

	for _, name := range []string{"a.png", "b.avi"} {
		if err := os.WriteFile(filepath.Join(s.Dir(), name), []byte("data"), 0o660); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(s.Dir(), "sub"), 0o750); err != nil {
		t.Fatal(err)
	}

	files, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d entries, want 2 (directories skipped)", len(files))
	}
	for _, f := range files {
		if f.Size == "" {
			t.Errorf("file %s has empty size", f.Name)
		}
	}
}

func TestDescribe(t *testing.T) {
	s := newTestStorage(t)

	if err := os.WriteFile(s.Path("clip.avi"), []byte("data"), 0o660); err != nil {
		t.Fatal(err)
	}
	artifact, err := s.Describe("clip.avi")
	if err != nil {
		t.Fatal(err)
	}
	if artifact.Name != "clip.avi" || artifact.Size == "" {
		t.Errorf("unexpected artifact %+v", artifact)
	}

	if _, err = s.Describe("missing.avi"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewEmptyDir(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

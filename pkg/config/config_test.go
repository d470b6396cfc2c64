package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Resolution.Width != 1280 || cfg.Resolution.Height != 720 {
		t.Errorf("default resolution = %s, want 1280x720", cfg.Resolution)
	}
	if cfg.FPS != 30 {
		t.Errorf("default fps = %d, want 30", cfg.FPS)
	}
	if cfg.PhotoFormat != "png" {
		t.Errorf("default photo format = %q, want png", cfg.PhotoFormat)
	}
	if cfg.VideoFormat != "mp4" {
		t.Errorf("default video format = %q, want mp4", cfg.VideoFormat)
	}
	if cfg.Codec != "mp4v" {
		t.Errorf("default codec = %q, want mp4v", cfg.Codec)
	}
	if cfg.CameraID != 0 {
		t.Errorf("default camera id = %d, want 0", cfg.CameraID)
	}
	if cfg.Brightness != ControlUnset || cfg.Contrast != ControlUnset || cfg.Saturation != ControlUnset {
		t.Error("image controls should default to unset")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	cfg := Default()
	cfg.Resolution = Resolution{Width: 1920, Height: 1080}
	cfg.FPS = 60
	cfg.PhotoFormat = "jpg"
	cfg.VideoFormat = "avi"
	cfg.Codec = "MJPG"
	cfg.CameraID = 2
	cfg.Brightness = 50
	cfg.Contrast = 40
	cfg.Saturation = 30

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded := Default()
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadKeepsMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"fps": 15, "ignored_key": true}`), 0o660); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.PhotoFormat = "jpg"
	if err := cfg.Load(path); err != nil {
		t.Fatal(err)
	}
	if cfg.FPS != 15 {
		t.Errorf("fps = %d, want 15", cfg.FPS)
	}
	if cfg.PhotoFormat != "jpg" {
		t.Errorf("photo format = %q, want jpg kept from current settings", cfg.PhotoFormat)
	}
	if cfg.Resolution.Width != DefaultWidth {
		t.Errorf("width = %d, want default kept", cfg.Resolution.Width)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o660); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	err := cfg.Load(path)
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg := Default()
	err := cfg.Load(filepath.Join(t.TempDir(), "nope.json"))
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero width", func(s *Settings) { s.Resolution.Width = 0 }},
		{"negative height", func(s *Settings) { s.Resolution.Height = -1 }},
		{"zero fps", func(s *Settings) { s.FPS = 0 }},
		{"negative camera id", func(s *Settings) { s.CameraID = -1 }},
		{"bad photo format", func(s *Settings) { s.PhotoFormat = "gif" }},
		{"bad video format", func(s *Settings) { s.VideoFormat = "webm" }},
		{"control below unset", func(s *Settings) { s.Brightness = -2 }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("%s: want ConfigError, got %T", tc.name, err)
		}
	}
}

func TestParseResolution(t *testing.T) {
	r, err := ParseResolution("1920x1080")
	if err != nil {
		t.Fatal(err)
	}
	if r.Width != 1920 || r.Height != 1080 {
		t.Errorf("got %s, want 1920x1080", r)
	}

	for _, bad := range []string{"", "1920", "x720", "0x720", "ax b"} {
		if _, err := ParseResolution(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

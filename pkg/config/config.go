package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

const (
	// DefaultFile is where the settings subcommand persists to unless a
	// path is given.
	DefaultFile = "camera_settings.json"

	defaultFilePerm = 0660
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720
	DefaultFPS    = 30

	DefaultPhotoFormat = "png"
	DefaultVideoFormat = "mp4"
	DefaultCodec       = "mp4v"

	// ControlUnset leaves a V4L2 image control at the driver default.
	ControlUnset = -1
)

var (
	photoFormats = map[string]bool{"png": true, "jpg": true, "bmp": true}
	videoFormats = map[string]bool{"mp4": true, "avi": true, "mkv": true}
)

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Settings is the persisted camera configuration. Brightness, contrast and
// saturation map onto V4L2 controls; ControlUnset means "do not touch".
type Settings struct {
	Resolution  Resolution `json:"resolution"`
	FPS         int        `json:"fps"`
	PhotoFormat string     `json:"photo_format"`
	VideoFormat string     `json:"video_format"`
	Codec       string     `json:"video_codec"`
	CameraID    int        `json:"camera_id"`

	Brightness int `json:"brightness"`
	Contrast   int `json:"contrast"`
	Saturation int `json:"saturation"`
}

// Default returns the documented defaults.
func Default() Settings {
	return Settings{
		Resolution:  Resolution{Width: DefaultWidth, Height: DefaultHeight},
		FPS:         DefaultFPS,
		PhotoFormat: DefaultPhotoFormat,
		VideoFormat: DefaultVideoFormat,
		Codec:       DefaultCodec,
		CameraID:    0,
		Brightness:  ControlUnset,
		Contrast:    ControlUnset,
		Saturation:  ControlUnset,
	}
}

// Load merges the settings stored at path into s. Keys absent from the
// file keep their current values, unknown keys are ignored.
func (s *Settings) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err = json.Unmarshal(data, s); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err = s.Validate(); err != nil {
		return err
	}

	return nil
}

// Save writes the settings to path as indented JSON.
func (s Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err = os.WriteFile(path, data, defaultFilePerm); err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	return nil
}

// Validate checks the value ranges and allowed format sets.
func (s Settings) Validate() error {
	if s.Resolution.Width <= 0 || s.Resolution.Height <= 0 {
		return configErrf("resolution %s must be positive", s.Resolution)
	}
	if s.FPS <= 0 {
		return configErrf("fps %d must be positive", s.FPS)
	}
	if s.CameraID < 0 {
		return configErrf("camera id %d must not be negative", s.CameraID)
	}
	if !photoFormats[s.PhotoFormat] {
		return configErrf("unknown photo format %q", s.PhotoFormat)
	}
	if !videoFormats[s.VideoFormat] {
		return configErrf("unknown video format %q", s.VideoFormat)
	}
	for _, c := range []int{s.Brightness, s.Contrast, s.Saturation} {
		if c < ControlUnset {
			return configErrf("control value %d out of range", c)
		}
	}

	return nil
}

// ParseResolution parses a WxH string such as "1280x720".
func ParseResolution(s string) (Resolution, error) {
	var r Resolution
	if _, err := fmt.Sscanf(s, "%dx%d", &r.Width, &r.Height); err != nil {
		return r, configErrf("invalid resolution %q, want WxH", s)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return r, configErrf("resolution %s must be positive", r)
	}

	return r, nil
}

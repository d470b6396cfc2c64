package video

import (
	"strings"
	"time"

	"github.com/icza/mjpeg"
)

// Builder writes a sequence of JPEG frames into an AVI container and
// tracks the resulting playback duration.
type Builder struct {
	path   string
	width  int
	height int
	fps    int

	cnt int
	aw  mjpeg.AviWriter
}

func NewBuilder(path string, width, height, fps int) (*Builder, error) {
	aw, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return nil, err
	}

	return &Builder{
		path:   path,
		width:  width,
		height: height,
		fps:    fps,
		aw:     aw,
	}, nil
}

func (b *Builder) Add(frame []byte) error {
	if err := b.aw.AddFrame(frame); err != nil {
		return err
	}
	b.cnt++

	return nil
}

func (b *Builder) Close() error {
	return b.aw.Close()
}

func (b *Builder) Path() string {
	return b.path
}

func (b *Builder) FrameCount() int {
	return b.cnt
}

// Duration is the playback length of what has been written so far.
func (b *Builder) Duration() time.Duration {
	if b.fps <= 0 {
		return 0
	}
	return time.Duration(b.cnt) * time.Second / time.Duration(b.fps)
}

// EffectiveFormat maps the configured container and codec onto what the
// writer can actually produce. The encoder is MJPEG-in-AVI, so anything
// else falls back the way the original avc1 -> mp4v -> MJPG chain does.
func EffectiveFormat(format, codec string) (ext, fourcc string, fallback bool) {
	if format == "avi" && (codec == "" || strings.EqualFold(codec, "mjpg")) {
		return ".avi", "MJPG", false
	}
	return ".avi", "MJPG", true
}

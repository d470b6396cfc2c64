package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"snapcam/pkg/ov"
	"snapcam/pkg/utils"
)

const (
	DefaultDir = "./captures"

	DefaultFilePerm = 0660
	DefaultDirPerm  = 0750

	timestampLayout = "20060102_150405"
)

// Storage manages the capture directory. Artifacts are write-once files
// named by timestamp unless the caller supplies a name.
type Storage struct {
	dir string
}

func New(dir string) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("capture dir can not be empty")
	}
	if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
		return nil, err
	}

	return &Storage{dir: dir}, nil
}

func (s *Storage) Dir() string {
	return s.dir
}

// PhotoName builds the photo filename: the user name when given,
// otherwise photo_<timestamp>, with the format extension appended when
// missing.
func (s *Storage) PhotoName(name, format string) string {
	if name == "" {
		name = fmt.Sprintf("photo_%s", time.Now().Format(timestampLayout))
	}
	return ensureExt(name, "."+format)
}

// VideoName builds the video filename, same rules as PhotoName. When
// the encoder falls back to another container, a video extension on
// the user name is replaced rather than stacked (clip.mp4 -> clip.avi).
func (s *Storage) VideoName(name, ext string) string {
	if name == "" {
		name = fmt.Sprintf("video_%s", time.Now().Format(timestampLayout))
	}
	if old := strings.ToLower(filepath.Ext(name)); videoExts[old] && old != ext {
		name = name[:len(name)-len(old)]
	}
	return ensureExt(name, ext)
}

var videoExts = map[string]bool{
	".mp4": true,
	".avi": true,
	".mkv": true,
}

func (s *Storage) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// SavePhoto converts a JPEG frame to the requested format and writes it
// under the capture dir, returning the artifact.
func (s *Storage) SavePhoto(name string, frame []byte, format string) (ov.Artifact, error) {
	data, err := utils.ConvertJPEG(frame, format)
	if err != nil {
		return ov.Artifact{}, err
	}

	name = s.PhotoName(name, format)
	path := s.Path(name)
	if err = os.WriteFile(path, data, DefaultFilePerm); err != nil {
		return ov.Artifact{}, err
	}

	return ov.Artifact{
		Name: name,
		Path: path,
		Size: humanize.Bytes(uint64(len(data))),
	}, nil
}

// Describe stats a finished artifact, used after recordings.
func (s *Storage) Describe(name string) (ov.Artifact, error) {
	path := s.Path(name)
	info, err := os.Stat(path)
	if err != nil {
		return ov.Artifact{}, err
	}

	return ov.Artifact{
		Name: name,
		Path: path,
		Size: humanize.Bytes(uint64(info.Size())),
	}, nil
}

// List returns the capture files, newest first.
func (s *Storage) List() ([]ov.File, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	res := make([]ov.File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		res = append(res, ov.File{
			Name:    entry.Name(),
			Size:    humanize.Bytes(uint64(info.Size())),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].ModTime.After(res[j].ModTime)
	})

	return res, nil
}

func ensureExt(name, ext string) string {
	if strings.HasSuffix(name, ext) {
		return name
	}
	return name + ext
}

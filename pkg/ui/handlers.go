package ui

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/vincent-vinf/go-jsend"

	"snapcam/pkg/config"
	"snapcam/pkg/ov"
	"snapcam/pkg/utils"
	"snapcam/pkg/utils/ps"
	"snapcam/pkg/video"
)

const (
	webDavStart    = "start"
	webDavShutdown = "shutdown"

	maxRecordSeconds = 3600
)

// realtimeVideo streams the preview as multipart/x-mixed-replace JPEG
// parts. The preview runs for the lifetime of the request; closing the
// browser tab stops the device.
func (s *Server) realtimeVideo(c *gin.Context) {
	cfg := s.settings()
	frames, err := s.controller.StartPreview(cfg.Resolution.Width, cfg.Resolution.Height)
	if err != nil {
		c.JSON(http.StatusConflict, jsend.SimpleErr(err.Error()))
		return
	}
	defer s.controller.StopPreview()

	if err := StreamMJPEG(c.Writer, c.Request.Context().Done(), frames); err != nil {
		s.logger.Warnf("preview stream: %s", err)
	}
}

func (s *Server) takePhoto(c *gin.Context) {
	var req ov.PhotoRequest
	if c.Request.ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return
		}
	}

	cfg := s.settings()
	frame, err := s.controller.Capture(cfg.Resolution.Width, cfg.Resolution.Height)
	if err != nil {
		internalErr(c, err)
		return
	}

	artifact, err := s.stg.SavePhoto(req.Name, frame, cfg.PhotoFormat)
	if err != nil {
		internalErr(c, err)
		return
	}
	s.logger.Infof("photo saved: %s", artifact.Path)

	c.JSON(http.StatusOK, jsend.Success(artifact))
}

func (s *Server) record(c *gin.Context) {
	var req ov.RecordRequest
	if err := c.Bind(&req); err != nil {
		return
	}
	if req.Duration <= 0 || req.Duration > maxRecordSeconds {
		c.JSON(http.StatusBadRequest, jsend.SimpleErr(fmt.Sprintf("duration %.1fs out of range", req.Duration)))
		return
	}

	cfg := s.settings()
	ext, fourcc, fallback := video.EffectiveFormat(cfg.VideoFormat, cfg.Codec)
	if fallback {
		s.logger.Infof("codec %s/%s unavailable, recording %s instead", cfg.VideoFormat, cfg.Codec, fourcc)
	}
	name := s.stg.VideoName(req.Name, ext)
	builder, err := video.NewBuilder(s.stg.Path(name), cfg.Resolution.Width, cfg.Resolution.Height, cfg.FPS)
	if err != nil {
		internalErr(c, err)
		return
	}

	duration := time.Duration(req.Duration * float64(time.Second))
	recorder := video.NewRecorder(builder)
	err = s.controller.Record(cfg.Resolution.Width, cfg.Resolution.Height, func(frames <-chan []byte) error {
		return recorder.Record(c.Request.Context(), frames, duration)
	})
	if cerr := builder.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		internalErr(c, err)
		return
	}

	artifact, err := s.stg.Describe(name)
	if err != nil {
		internalErr(c, err)
		return
	}
	s.logger.Infof("recording saved: %s (%d frames, %s)", artifact.Path, builder.FrameCount(), builder.Duration())

	c.JSON(http.StatusOK, jsend.Success(artifact))
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, jsend.Success(s.settings()))
}

func (s *Server) updateSettings(c *gin.Context) {
	cfg := s.settings()
	if err := c.Bind(&cfg); err != nil {
		return
	}
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, jsend.SimpleErr(err.Error()))
		return
	}

	s.cam.UpdateSettings(cfg)
	s.persist(cfg)

	c.JSON(http.StatusOK, jsend.Success(cfg))
}

func (s *Server) resetSettings(c *gin.Context) {
	cfg := config.Default()
	s.cam.UpdateSettings(cfg)
	s.persist(cfg)

	c.JSON(http.StatusOK, jsend.Success(cfg))
}

func (s *Server) listCaptures(c *gin.Context) {
	files, err := s.stg.List()
	if err != nil {
		internalErr(c, err)
		return
	}

	c.JSON(http.StatusOK, jsend.Success(files))
}

func (s *Server) getCapture(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	c.FileAttachment(s.stg.Path(name), name)
}

func (s *Server) status(c *gin.Context) {
	var st ov.Status
	var err error

	if st.CPU, err = ps.CPUStatus(); err != nil {
		internalErr(c, err)
		return
	}
	if st.Memory, err = ps.MemoryStatus(); err != nil {
		internalErr(c, err)
		return
	}
	if st.Disk, err = ps.DiskStatus(s.stg.Dir()); err != nil {
		internalErr(c, err)
		return
	}
	if size, err := ps.DirDiskUsage(s.stg.Dir()); err == nil {
		st.CapturesSize = humanize.Bytes(uint64(size))
	}
	if offset, err := utils.ClockOffset(); err == nil {
		st.ClockOffset = offset.String()
	} else {
		s.logger.Debugf("ntp query: %s", err)
	}

	c.JSON(http.StatusOK, jsend.Success(st))
}

func (s *Server) ctlWebdav(c *gin.Context) {
	switch op := c.Query("op"); op {
	case webDavStart:
		s.dav.Start()
		c.JSON(http.StatusOK, jsend.Success(c.Request.Host))
	case webDavShutdown:
		s.dav.Stop()
		c.JSON(http.StatusOK, jsend.Success(nil))
	default:
		c.JSON(http.StatusBadRequest, jsend.SimpleErr("unknown operation"))
	}
}

package ui

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vincent-vinf/go-jsend"
	"go.uber.org/zap"

	"snapcam/pkg/camera"
	"snapcam/pkg/config"
	"snapcam/pkg/storage"
	"snapcam/pkg/utils"
	"snapcam/pkg/webdav"
)

// Server is the browser GUI: a gin API plus the static index page. It
// drives the shared Controller, so preview, photo and record requests
// interleave on the single device.
type Server struct {
	cam        *camera.Camera
	controller *camera.Controller
	stg        *storage.Storage
	dav        *webdav.Webdav

	settingsPath string

	logger *zap.SugaredLogger
}

func New(cam *camera.Camera, controller *camera.Controller, stg *storage.Storage, dav *webdav.Webdav, settingsPath string) *Server {
	return &Server{
		cam:          cam,
		controller:   controller,
		stg:          stg,
		dav:          dav,
		settingsPath: settingsPath,
		logger:       utils.GetLogger(),
	}
}

// Router assembles the gin engine. staticsDir may be empty to run
// API-only.
func (s *Server) Router(staticsDir string) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(utils.Cors())

	if staticsDir != "" {
		if err := registerStaticsDir(r, staticsDir, "/"); err != nil {
			return nil, err
		}
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, jsend.SimpleErr("page not found"))
	})

	apiRouter := r.Group("/api")

	deviceRouter := apiRouter.Group("/device")
	deviceRouter.GET("/realtime/video", s.realtimeVideo)
	deviceRouter.POST("/photo", s.takePhoto)
	deviceRouter.POST("/record", s.record)
	deviceRouter.PUT("/webdav", s.ctlWebdav)

	settingsRouter := apiRouter.Group("/settings")
	settingsRouter.GET("", s.getSettings)
	settingsRouter.PUT("", s.updateSettings)
	settingsRouter.POST("/reset", s.resetSettings)

	capturesRouter := apiRouter.Group("/captures")
	capturesRouter.GET("", s.listCaptures)
	capturesRouter.GET("/:name", s.getCapture)

	apiRouter.GET("/status", s.status)

	return r, nil
}

func (s *Server) settings() config.Settings {
	return s.cam.Settings()
}

// persist mirrors every settings change to the settings file so the CLI
// and GUI see the same state.
func (s *Server) persist(cfg config.Settings) {
	if s.settingsPath == "" {
		return
	}
	if err := cfg.Save(s.settingsPath); err != nil {
		s.logger.Warnf("persist settings: %s", err)
	}
}

func registerStaticsDir(group gin.IRoutes, dir, relativeGroup string) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("the specified directory %s does not exist", dir)
	}
	dir = filepath.ToSlash(filepath.Clean(dir))
	group.StaticFile(relativeGroup, filepath.Join(dir, "index.html"))
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			relativePath := path.Join(relativeGroup, strings.Replace(filepath.ToSlash(p), dir, "", 1))
			group.StaticFile(relativePath, p)
		}
		return nil
	})
}

func internalErr(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, jsend.SimpleErr(err.Error()))
}

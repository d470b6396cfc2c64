package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"snapcam/pkg/camera"
	"snapcam/pkg/config"
	"snapcam/pkg/storage"
	"snapcam/pkg/ui"
	"snapcam/pkg/utils"
	"snapcam/pkg/video"
	"snapcam/pkg/webdav"
)

const frameTimeout = 10 * time.Second

var logger *zap.SugaredLogger

func init() {
	logger = utils.GetLogger()
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: snapcam [-c id] <command> [options]

commands:
  list      list available cameras
  photo     capture a photo
  video     record a video
  preview   serve a live preview stream
  settings  show, save, load or reset settings
  gui       run the browser UI

run "snapcam <command> -h" for command options
`)
}

func main() {
	defer logger.Sync()

	cameraID := flag.Int("c", -1, "camera device id (overrides settings)")
	flag.IntVar(cameraID, "camera-id", -1, "camera device id (overrides settings)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(0)
	}

	cfg := config.Default()
	if _, err := os.Stat(config.DefaultFile); err == nil {
		if err := cfg.Load(config.DefaultFile); err != nil {
			fatal(err)
		}
	}
	if *cameraID >= 0 {
		cfg.CameraID = *cameraID
	}

	ctx, cancel := utils.NotifyContext(context.Background())
	defer cancel()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	var err error
	switch cmd {
	case "list":
		err = runList()
	case "photo":
		err = runPhoto(ctx, cfg, args)
	case "video":
		err = runVideo(ctx, cfg, args)
	case "preview":
		err = runPreview(ctx, cfg, args)
	case "settings":
		err = runSettings(cfg, args)
	case "gui":
		err = runGUI(ctx, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func runList() error {
	devices := camera.List()
	if len(devices) == 0 {
		fmt.Println("No cameras found")
		return nil
	}
	fmt.Println("Available cameras:")
	for _, d := range devices {
		fmt.Printf("  - %d: %s (%s, %s)\n", d.ID, d.Path, d.Card, d.Driver)
	}

	return nil
}

func runPhoto(ctx context.Context, cfg config.Settings, args []string) error {
	fs := flag.NewFlagSet("photo", flag.ExitOnError)
	name := fs.String("n", "", "output filename")
	count := fs.Int("N", 1, "number of photos to capture")
	interval := fs.Float64("i", 1.0, "interval between photos (seconds)")
	resolution := fs.String("r", "", "resolution, e.g. 1280x720")
	format := fs.String("f", "", "photo format (png, jpg, bmp)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := applyOverrides(&cfg, *resolution, *format, "", 0); err != nil {
		return err
	}

	stg, err := storage.New(storage.DefaultDir)
	if err != nil {
		return err
	}

	cam := camera.New(ctx, cfg)
	frames, err := cam.Start(cfg.Resolution.Width, cfg.Resolution.Height)
	if err != nil {
		return err
	}
	defer cam.Stop()

	for i := 0; i < *count; i++ {
		frame, err := cam.ReadFrame(frames, frameTimeout)
		if err != nil {
			return err
		}
		photoName := *name
		if photoName != "" && *count > 1 {
			photoName = fmt.Sprintf("%s_%d", photoName, i+1)
		}
		artifact, err := stg.SavePhoto(photoName, frame, cfg.PhotoFormat)
		if err != nil {
			return err
		}
		fmt.Println("Photo saved:", artifact.Path)

		if i < *count-1 {
			select {
			case <-time.After(time.Duration(*interval * float64(time.Second))):
			case <-ctx.Done():
				return nil
			}
		}
	}

	return nil
}

func runVideo(ctx context.Context, cfg config.Settings, args []string) error {
	fs := flag.NewFlagSet("video", flag.ExitOnError)
	name := fs.String("n", "", "output filename")
	duration := fs.Float64("d", 0, "recording duration in seconds (0 for manual stop)")
	resolution := fs.String("r", "", "resolution, e.g. 1920x1080")
	format := fs.String("f", "", "video format (mp4, avi, mkv)")
	fps := fs.Int("fps", 0, "frames per second")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := applyOverrides(&cfg, *resolution, "", *format, *fps); err != nil {
		return err
	}

	stg, err := storage.New(storage.DefaultDir)
	if err != nil {
		return err
	}

	ext, fourcc, fallback := video.EffectiveFormat(cfg.VideoFormat, cfg.Codec)
	if fallback {
		logger.Infof("codec %s/%s unavailable, recording %s instead", cfg.VideoFormat, cfg.Codec, fourcc)
	}
	videoName := stg.VideoName(*name, ext)

	recCtx := ctx
	var cancel context.CancelFunc
	if *duration > 0 {
		fmt.Printf("Recording for %.1f seconds... Press Ctrl+C to stop early\n", *duration)
	} else {
		fmt.Println("Press Enter to start recording, then Enter again to stop")
		if err := waitEnter(ctx); err != nil {
			return err
		}
		recCtx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			_ = waitEnter(ctx)
			cancel()
		}()
		fmt.Println("Recording... Press Enter to stop")
	}

	cam := camera.New(ctx, cfg)
	frames, err := cam.Start(cfg.Resolution.Width, cfg.Resolution.Height)
	if err != nil {
		return err
	}
	defer cam.Stop()

	builder, err := video.NewBuilder(stg.Path(videoName), cfg.Resolution.Width, cfg.Resolution.Height, cfg.FPS)
	if err != nil {
		return err
	}
	recorder := video.NewRecorder(builder)
	err = recorder.Record(recCtx, frames, time.Duration(*duration*float64(time.Second)))
	if cerr := builder.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Printf("Recording saved: %s (%d frames, %s)\n", stg.Path(videoName), builder.FrameCount(), builder.Duration())

	return nil
}

func runPreview(ctx context.Context, cfg config.Settings, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	duration := fs.Int("d", 5, "preview duration in seconds (0 for infinite)")
	port := fs.Int("p", 8080, "preview port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cam := camera.New(ctx, cfg)
	frames, err := cam.Start(cfg.Resolution.Width, cfg.Resolution.Height)
	if err != nil {
		return err
	}
	defer cam.Stop()

	previewCtx := ctx
	if *duration > 0 {
		var cancel context.CancelFunc
		previewCtx, cancel = context.WithTimeout(ctx, time.Duration(*duration)*time.Second)
		defer cancel()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if err := ui.StreamMJPEG(w, previewCtx.Done(), frames); err != nil {
			logger.Warnf("preview stream: %s", err)
		}
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: mux,
	}
	go func() {
		<-previewCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Preview at http://localhost:%d/ (press Ctrl+C to quit)\n", *port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func runSettings(cfg config.Settings, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	show := fs.Bool("show", false, "show current settings")
	save := fs.String("save", "", "save settings to file")
	load := fs.String("load", "", "load settings from file")
	reset := fs.Bool("reset", false, "reset to default settings")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *save != "":
		if err := cfg.Save(*save); err != nil {
			return err
		}
		fmt.Println("Settings saved to", *save)
	case *load != "":
		if err := cfg.Load(*load); err != nil {
			return err
		}
		if err := cfg.Save(config.DefaultFile); err != nil {
			return err
		}
		fmt.Println("Settings loaded from", *load)
		return printSettings(cfg)
	case *reset:
		cfg = config.Default()
		if err := cfg.Save(config.DefaultFile); err != nil {
			return err
		}
		fmt.Println("Settings reset to defaults")
	case *show:
		fallthrough
	default:
		return printSettings(cfg)
	}

	return nil
}

func printSettings(cfg config.Settings) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	return nil
}

func runGUI(ctx context.Context, cfg config.Settings, args []string) error {
	fs := flag.NewFlagSet("gui", flag.ExitOnError)
	port := fs.Int("p", 9999, "ui port")
	webdavPort := fs.Int("webdav-port", 9998, "webdav port")
	dir := fs.String("dir", storage.DefaultDir, "capture directory")
	staticsDir := fs.String("statics", "./statics", "statics directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	stg, err := storage.New(*dir)
	if err != nil {
		return err
	}

	cam := camera.New(ctx, cfg)
	defer cam.Stop()
	controller := camera.NewController(cam)
	dav := webdav.New(ctx, *webdavPort, stg.Dir())
	defer dav.Stop()

	srv := ui.New(cam, controller, stg, dav, config.DefaultFile)
	router, err := srv.Router(*staticsDir)
	if err != nil {
		return err
	}

	logger.Infof("ui listening on :%d", *port)
	utils.ListenAndServe(router, *port)

	return nil
}

func applyOverrides(cfg *config.Settings, resolution, photoFormat, videoFormat string, fps int) error {
	if resolution != "" {
		r, err := config.ParseResolution(resolution)
		if err != nil {
			return err
		}
		cfg.Resolution = r
	}
	if photoFormat != "" {
		cfg.PhotoFormat = photoFormat
	}
	if videoFormat != "" {
		cfg.VideoFormat = videoFormat
	}
	if fps > 0 {
		cfg.FPS = fps
	}

	return cfg.Validate()
}

func waitEnter(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		reader := bufio.NewReader(os.Stdin)
		_, _ = reader.ReadString('\n')
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package camera

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"
	"go.uber.org/zap"

	"snapcam/pkg/config"
	"snapcam/pkg/utils"
)

var logger *zap.SugaredLogger

func init() {
	logger = utils.GetLogger()
}

// DevicePath returns the V4L2 device node for a numeric camera id.
func DevicePath(id int) string {
	return fmt.Sprintf("/dev/video%d", id)
}

// Camera wraps a single V4L2 device. It owns the handle exclusively
// between Start and Stop; one stream at a time.
type Camera struct {
	devName string

	ctx context.Context

	lock   sync.Mutex
	cancel context.CancelFunc
	dev    *device.Device

	settings config.Settings
}

func New(ctx context.Context, settings config.Settings) *Camera {
	return &Camera{
		ctx:      ctx,
		devName:  DevicePath(settings.CameraID),
		settings: settings,
	}
}

func (c *Camera) open(width, height int) error {
	if c.dev != nil {
		return ErrStarted
	}
	dev, err := device.Open(
		c.devName,
		device.WithBufferSize(1),
		device.WithFPS(uint32(c.settings.FPS)),
		device.WithPixFormat(v4l2.PixFormat{
			PixelFormat: v4l2.PixelFmtJPEG,
			Width:       uint32(width),
			Height:      uint32(height),
		}),
	)
	if err != nil {
		return deviceErr(c.devName, "open", err)
	}
	c.dev = dev

	return nil
}

func (c *Camera) IsStarted() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.dev != nil
}

// Start opens the device at the given resolution, begins streaming and
// returns the frame channel. Image controls are applied once the stream
// is up.
func (c *Camera) Start(width, height int) (<-chan []byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	logger.Infof("start camera %s in %d*%d", c.devName, width, height)
	if err := c.open(width, height); err != nil {
		return nil, err
	}

	newCtx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	if err := c.dev.Start(newCtx); err != nil {
		cancel()
		c.dev.Close()
		c.dev = nil
		c.cancel = nil
		return nil, deviceErr(c.devName, "start stream", err)
	}

	c.applyControls()

	return c.dev.GetOutput(), nil
}

// Stop cancels the stream context and closes the device.
func (c *Camera) Stop() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.cancel != nil {
		// Cancel first so the go4vl stream goroutine reaches its
		// ctx.Done branch before we race it with Close.
		c.cancel()
		time.Sleep(100 * time.Millisecond)
		c.cancel = nil
	}
	if c.dev != nil {
		err := c.dev.Close()
		c.dev = nil
		if err != nil {
			return deviceErr(c.devName, "close", err)
		}
	}
	return nil
}

// ReadFrame takes a single frame off a running stream. A copy is
// returned since go4vl reuses its buffers.
func (c *Camera) ReadFrame(frames <-chan []byte, timeout time.Duration) ([]byte, error) {
	select {
	case frame, ok := <-frames:
		if !ok {
			return nil, deviceErr(c.devName, "read", ErrStreamClosed)
		}
		out := make([]byte, len(frame))
		copy(out, frame)
		return out, nil
	case <-time.After(timeout):
		return nil, deviceErr(c.devName, "read", ErrFrameTimeout)
	case <-c.ctx.Done():
		return nil, deviceErr(c.devName, "read", c.ctx.Err())
	}
}

func (c *Camera) Settings() config.Settings {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.settings
}

// UpdateSettings replaces the stored settings and re-applies the image
// controls on a live device. Resolution and fps changes take effect on
// the next Start.
func (c *Camera) UpdateSettings(settings config.Settings) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.settings = settings
	c.devName = DevicePath(settings.CameraID)

	c.applyControls()
}

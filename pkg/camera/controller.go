package camera

import (
	"strings"
	"sync"
	"time"
)

// Controller coordinates a persistent preview with one-shot capture and
// recording on the same device.
//
// Behavior:
//   - StartPreview(width, height) starts the device at the given
//     resolution and returns a channel of JPEG frames. The channel stays
//     the same for the preview lifetime; StopPreview closes it.
//   - Capture and Record temporarily stop the device, run at their own
//     resolution, then restore the preview resolution. The preview
//     channel stays open meanwhile but receives no frames.
type Controller struct {
	mu sync.Mutex

	cam *Camera

	// external preview channel, created on first StartPreview
	previewCh chan []byte

	// preview loop control
	loopStop  chan struct{}
	srcUpdate chan (<-chan []byte)

	// preview resolution, restored after capture/record
	pW, pH int

	previewing bool
}

func NewController(cam *Camera) *Controller {
	return &Controller{cam: cam}
}

// StartPreview starts streaming at width x height and returns the
// preview channel. Fails if a preview is already running.
func (c *Controller) StartPreview(width, height int) (<-chan []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.previewing {
		return nil, ErrStarted
	}

	if c.previewCh == nil {
		c.previewCh = make(chan []byte, 1)
		c.loopStop = make(chan struct{})
		c.srcUpdate = make(chan (<-chan []byte), 1)
		go c.previewLoop(c.previewCh, c.loopStop, c.srcUpdate)
	}

	frames, err := c.cam.Start(width, height)
	if err != nil {
		return nil, err
	}
	c.pW, c.pH = width, height
	c.previewing = true

	c.srcUpdate <- frames

	return c.previewCh, nil
}

// StopPreview stops the device and closes the preview channel.
func (c *Controller) StopPreview() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.previewing && c.previewCh == nil {
		return nil
	}
	c.previewing = false
	// stop the device first so the loop stops receiving frames
	_ = c.cam.Stop()
	if c.loopStop != nil {
		close(c.loopStop)
		c.loopStop = nil
	}
	// the loop closes previewCh; reset for a future restart
	c.srcUpdate = nil
	c.previewCh = nil

	return nil
}

func (c *Controller) Previewing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previewing
}

// Capture takes a single frame at width x height. A running preview is
// paused for the duration and resumed afterwards.
func (c *Controller) Capture(width, height int) ([]byte, error) {
	var img []byte
	err := c.withExclusive(width, height, func(frames <-chan []byte) error {
		frame, err := c.cam.ReadFrame(frames, 10*time.Second)
		if err != nil {
			return err
		}
		img = frame
		return nil
	})
	if err != nil {
		return nil, err
	}

	return img, nil
}

// Record runs fn on an exclusive stream at width x height, pausing and
// resuming the preview the same way Capture does. fn owns the stream
// until it returns.
func (c *Controller) Record(width, height int, fn func(frames <-chan []byte) error) error {
	return c.withExclusive(width, height, fn)
}

// withExclusive stops a running preview, hands fn a fresh stream at the
// requested resolution and restores the preview afterwards.
func (c *Controller) withExclusive(width, height int, fn func(frames <-chan []byte) error) error {
	c.mu.Lock()
	wasPreviewing := c.previewing
	c.previewing = false
	c.mu.Unlock()

	if wasPreviewing {
		// the preview loop pauses once its source drains
		_ = c.cam.Stop()
	}

	frames, err := c.cam.Start(width, height)
	if err != nil {
		c.restorePreview(wasPreviewing)
		return err
	}

	fnErr := fn(frames)

	_ = c.cam.Stop()
	c.restorePreview(wasPreviewing)

	return fnErr
}

func (c *Controller) restorePreview(wasPreviewing bool) {
	if !wasPreviewing {
		return
	}
	fr, err := c.resumePreview(c.pW, c.pH)
	if err != nil {
		logger.Warnf("failed to resume preview: %v", err)
		return
	}
	if !c.attachSource(fr) {
		// StopPreview ran while the exclusive operation was in
		// flight; the resumed stream has no consumer
		_ = c.cam.Stop()
	}
}

// attachSource hands a resumed stream to the preview loop. It reports
// false when the preview was torn down in the meantime, in which case
// the caller must stop the camera again.
func (c *Controller) attachSource(fr <-chan []byte) bool {
	c.mu.Lock()
	src := c.srcUpdate
	if src == nil {
		c.mu.Unlock()
		return false
	}
	c.previewing = true
	c.mu.Unlock()

	src <- fr

	return true
}

// previewLoop forwards frames from the current source into out. The
// channels are owned by the loop: out stays open across temporary
// stops and is closed here, and only here, when stop fires. The loop
// works on the handed-in values rather than the struct fields, so
// StopPreview nilling the fields cannot lose the close signal.
func (c *Controller) previewLoop(out chan []byte, stop <-chan struct{}, src <-chan (<-chan []byte)) {
	var current <-chan []byte
	for {
		if current == nil {
			select {
			case <-stop:
				close(out)
				return
			case ch := <-src:
				current = ch
			}
			continue
		}

		select {
		case <-stop:
			close(out)
			return
		case ch := <-src:
			current = ch
		case frame, ok := <-current:
			if !ok {
				// source ended (capture in progress); pause until a
				// new source arrives
				current = nil
				continue
			}
			if len(frame) == 0 {
				continue
			}
			// non-blocking forward; drop on a slow consumer
			select {
			case out <- append([]byte(nil), frame...):
			default:
			}
		}
	}
}

// resumePreview restarts the preview stream after a capture, retrying
// through the driver's transient EBUSY window.
func (c *Controller) resumePreview(width, height int) (<-chan []byte, error) {
	time.Sleep(50 * time.Millisecond)
	var (
		fr  <-chan []byte
		err error
	)
	for i := 0; i < 5; i++ {
		fr, err = c.cam.Start(width, height)
		if err == nil {
			return fr, nil
		}
		if !isBusyErr(err) {
			break
		}
		logger.Warnf("failed to resume preview will retry %d/5: %v", i+1, err)
		time.Sleep(150 * time.Millisecond)
	}
	return nil, err
}

func isBusyErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "busy") || strings.Contains(s, "ebusy")
}

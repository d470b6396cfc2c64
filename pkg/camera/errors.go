package camera

import (
	"errors"
	"fmt"
)

var (
	ErrStarted      = errors.New("already started")
	ErrNotStarted   = errors.New("camera not started")
	ErrStreamClosed = errors.New("frame stream closed")
	ErrFrameTimeout = errors.New("timed out waiting for frame")
	ErrNoJPEGFormat = errors.New("device has no JPEG frame format")
)

// DeviceError wraps any failure to open, stream or read from a device.
// Nothing is retried; the current operation aborts and the handle is
// released.
type DeviceError struct {
	Device string
	Op     string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s: %s: %s", e.Device, e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

func deviceErr(dev, op string, err error) error {
	return &DeviceError{Device: dev, Op: op, Err: err}
}

// IsDeviceError reports whether err is (or wraps) a DeviceError.
func IsDeviceError(err error) bool {
	var de *DeviceError
	return errors.As(err, &de)
}

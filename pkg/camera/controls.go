package camera

import (
	"github.com/vladimirvivien/go4vl/v4l2"

	"snapcam/pkg/config"
)

const (
	ctrlBrightness v4l2.CtrlID = 9963776 // V4L2_CID_BRIGHTNESS
	ctrlContrast   v4l2.CtrlID = 9963777 // V4L2_CID_CONTRAST
	ctrlSaturation v4l2.CtrlID = 9963778 // V4L2_CID_SATURATION
)

// applyControls pushes the configured image controls to an open device.
// Unset controls are skipped; a control the driver rejects is only
// logged, matching how desktop capture stacks treat unsupported props.
// Callers hold c.lock.
func (c *Camera) applyControls() {
	if c.dev == nil {
		return
	}
	for _, ctrl := range []struct {
		id    v4l2.CtrlID
		value int
		name  string
	}{
		{ctrlBrightness, c.settings.Brightness, "brightness"},
		{ctrlContrast, c.settings.Contrast, "contrast"},
		{ctrlSaturation, c.settings.Saturation, "saturation"},
	} {
		if ctrl.value == config.ControlUnset {
			continue
		}
		if err := c.dev.SetControlValue(ctrl.id, v4l2.CtrlValue(ctrl.value)); err != nil {
			logger.Warnf("set %s(%d) to %d, err: %s", ctrl.name, ctrl.id, ctrl.value, err)
		}
	}
}

// GetControl reads the current value of a control from the open device.
func (c *Camera) GetControl(id v4l2.CtrlID) (v4l2.CtrlValue, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.dev == nil {
		return 0, ErrNotStarted
	}
	ctrl, err := v4l2.GetControl(c.dev.Fd(), id)
	if err != nil {
		return 0, deviceErr(c.devName, "get control", err)
	}

	return ctrl.Value, nil
}

// MaxSize reports the largest JPEG frame size the device advertises.
func (c *Camera) MaxSize() (width, height int, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	dev := c.dev
	if dev == nil {
		probe, err := openProbe(c.devName)
		if err != nil {
			return 0, 0, err
		}
		defer probe.Close()
		dev = probe
	}

	sizes, err := v4l2.GetAllFormatFrameSizes(dev.Fd())
	if err != nil {
		return 0, 0, deviceErr(c.devName, "query frame sizes", err)
	}
	for _, size := range sizes {
		if size.PixelFormat == v4l2.PixelFmtJPEG {
			return int(size.Size.MaxWidth), int(size.Size.MaxHeight), nil
		}
	}

	return 0, 0, deviceErr(c.devName, "query frame sizes", ErrNoJPEGFormat)
}

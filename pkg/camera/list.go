package camera

import (
	"os"

	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"

	"snapcam/pkg/ov"
)

// maxProbeID bounds the device id scan, same range the desktop tools
// probe.
const maxProbeID = 10

func openProbe(devName string) (*device.Device, error) {
	dev, err := device.Open(
		devName,
		device.WithBufferSize(1),
		device.WithPixFormat(v4l2.PixFormat{
			PixelFormat: v4l2.PixelFmtJPEG,
			Width:       320,
			Height:      240,
		}),
	)
	if err != nil {
		return nil, deviceErr(devName, "open", err)
	}

	return dev, nil
}

// List probes /dev/video0..9 and returns the nodes that open as capture
// devices.
func List() []ov.DeviceInfo {
	var res []ov.DeviceInfo
	for id := 0; id < maxProbeID; id++ {
		path := DevicePath(id)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		dev, err := device.Open(path)
		if err != nil {
			logger.Debugf("probe %s: %s", path, err)
			continue
		}
		cap := dev.Capability()
		res = append(res, ov.DeviceInfo{
			ID:     id,
			Path:   path,
			Driver: cap.Driver,
			Card:   cap.Card,
		})
		dev.Close()
	}

	return res
}

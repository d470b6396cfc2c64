package ov

import (
	"time"

	"snapcam/pkg/utils/ps"
)

// DeviceInfo describes one probed capture device.
type DeviceInfo struct {
	ID     int    `json:"id"`
	Path   string `json:"path"`
	Driver string `json:"driver"`
	Card   string `json:"card"`
}

// File is one entry of the captures listing.
type File struct {
	Name    string    `json:"name"`
	Size    string    `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Artifact is the result of a photo or record operation.
type Artifact struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size string `json:"size"`
}

// Status is the system view served by the GUI.
type Status struct {
	CPU    ps.CPU    `json:"cpu"`
	Memory ps.Memory `json:"memory"`
	Disk   ps.Disk   `json:"disk"`

	CapturesSize string `json:"capturesSize"`

	// NTP offset of the local clock; empty when the query failed.
	ClockOffset string `json:"clockOffset,omitempty"`
}

// RecordRequest is the GUI record payload.
type RecordRequest struct {
	Duration float64 `json:"duration" binding:"required"`
	Name     string  `json:"name"`
}

// PhotoRequest is the GUI photo payload.
type PhotoRequest struct {
	Name string `json:"name"`
}

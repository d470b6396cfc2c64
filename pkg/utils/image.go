package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
)

// ConvertJPEG re-encodes a JPEG frame into the requested photo format.
// jpg is a pass-through since that is what the device delivers.
func ConvertJPEG(frame []byte, format string) ([]byte, error) {
	switch format {
	case "jpg", "jpeg":
		return frame, nil
	case "png", "bmp":
	default:
		return nil, fmt.Errorf("unsupported photo format %q", format)
	}

	img, err := jpeg.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	var buf bytes.Buffer
	if format == "png" {
		err = png.Encode(&buf, img)
	} else {
		err = bmp.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	return buf.Bytes(), nil
}

// JPEGSize reports the dimensions of an encoded JPEG frame without a full
// decode.
func JPEGSize(frame []byte) (width, height int, err error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// EncodeJPEG produces a JPEG frame from an image, used by tests and the
// preview placeholder.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package ui

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"snapcam/pkg/utils"
)

// StreamMJPEG writes frames to w as a multipart/x-mixed-replace stream
// until done fires or the frame channel closes. Backlogged frames are
// drained so the client always sees the freshest one.
func StreamMJPEG(w http.ResponseWriter, done <-chan struct{}, frames <-chan []byte) error {
	logger := utils.GetLogger()

	mimeWriter := multipart.NewWriter(w)
	w.Header().Set("Content-Type", fmt.Sprintf("multipart/x-mixed-replace; boundary=%s", mimeWriter.Boundary()))
	partHeader := make(textproto.MIMEHeader)
	partHeader.Add("Content-Type", "image/jpeg")

	for {
		select {
		case <-done:
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			for {
				select {
				case f := <-frames:
					frame = f
					continue
				default:
				}
				break
			}

			partWriter, err := mimeWriter.CreatePart(partHeader)
			if err != nil {
				return fmt.Errorf("create multi-part writer: %w", err)
			}
			if _, err := partWriter.Write(frame); err != nil {
				logger.Warnf("failed to write frame: %s", err)
				return nil
			}
			if err := http.NewResponseController(w).Flush(); err != nil {
				return nil
			}
		}
	}
}

package video

import "errors"

var ErrStreamEnded = errors.New("frame stream ended during recording")

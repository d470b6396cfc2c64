package video

import (
	"context"
	"time"

	"go.uber.org/zap"

	"snapcam/pkg/utils"
)

var logger *zap.SugaredLogger

func init() {
	logger = utils.GetLogger()
}

// Recorder drains a frame channel into a Builder until a duration
// elapses or the context is cancelled. Frame pacing comes from the
// device itself; a failed read is skipped, never retried.
type Recorder struct {
	builder *Builder
}

func NewRecorder(builder *Builder) *Recorder {
	return &Recorder{builder: builder}
}

// Record consumes frames for the given wall-clock duration. A duration
// of zero records until ctx is cancelled. The builder is left open so
// the caller can inspect it before Close.
func (r *Recorder) Record(ctx context.Context, frames <-chan []byte, duration time.Duration) error {
	var stop <-chan time.Time
	if duration > 0 {
		t := time.NewTimer(duration)
		defer t.Stop()
		stop = t.C
	}

	progress := time.NewTicker(time.Second)
	defer progress.Stop()
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			logger.Info("recording interrupted")
			return nil
		case <-stop:
			return nil
		case <-progress.C:
			if duration > 0 {
				logger.Infof("recording: %.1fs / %.1fs", time.Since(start).Seconds(), duration.Seconds())
			} else {
				logger.Infof("recording: %.1fs", time.Since(start).Seconds())
			}
		case frame, ok := <-frames:
			if !ok {
				return ErrStreamEnded
			}
			if len(frame) == 0 {
				logger.Warn("skipping empty frame")
				continue
			}
			if err := r.builder.Add(frame); err != nil {
				return err
			}
		}
	}
}

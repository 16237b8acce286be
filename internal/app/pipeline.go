package app

import (
	"context"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/posecontrol/internal/gesture"
	"github.com/ayusman/posecontrol/pkg/logger"
	"github.com/ayusman/posecontrol/pkg/metrics"
)

// run is the frame clock. Each tick reads one frame and processes it; ticks that
// arrive while a frame is still being processed are dropped by the ticker.
func (a *App) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !a.Enabled() {
				continue
			}
			a.tick(ctx)
		}
	}
}

func (a *App) tick(ctx context.Context) {
	frame, err := a.config.Camera.ReadFrame()
	if err != nil {
		a.log.Debug(ctx, "read frame", logger.Error(err))
		return
	}
	defer frame.Close()

	a.ProcessFrame(ctx, frame)
}

// ProcessFrame runs detection, the gesture engine and the overlay on one frame.
// Detector errors skip the frame. The frame is drawn on in place.
func (a *App) ProcessFrame(ctx context.Context, frame *gocv.Mat) (gesture.Command, bool) {
	start := time.Now()
	defer func() {
		metrics.RecordFrameLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	poses, err := a.config.Detector.Detect(frame)
	if err != nil {
		metrics.RecordDetectorError()
		a.log.Warn(ctx, "pose detection failed", logger.Error(err))
		return "", false
	}

	cmd, fired := a.config.Engine.Process(ctx, poses)

	if a.config.Publisher != nil {
		a.config.Publisher.PublishPoses(poses)
	}
	if a.config.Renderer != nil {
		if err := a.config.Renderer.Render(frame, poses); err != nil {
			a.log.Debug(ctx, "render overlay", logger.Error(err))
		}
	}
	return cmd, fired
}

// Package detector turns camera frames into pose snapshots.
package detector

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/posecontrol/internal/pose"
)

// Detector defines the interface for pose estimation implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected poses,
	// most prominent first. Returns an empty slice if nobody is visible.
	Detect(frame *gocv.Mat) ([]pose.Pose, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// Script is the path of the pose service. Empty means search the usual locations.
	Script string

	// Python is the interpreter used to run Script. Empty means a venv python or python3.
	Python string

	// MaxPoses is the maximum number of poses requested per frame (default: 1).
	MaxPoses int

	// MinPoseScore drops poses scoring below it (0.0-1.0).
	MinPoseScore float64

	// IdleTimeout stops the service after this long without frames.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxPoses:     1,
		MinPoseScore: 0.1,
		IdleTimeout:  30 * time.Second,
	}
}

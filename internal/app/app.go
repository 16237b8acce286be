// Package app wires the frame pipeline: camera, pose detector, gesture engine and overlay.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ayusman/posecontrol/internal/capture"
	"github.com/ayusman/posecontrol/internal/detector"
	"github.com/ayusman/posecontrol/internal/gesture"
	"github.com/ayusman/posecontrol/internal/overlay"
	"github.com/ayusman/posecontrol/internal/pose"
	"github.com/ayusman/posecontrol/internal/store"
	"github.com/ayusman/posecontrol/pkg/logger"
)

// ErrNoEngine is returned by New without a gesture engine.
var ErrNoEngine = errors.New("app requires a gesture engine")

// PosePublisher receives the poses of every processed frame.
type PosePublisher interface {
	PublishPoses(poses []pose.Pose)
}

// Config holds the collaborators of the application.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Engine   *gesture.Engine
	// Renderer and Publisher are optional.
	Renderer  *overlay.Renderer
	Publisher PosePublisher
	// Store persists the zone layout and the detection toggle. Optional.
	Store  *store.Store
	FPS    int
	Logger logger.Logger
}

// App is the main application that runs detection and dispatches gestures.
type App struct {
	config Config
	log    logger.Logger

	mu      sync.RWMutex
	enabled bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates an App. Detection starts enabled unless the store says otherwise.
func New(config Config) (*App, error) {
	if config.Engine == nil {
		return nil, ErrNoEngine
	}
	if config.Camera == nil {
		config.Camera = capture.NewBlankCamera(capture.DefaultWidth, capture.DefaultHeight)
	}
	if config.Detector == nil {
		config.Detector = detector.NewMockDetector()
	}
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.FPS > capture.MaxFPS {
		config.FPS = capture.MaxFPS
	}

	a := &App{
		config:  config,
		log:     config.Logger,
		enabled: true,
	}
	if a.log == nil {
		a.log = logger.Nop()
	}
	if config.Store != nil {
		a.enabled = config.Store.Settings().Bool(store.SettingDetectionEnabled, true)
	}
	return a, nil
}

// LoadLayout seeds missing zones and installs the stored layout in the classifier.
func (a *App) LoadLayout() error {
	if a.config.Store == nil {
		return nil
	}

	zones := a.config.Store.Zones()
	if err := zones.Seed(); err != nil {
		return err
	}
	layout, err := zones.Layout()
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}
	a.config.Engine.Classifier().SetLayout(layout)
	a.log.Info(context.Background(), "zone layout loaded", logger.Int("zones", len(layout.Zones())))
	return nil
}

// Enabled reports whether gesture detection is on.
func (a *App) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetEnabled turns gesture detection on or off and persists the choice.
func (a *App) SetEnabled(enabled bool) error {
	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingDetectionEnabled, enabled); err != nil {
			return err
		}
	}

	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	a.log.Info(context.Background(), "detection toggled", logger.Bool("enabled", enabled))
	return nil
}

// Start opens the camera and runs the pipeline until Stop or ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}

	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.config.Camera.SetFPS(a.config.FPS)

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.run(runCtx, a.done)

	a.log.Info(ctx, "detection pipeline started", logger.Int("fps", a.config.FPS))
	return nil
}

// Stop halts the pipeline and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	ctx := context.Background()
	if err := a.config.Camera.Close(); err != nil {
		a.log.Warn(ctx, "close camera", logger.Error(err))
	}
	if err := a.config.Detector.Close(); err != nil {
		a.log.Warn(ctx, "close detector", logger.Error(err))
	}
	a.log.Info(ctx, "detection pipeline stopped")
}

// Engine returns the gesture engine.
func (a *App) Engine() *gesture.Engine {
	return a.config.Engine
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.config.Camera
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	return a.config.Detector
}

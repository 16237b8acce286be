package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/posecontrol/internal/app"
	"github.com/ayusman/posecontrol/internal/capture"
	"github.com/ayusman/posecontrol/internal/config"
	"github.com/ayusman/posecontrol/internal/detector"
	"github.com/ayusman/posecontrol/internal/dispatch"
	"github.com/ayusman/posecontrol/internal/gesture"
	"github.com/ayusman/posecontrol/internal/overlay"
	"github.com/ayusman/posecontrol/internal/server"
	"github.com/ayusman/posecontrol/internal/store"
	"github.com/ayusman/posecontrol/internal/tray"
	"github.com/ayusman/posecontrol/internal/zone"
	"github.com/ayusman/posecontrol/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "posecontrol: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Named("posecontrol")

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	policy, err := gesture.ParseReleasePolicy(cfg.Gate.Release)
	if err != nil {
		return err
	}

	dispatcher := dispatch.NewHTTPDispatcher(dispatch.Config{
		BaseURL: cfg.Dispatch.BaseURL,
		Timeout: cfg.Dispatch.Timeout,
		Logger:  logger.Named("dispatch"),
	})
	defer dispatcher.Wait()

	engine := gesture.NewEngine(gesture.EngineConfig{
		Classifier: gesture.NewClassifier(zone.DefaultLayout()),
		Gate:       gesture.NewGate(policy, cfg.Gate.Cooldown),
		Dispatcher: dispatcher,
		Logger:     logger.Named("engine"),
	})

	renderer := overlay.NewRenderer(engine.Classifier())
	engine.Subscribe(renderer.HandleEvent)

	hub := server.NewHub(logger.Named("events"))
	engine.Subscribe(hub.HandleEvent)

	det, err := newDetector(cfg, log)
	if err != nil {
		return err
	}

	application, err := app.New(app.Config{
		Camera:    capture.NewCamera(capture.Config{DeviceID: cfg.CameraID, FPS: cfg.FPS}),
		Detector:  det,
		Engine:    engine,
		Renderer:  renderer,
		Publisher: hub,
		Store:     st,
		FPS:       cfg.FPS,
		Logger:    logger.Named("pipeline"),
	})
	if err != nil {
		return err
	}
	if err := application.LoadLayout(); err != nil {
		return err
	}

	if err := application.Start(ctx); err != nil {
		return err
	}
	defer application.Stop()

	srv := server.New(server.Config{
		StaticDir: findWebDir(),
		Store:     st,
		Engine:    engine,
		Frames:    renderer,
		Hub:       hub,
		Toggle:    application,
		Logger:    logger.Named("http"),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, cfg.Addr)
		cancel()
	}()

	if cfg.Tray {
		runTray(ctx, cancel, application, engine, dashboardURL(cfg.Addr))
	} else {
		<-ctx.Done()
	}

	cancel()
	err = <-errCh
	log.Info(context.Background(), "shutting down")
	return err
}

func newDetector(cfg *config.Config, log logger.Logger) (detector.Detector, error) {
	if cfg.Detector == config.DetectorMock {
		log.Warn(context.Background(), "using mock pose detector")
		return detector.NewMockDetector(), nil
	}

	dcfg := detector.DefaultConfig()
	dcfg.Script = cfg.DetectorScript
	det, err := detector.NewPoseNetDetector(dcfg)
	if err != nil {
		if errors.Is(err, detector.ErrScriptNotFound) {
			return nil, fmt.Errorf("%w (set detector_script or detector: mock)", err)
		}
		return nil, err
	}
	return det, nil
}

// runTray blocks on the tray menu until it quits or ctx ends.
func runTray(ctx context.Context, cancel context.CancelFunc, application *app.App, engine *gesture.Engine, url string) {
	t := tray.New(application.Enabled())
	t.OnToggle(application.SetEnabled)
	t.OnRelease(func() { engine.Release(context.Background()) })
	t.OnDashboard(func() { openBrowser(url) })
	t.OnQuit(cancel)
	engine.Subscribe(t.HandleEvent)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Get().Warn(context.Background(), "open browser", logger.Error(err))
		return
	}
	go cmd.Wait()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.posecontrol/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".posecontrol", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

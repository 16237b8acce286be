package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayusman/posecontrol/internal/config"
	"github.com/ayusman/posecontrol/internal/gamecontrol"
	"github.com/ayusman/posecontrol/internal/plugin"
	"github.com/ayusman/posecontrol/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gamecontrol: %v\n", err)
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
	log := logger.Named("gamecontrol")

	manager := plugin.NewManager(cfg.GameControl.PluginDir, logger.Named("plugins"))
	if err := manager.Discover(); err != nil {
		return fmt.Errorf("discover plugins: %w", err)
	}
	if _, err := manager.Get(cfg.GameControl.Plugin); err != nil {
		return fmt.Errorf("key plugin %q in %s: %w", cfg.GameControl.Plugin, cfg.GameControl.PluginDir, err)
	}

	presser := gamecontrol.NewPluginPresser(manager, plugin.NewExecutor(cfg.GameControl.Timeout), cfg.GameControl.Plugin)
	srv := &http.Server{
		Addr:              cfg.GameControl.Addr,
		Handler:           gamecontrol.New(gamecontrol.Config{Presser: presser, Logger: log}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "game control listening", logger.String("addr", srv.Addr), logger.String("plugin", cfg.GameControl.Plugin))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

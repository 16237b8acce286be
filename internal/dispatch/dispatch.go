// Package dispatch delivers gesture commands to the game-control endpoint.
package dispatch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/posecontrol/internal/gesture"
	"github.com/ayusman/posecontrol/pkg/logger"
	"github.com/ayusman/posecontrol/pkg/metrics"
)

// DefaultBaseURL is the game-control endpoint commands are appended to.
const DefaultBaseURL = "http://localhost:5000/gameControl"

// DefaultTimeout bounds a single request. Requests outlive the caller's
// context, so this is what keeps a hung receiver from stalling Wait.
const DefaultTimeout = 2 * time.Second

// Config configures an HTTPDispatcher.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
	Logger  logger.Logger
}

// HTTPDispatcher posts each command to <BaseURL>/<command> in the background.
// Requests are fire-and-forget: responses are discarded and failures are only
// logged and counted.
type HTTPDispatcher struct {
	baseURL string
	client  *http.Client
	log     logger.Logger
	wg      sync.WaitGroup
}

// NewHTTPDispatcher creates an HTTPDispatcher.
func NewHTTPDispatcher(cfg Config) *HTTPDispatcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &HTTPDispatcher{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  cfg.Client,
		log:     cfg.Logger,
	}
}

// URL returns the endpoint cmd is posted to.
func (d *HTTPDispatcher) URL(cmd gesture.Command) string {
	return d.baseURL + "/" + cmd.String()
}

// Dispatch sends cmd without blocking the caller.
// The request is detached from ctx cancellation so a shutdown does not drop a fired command.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, cmd gesture.Command) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.send(context.WithoutCancel(ctx), cmd)
	}()
}

// Wait blocks until every in-flight request has finished.
func (d *HTTPDispatcher) Wait() {
	d.wg.Wait()
}

func (d *HTTPDispatcher) send(ctx context.Context, cmd gesture.Command) {
	start := time.Now()
	defer func() {
		metrics.RecordDispatchLatency(float64(time.Since(start).Milliseconds()))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL(cmd), http.NoBody)
	if err != nil {
		d.fail(ctx, cmd, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.fail(ctx, cmd, err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		metrics.RecordDispatchFailure(cmd.String())
		d.log.Debug(ctx, "game control rejected command",
			logger.String("command", cmd.String()),
			logger.Int("status", resp.StatusCode),
		)
	}
}

func (d *HTTPDispatcher) fail(ctx context.Context, cmd gesture.Command, err error) {
	metrics.RecordDispatchFailure(cmd.String())
	d.log.Debug(ctx, "dispatch failed", logger.String("command", cmd.String()), logger.Error(err))
}

// Recorder keeps every dispatched command in memory.
type Recorder struct {
	mu       sync.Mutex
	commands []gesture.Command
}

// Dispatch records cmd.
func (r *Recorder) Dispatch(_ context.Context, cmd gesture.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
}

// Commands returns a copy of the recorded commands.
func (r *Recorder) Commands() []gesture.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gesture.Command(nil), r.commands...)
}

// Reset clears the recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
}

var (
	_ gesture.Dispatcher = (*HTTPDispatcher)(nil)
	_ gesture.Dispatcher = (*Recorder)(nil)
)

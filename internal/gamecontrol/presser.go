// Package gamecontrol is the receiving end of dispatched commands: an HTTP
// endpoint that turns each command into an arrow key press.
package gamecontrol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ayusman/posecontrol/internal/gesture"
	"github.com/ayusman/posecontrol/internal/plugin"
)

// PressAction is the plugin action that taps a key.
const PressAction = "press"

// ErrPressFailed wraps a plugin's own failure report.
var ErrPressFailed = errors.New("key press failed")

// Presser performs the key press for a command.
type Presser interface {
	Press(ctx context.Context, cmd gesture.Command) error
}

// PluginPresser presses keys through a named plugin.
type PluginPresser struct {
	manager  *plugin.Manager
	executor *plugin.Executor
	name     string
}

// NewPluginPresser creates a presser that runs the plugin called name.
func NewPluginPresser(manager *plugin.Manager, executor *plugin.Executor, name string) *PluginPresser {
	return &PluginPresser{manager: manager, executor: executor, name: name}
}

// Press runs the plugin with the command's key.
func (p *PluginPresser) Press(ctx context.Context, cmd gesture.Command) error {
	plug, err := p.manager.Get(p.name)
	if err != nil {
		return err
	}
	if !plug.Manifest.Supports(PressAction) {
		return fmt.Errorf("plugin %s does not support %q", p.name, PressAction)
	}

	params, err := json.Marshal(map[string]string{"key": cmd.Key()})
	if err != nil {
		return err
	}

	resp, err := p.executor.Execute(ctx, plug, &plugin.Request{
		Action:  PressAction,
		Command: cmd.String(),
		Params:  params,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrPressFailed, resp.Error)
	}
	return nil
}

// RecordingPresser records presses in memory.
type RecordingPresser struct {
	mu      sync.Mutex
	pressed []gesture.Command
	err     error
}

// Press records cmd, or returns the configured error.
func (r *RecordingPresser) Press(_ context.Context, cmd gesture.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.pressed = append(r.pressed, cmd)
	return nil
}

// SetError makes subsequent presses fail with err.
func (r *RecordingPresser) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Pressed returns the recorded commands.
func (r *RecordingPresser) Pressed() []gesture.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gesture.Command(nil), r.pressed...)
}

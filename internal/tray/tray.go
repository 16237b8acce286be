// Package tray provides the system tray menu of the posecontrol controller.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/posecontrol/internal/gesture"
)

const (
	titleEnabled  = "● Detection on"
	titleDisabled = "○ Detection off"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle    func(enabled bool) error
	onRelease   func()
	onDashboard func()
	onQuit      func()
	enabled     bool
	last        gesture.Command
	held        bool
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle  *systray.MenuItem
	menuLast    *systray.MenuItem
	menuRelease *systray.MenuItem
}

// New creates a new Tray showing the given detection state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback run when detection is switched. A returned error
// keeps the previous state.
func (t *Tray) OnToggle(fn func(enabled bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnRelease sets the callback run when the held gesture is released from the menu.
func (t *Tray) OnRelease(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRelease = fn
}

// OnDashboard sets the callback run when the dashboard menu item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called and must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("PoseControl")
	systray.SetTooltip("PoseControl body gesture controller")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture detection")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(lastTitle(t.last), "Last fired command")
	t.menuLast.Disable()
	t.menuRelease = systray.AddMenuItem("Release gesture", "Allow the next gesture to fire")
	if !t.held {
		t.menuRelease.Disable()
	}
	systray.AddSeparator()
	t.mu.Unlock()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the zone overlay in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit PoseControl")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuRelease.ClickedCh:
				t.handleRelease()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle flips detection and reverts if the callback fails.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	enabled := !t.enabled
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		if err := callback(enabled); err != nil {
			return
		}
	}

	t.SetEnabled(enabled)
}

// handleRelease handles the release menu item click.
func (t *Tray) handleRelease() {
	t.mu.RLock()
	callback := t.onRelease
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleDashboard handles the dashboard menu item click.
func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// HandleEvent tracks the last command and whether a gesture is held.
// It is meant to be subscribed to a gesture.Engine.
func (t *Tray) HandleEvent(ev gesture.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Type {
	case gesture.EventFired:
		t.last = ev.Command
		t.held = true
		if t.menuLast != nil {
			t.menuLast.SetTitle(lastTitle(t.last))
		}
		if t.menuRelease != nil {
			t.menuRelease.Enable()
		}
	case gesture.EventReleased:
		t.held = false
		if t.menuRelease != nil {
			t.menuRelease.Disable()
		}
	}
}

// SetEnabled updates the detection state shown in the menu.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// LastCommand returns the last fired command and whether a gesture is still held.
func (t *Tray) LastCommand() (gesture.Command, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.held
}

func toggleTitle(enabled bool) string {
	if enabled {
		return titleEnabled
	}
	return titleDisabled
}

func lastTitle(cmd gesture.Command) string {
	if cmd == "" {
		return "Last: none"
	}
	return "Last: " + cmd.String()
}

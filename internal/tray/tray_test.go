package tray

import (
	"errors"
	"testing"

	"github.com/ayusman/posecontrol/internal/gesture"
)

func TestTray_Toggle(t *testing.T) {
	t.Run("callback receives the new state", func(t *testing.T) {
		tr := New(true)
		var got []bool
		tr.OnToggle(func(enabled bool) error {
			got = append(got, enabled)
			return nil
		})

		tr.handleToggle()
		tr.handleToggle()

		if len(got) != 2 || got[0] != false || got[1] != true {
			t.Errorf("toggle callbacks = %v, want [false true]", got)
		}
		if !tr.IsEnabled() {
			t.Error("expected enabled after two toggles")
		}
	})

	t.Run("failed callback keeps state", func(t *testing.T) {
		tr := New(true)
		tr.OnToggle(func(bool) error { return errors.New("store locked") })

		tr.handleToggle()

		if !tr.IsEnabled() {
			t.Error("state changed although the callback failed")
		}
	})
}

func TestTray_HandleEvent(t *testing.T) {
	tr := New(true)

	if cmd, held := tr.LastCommand(); cmd != "" || held {
		t.Fatalf("LastCommand() = (%q, %v), want empty", cmd, held)
	}

	tr.HandleEvent(gesture.Event{Type: gesture.EventFired, Command: gesture.MoveUp})
	if cmd, held := tr.LastCommand(); cmd != gesture.MoveUp || !held {
		t.Errorf("after fire = (%q, %v), want (moveUp, true)", cmd, held)
	}

	tr.HandleEvent(gesture.Event{Type: gesture.EventReleased, Command: gesture.MoveUp, Reason: gesture.ReasonCooldown})
	if cmd, held := tr.LastCommand(); cmd != gesture.MoveUp || held {
		t.Errorf("after release = (%q, %v), want (moveUp, false)", cmd, held)
	}
}

func TestTray_Callbacks(t *testing.T) {
	tr := New(false)

	released, opened := 0, 0
	tr.OnRelease(func() { released++ })
	tr.OnDashboard(func() { opened++ })

	tr.handleRelease()
	tr.handleDashboard()
	tr.handleDashboard()

	if released != 1 || opened != 2 {
		t.Errorf("released=%d opened=%d, want 1 and 2", released, opened)
	}
}

func TestTitles(t *testing.T) {
	if toggleTitle(true) != titleEnabled || toggleTitle(false) != titleDisabled {
		t.Error("toggle titles mismatch")
	}
	if lastTitle("") != "Last: none" || lastTitle(gesture.MoveLeft) != "Last: moveLeft" {
		t.Error("last titles mismatch")
	}
}

package gesture

import (
	"sync/atomic"

	"github.com/ayusman/posecontrol/internal/pose"
	"github.com/ayusman/posecontrol/internal/zone"
)

// ConfidenceThreshold is the score a keypoint must strictly exceed to count.
const ConfidenceThreshold = 0.7

// Classifier maps a single pose to at most one command using a zone layout.
// It holds no per-frame state; the layout can be swapped between frames.
type Classifier struct {
	layout atomic.Pointer[zone.Layout]
}

// NewClassifier creates a Classifier over layout.
func NewClassifier(layout zone.Layout) *Classifier {
	c := &Classifier{}
	c.SetLayout(layout)
	return c
}

// Layout returns the layout currently in use.
func (c *Classifier) Layout() zone.Layout {
	return *c.layout.Load()
}

// SetLayout swaps in a new layout for subsequent frames.
func (c *Classifier) SetLayout(l zone.Layout) {
	c.layout.Store(&l)
}

// Classify returns the command p is performing. Rules are checked in priority
// order and the first match wins:
//
//  1. right shoulder left of the right-shoulder box edge -> MoveRight
//  2. left shoulder right of the left-shoulder box edge -> MoveLeft
//  3. either shoulder inside the shoulders box -> MoveDown
//  4. either wrist inside the hands box -> MoveUp
//
// Rules 1 and 2 are strict on the inner edge of the side box. Box edges lying on
// the canvas border are open, so a keypoint past the border still counts.
// The view is mirrored: the body's right shoulder shows up on screen-left.
func (c *Classifier) Classify(p pose.Pose) (Command, bool) {
	l := c.layout.Load()

	rs, rsOK := confident(p, pose.RightShoulder)
	ls, lsOK := confident(p, pose.LeftShoulder)

	if rsOK && inRightBox(rs, l.Zone(zone.RoleRightShoulder)) {
		return MoveRight, true
	}
	if lsOK && inLeftBox(ls, l.Zone(zone.RoleLeftShoulder)) {
		return MoveLeft, true
	}

	bottom := l.Zone(zone.RoleShoulders)
	if (rsOK && within(rs, bottom)) || (lsOK && within(ls, bottom)) {
		return MoveDown, true
	}

	lw, lwOK := confident(p, pose.LeftWrist)
	rw, rwOK := confident(p, pose.RightWrist)
	top := l.Zone(zone.RoleHands)
	if (lwOK && within(lw, top)) || (rwOK && within(rw, top)) {
		return MoveUp, true
	}

	return "", false
}

// confident returns the keypoint for part if present and above the threshold.
func confident(p pose.Pose, part pose.Part) (pose.Keypoint, bool) {
	k, ok := p.Keypoint(part)
	if !ok || k.Score <= ConfidenceThreshold {
		return pose.Keypoint{}, false
	}
	return k, true
}

func within(k pose.Keypoint, z zone.Zone) bool {
	return z.Contains(k.Position.X, k.Position.Y)
}

// inRightBox reports whether k lies in the screen-left side box.
func inRightBox(k pose.Keypoint, z zone.Zone) bool {
	x := k.Position.X
	if x >= z.XUpper {
		return false
	}
	if z.XLower > 0 && x < z.XLower {
		return false
	}
	return withinRows(k, z)
}

// inLeftBox reports whether k lies in the screen-right side box.
func inLeftBox(k pose.Keypoint, z zone.Zone) bool {
	x := k.Position.X
	if x <= z.XLower {
		return false
	}
	if z.XUpper < zone.CanvasWidth && x > z.XUpper {
		return false
	}
	return withinRows(k, z)
}

func withinRows(k pose.Keypoint, z zone.Zone) bool {
	y := k.Position.Y
	if z.YLower > 0 && y < z.YLower {
		return false
	}
	if z.YUpper < zone.CanvasHeight && y > z.YUpper {
		return false
	}
	return true
}

// Package zone defines the screen-space trigger rectangles overlaid on the camera feed.
package zone

import (
	"errors"
	"fmt"
)

// ErrInvalidZone is returned for zones with missing roles or inverted bounds.
var ErrInvalidZone = errors.New("invalid zone")

// Role names what a zone triggers.
type Role string

const (
	// RoleRightShoulder is the left-side box; the right shoulder entering it turns right.
	RoleRightShoulder Role = "right-shoulder"
	// RoleLeftShoulder is the right-side box; the left shoulder entering it turns left.
	RoleLeftShoulder Role = "left-shoulder"
	// RoleShoulders is the bottom box; either shoulder entering it ducks.
	RoleShoulders Role = "shoulders"
	// RoleHands is the top box; either wrist entering it jumps.
	RoleHands Role = "hands"
)

// Roles lists every role in drawing order.
var Roles = []Role{RoleRightShoulder, RoleLeftShoulder, RoleShoulders, RoleHands}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Canvas dimensions the default layout is drawn for.
const (
	CanvasWidth  = 640
	CanvasHeight = 480
)

// Zone is an axis-aligned rectangle in camera pixel coordinates.
type Zone struct {
	Role   Role    `json:"role"`
	XLower float64 `json:"x_lower"`
	XUpper float64 `json:"x_upper"`
	YLower float64 `json:"y_lower"`
	YUpper float64 `json:"y_upper"`
}

// Contains reports whether (x, y) lies inside z. Both ends of each range are inclusive.
func (z Zone) Contains(x, y float64) bool {
	return x >= z.XLower && x <= z.XUpper && y >= z.YLower && y <= z.YUpper
}

// Width returns the horizontal extent.
func (z Zone) Width() float64 { return z.XUpper - z.XLower }

// Height returns the vertical extent.
func (z Zone) Height() float64 { return z.YUpper - z.YLower }

// Validate checks the role and that bounds are ordered and non-negative.
func (z Zone) Validate() error {
	if !z.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidZone, z.Role)
	}
	if z.XLower < 0 || z.YLower < 0 {
		return fmt.Errorf("%w: %s has negative lower bound", ErrInvalidZone, z.Role)
	}
	if z.XUpper < z.XLower || z.YUpper < z.YLower {
		return fmt.Errorf("%w: %s has inverted bounds", ErrInvalidZone, z.Role)
	}
	return nil
}

// Layout holds exactly one zone per role. Layouts are values; replace, don't mutate.
type Layout struct {
	zones map[Role]Zone
}

// NewLayout builds a layout from zones, validating each and requiring every role once.
func NewLayout(zones ...Zone) (Layout, error) {
	l := Layout{zones: make(map[Role]Zone, len(zones))}
	for _, z := range zones {
		if err := z.Validate(); err != nil {
			return Layout{}, err
		}
		if _, dup := l.zones[z.Role]; dup {
			return Layout{}, fmt.Errorf("%w: duplicate role %q", ErrInvalidZone, z.Role)
		}
		l.zones[z.Role] = z
	}
	for _, r := range Roles {
		if _, ok := l.zones[r]; !ok {
			return Layout{}, fmt.Errorf("%w: missing role %q", ErrInvalidZone, r)
		}
	}
	return l, nil
}

// DefaultLayout returns the four boxes of the 640x480 overlay.
func DefaultLayout() Layout {
	l, err := NewLayout(DefaultZones()...)
	if err != nil {
		panic(err)
	}
	return l
}

// DefaultZones returns the default zone table.
func DefaultZones() []Zone {
	return []Zone{
		{Role: RoleRightShoulder, XLower: 0, XUpper: 150, YLower: 0, YUpper: 480},
		{Role: RoleLeftShoulder, XLower: 490, XUpper: 640, YLower: 0, YUpper: 480},
		{Role: RoleShoulders, XLower: 150, XUpper: 490, YLower: 380, YUpper: 480},
		{Role: RoleHands, XLower: 150, XUpper: 490, YLower: 0, YUpper: 100},
	}
}

// Zone returns the zone for role. The zero Zone is returned for unknown roles.
func (l Layout) Zone(role Role) Zone {
	return l.zones[role]
}

// Zones returns the zones in drawing order.
func (l Layout) Zones() []Zone {
	out := make([]Zone, 0, len(Roles))
	for _, r := range Roles {
		if z, ok := l.zones[r]; ok {
			out = append(out, z)
		}
	}
	return out
}

// Replace returns a new layout with z substituted for the zone of the same role.
func (l Layout) Replace(z Zone) (Layout, error) {
	zones := l.Zones()
	for i := range zones {
		if zones[i].Role == z.Role {
			zones[i] = z
		}
	}
	return NewLayout(zones...)
}

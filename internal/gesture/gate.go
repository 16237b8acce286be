package gesture

import (
	"fmt"
	"sync"
	"time"
)

// ReleasePolicy decides how an active gesture is released.
type ReleasePolicy string

const (
	// ReleaseCooldown releases the gate a fixed duration after the gesture fired.
	ReleaseCooldown ReleasePolicy = "cooldown"
	// ReleaseVacate releases the gate once the pose stops performing the held command.
	ReleaseVacate ReleasePolicy = "vacate"
	// ReleaseManual never releases on its own; only an explicit Release clears it.
	ReleaseManual ReleasePolicy = "manual"
)

// DefaultCooldown is the hold time used by ReleaseCooldown when none is configured.
const DefaultCooldown = time.Second

// ParseReleasePolicy validates a policy name.
func ParseReleasePolicy(s string) (ReleasePolicy, error) {
	switch p := ReleasePolicy(s); p {
	case ReleaseCooldown, ReleaseVacate, ReleaseManual:
		return p, nil
	}
	return "", fmt.Errorf("unknown release policy %q", s)
}

// Gate is the single-flight guard: at most one gesture is active at a time.
// It is safe for concurrent use; the frame loop acquires it while HTTP and
// tray handlers may release it.
type Gate struct {
	mu       sync.Mutex
	policy   ReleasePolicy
	cooldown time.Duration
	active   bool
	held     Command
	since    time.Time
}

// NewGate creates an inactive gate.
func NewGate(policy ReleasePolicy, cooldown time.Duration) *Gate {
	if policy == "" {
		policy = ReleaseCooldown
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{policy: policy, cooldown: cooldown}
}

// Policy returns the release policy.
func (g *Gate) Policy() ReleasePolicy { return g.policy }

// Cooldown returns the hold duration used by ReleaseCooldown.
func (g *Gate) Cooldown() time.Duration { return g.cooldown }

// Active reports whether a gesture is currently claimed.
func (g *Gate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// Held returns the claimed command and when it was claimed.
func (g *Gate) Held() (Command, time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held, g.since, g.active
}

// Acquire claims the gate for cmd. It returns false if a gesture is already active.
func (g *Gate) Acquire(cmd Command, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return false
	}
	g.active = true
	g.held = cmd
	g.since = now
	return true
}

// Release clears the gate and returns the command that was held.
func (g *Gate) Release() (Command, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.releaseLocked()
}

// Expire releases the gate if the cooldown policy's hold time has elapsed at now.
func (g *Gate) Expire(now time.Time) (Command, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active || g.policy != ReleaseCooldown {
		return "", false
	}
	if now.Sub(g.since) < g.cooldown {
		return "", false
	}
	return g.releaseLocked()
}

func (g *Gate) releaseLocked() (Command, bool) {
	if !g.active {
		return "", false
	}
	cmd := g.held
	g.active = false
	g.held = ""
	g.since = time.Time{}
	return cmd, true
}

package gesture

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/posecontrol/internal/pose"
	"github.com/ayusman/posecontrol/pkg/logger"
	"github.com/ayusman/posecontrol/pkg/metrics"
)

// Dispatcher delivers a fired command to the game. Implementations must not block.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command)
}

// EventType distinguishes gesture lifecycle events.
type EventType string

const (
	EventFired    EventType = "fired"
	EventReleased EventType = "released"
)

// Release reasons reported on EventReleased.
const (
	ReasonCooldown = "cooldown"
	ReasonVacated  = "vacated"
	ReasonManual   = "manual"
)

// Event is published to subscribers when a gesture fires or is released.
type Event struct {
	ID      string    `json:"id"`
	Type    EventType `json:"type"`
	Command Command   `json:"command"`
	Reason  string    `json:"reason,omitempty"`
	Time    time.Time `json:"time"`
}

// Listener receives engine events on the frame goroutine and must return quickly.
type Listener func(Event)

// EngineConfig holds the collaborators of an Engine.
type EngineConfig struct {
	Classifier *Classifier
	Gate       *Gate
	Dispatcher Dispatcher
	Logger     logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Engine runs one classify-gate-dispatch cycle per frame.
type Engine struct {
	classifier *Classifier
	gate       *Gate
	dispatcher Dispatcher
	log        logger.Logger
	now        func() time.Time

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

// NewEngine creates an Engine. A nil Gate gets the cooldown policy with DefaultCooldown.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		classifier: cfg.Classifier,
		gate:       cfg.Gate,
		dispatcher: cfg.Dispatcher,
		log:        cfg.Logger,
		now:        cfg.Now,
		listeners:  make(map[int]Listener),
	}
	if e.gate == nil {
		e.gate = NewGate(ReleaseCooldown, DefaultCooldown)
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Classifier returns the engine's classifier.
func (e *Engine) Classifier() *Classifier { return e.classifier }

// Gate returns the engine's activation gate.
func (e *Engine) Gate() *Gate { return e.gate }

// Subscribe registers l and returns a function that removes it.
func (e *Engine) Subscribe(l Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = l
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// Process handles one frame of detected poses and returns the command fired, if any.
//
// Only poses[0] is consulted. With no poses the frame is skipped and the gate is
// left untouched. While a gesture is active no new gesture is evaluated; under
// ReleaseVacate the held command is re-checked only to decide on release.
func (e *Engine) Process(ctx context.Context, poses []pose.Pose) (Command, bool) {
	metrics.RecordFrameProcessed()
	if len(poses) == 0 {
		metrics.RecordFrameWithoutPose()
		return "", false
	}
	primary := poses[0]
	now := e.now()

	if cmd, ok := e.gate.Expire(now); ok {
		e.released(ctx, cmd, ReasonCooldown, now)
	}

	if e.gate.Active() {
		metrics.RecordFrameGated()
		if e.gate.Policy() == ReleaseVacate {
			held, _, _ := e.gate.Held()
			if cmd, ok := e.classifier.Classify(primary); !ok || cmd != held {
				if cmd, ok := e.gate.Release(); ok {
					e.released(ctx, cmd, ReasonVacated, now)
				}
			}
		}
		return "", false
	}

	cmd, ok := e.classifier.Classify(primary)
	if !ok {
		return "", false
	}
	if !e.gate.Acquire(cmd, now) {
		metrics.RecordFrameGated()
		return "", false
	}

	metrics.RecordGestureFired(cmd.String())
	e.log.Info(ctx, "gesture fired", logger.String("command", cmd.String()))
	if e.dispatcher != nil {
		e.dispatcher.Dispatch(ctx, cmd)
	}
	e.publish(Event{ID: uuid.NewString(), Type: EventFired, Command: cmd, Time: now})
	return cmd, true
}

// Release clears the gate on external request. It reports whether a gesture was held.
func (e *Engine) Release(ctx context.Context) bool {
	cmd, ok := e.gate.Release()
	if ok {
		e.released(ctx, cmd, ReasonManual, e.now())
	}
	return ok
}

// State returns the held command, expiring a finished cooldown first.
func (e *Engine) State(ctx context.Context) (Command, bool) {
	now := e.now()
	if cmd, ok := e.gate.Expire(now); ok {
		e.released(ctx, cmd, ReasonCooldown, now)
	}
	cmd, _, active := e.gate.Held()
	return cmd, active
}

func (e *Engine) released(ctx context.Context, cmd Command, reason string, now time.Time) {
	metrics.RecordGateRelease(reason)
	e.log.Debug(ctx, "gesture released", logger.String("command", cmd.String()), logger.String("reason", reason))
	e.publish(Event{ID: uuid.NewString(), Type: EventReleased, Command: cmd, Reason: reason, Time: now})
}

func (e *Engine) publish(ev Event) {
	e.mu.RLock()
	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.mu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}

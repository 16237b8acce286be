// Package metrics exposes Prometheus metrics for the gesture pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the pipeline metrics on a single registry.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	framesProcessed  prometheus.Counter
	framesNoPose     prometheus.Counter
	framesGated      prometheus.Counter
	gesturesFired    *prometheus.CounterVec
	gateReleases     *prometheus.CounterVec
	dispatchFailures *prometheus.CounterVec
	dispatchLatency  prometheus.Histogram
	frameLatency     prometheus.Histogram
	detectorErrors   prometheus.Counter
	keyPresses       *prometheus.CounterVec
	wsClients        prometheus.Gauge
}

// NewManager builds a Manager and registers all collectors on its registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "posecontrol",
		buckets:   []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.init()
	return m
}

func (m *Manager) init() {
	auto := promauto.With(m.registry)

	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "engine",
		Name: "frames_processed_total",
		Help: "Frames handed to the gesture engine",
	})
	m.framesNoPose = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "engine",
		Name: "frames_without_pose_total",
		Help: "Frames skipped because no pose was detected",
	})
	m.framesGated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "engine",
		Name: "frames_gated_total",
		Help: "Frames skipped because a gesture was already active",
	})
	m.gesturesFired = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "engine",
		Name: "gestures_fired_total",
		Help: "Gestures fired by command",
	}, []string{"command"})
	m.gateReleases = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "engine",
		Name: "gate_releases_total",
		Help: "Activation gate releases by reason",
	}, []string{"reason"})
	m.frameLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "pipeline",
		Name:    "frame_latency_milliseconds",
		Help:    "Time spent on one capture/detect/classify cycle",
		Buckets: m.buckets,
	})
	m.detectorErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "pipeline",
		Name: "detector_errors_total",
		Help: "Pose detector failures",
	})
	m.dispatchFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "dispatch",
		Name: "failures_total",
		Help: "Command notifications that failed at the transport",
	}, []string{"command"})
	m.dispatchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "dispatch",
		Name:    "latency_milliseconds",
		Help:    "Round trip of command notifications",
		Buckets: m.buckets,
	})
	m.keyPresses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "gamecontrol",
		Name: "key_presses_total",
		Help: "Key presses issued by the game-control receiver",
	}, []string{"command", "result"})
	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "server",
		Name: "event_clients",
		Help: "Connected websocket event subscribers",
	})
}

// Registry returns the registry backing this manager.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var (
	globalMu sync.RWMutex
	global   = NewManager()
)

// Global returns the process-wide manager.
func Global() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// SetGlobal replaces the process-wide manager; tests use it to isolate registries.
func SetGlobal(m *Manager) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = m
}

// Handler serves the global registry.
func Handler() http.Handler { return Global().Handler() }

func RecordFrameProcessed() {
	Global().framesProcessed.Inc()
}

func RecordFrameWithoutPose() {
	Global().framesNoPose.Inc()
}

func RecordFrameGated() {
	Global().framesGated.Inc()
}

func RecordDetectorError() {
	Global().detectorErrors.Inc()
}

func RecordFrameLatency(ms float64) {
	Global().frameLatency.Observe(ms)
}

func RecordDispatchLatency(ms float64) {
	Global().dispatchLatency.Observe(ms)
}

func RecordGestureFired(command string) {
	Global().gesturesFired.WithLabelValues(command).Inc()
}

func RecordGateRelease(reason string) {
	Global().gateReleases.WithLabelValues(reason).Inc()
}

func RecordDispatchFailure(command string) {
	Global().dispatchFailures.WithLabelValues(command).Inc()
}

func RecordKeyPress(command, result string) {
	Global().keyPresses.WithLabelValues(command, result).Inc()
}

func SetEventClients(n int) { Global().wsClients.Set(float64(n)) }

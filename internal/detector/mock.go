package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/posecontrol/internal/pose"
)

// MockDetector is a test implementation of the Detector interface.
// It returns queued frames in order, then repeats the configured poses.
type MockDetector struct {
	mu     sync.Mutex
	poses  []pose.Pose
	queue  [][]pose.Pose
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPoses sets the poses returned by Detect once the queue is drained.
func (m *MockDetector) SetPoses(poses []pose.Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poses = poses
}

// Enqueue appends per-frame results returned before the steady poses.
func (m *MockDetector) Enqueue(frames ...[]pose.Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued frame, the steady poses, or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]pose.Pose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.poses, nil
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

package render

import "sync"

// Scheduler runs a frame callback on the host's next tick. A host that
// paints on its own goroutine may run the callback there.
type Scheduler interface {
	RequestFrame(frame func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(frame func())

func (f SchedulerFunc) RequestFrame(frame func()) { f(frame) }

// ManualScheduler queues frame requests until Run is called. It drives the
// pipeline in tests and in the headless renderer.
type ManualScheduler struct {
	mu       sync.Mutex
	pending  []func()
	requests int
}

func (m *ManualScheduler) RequestFrame(frame func()) {
	m.mu.Lock()
	m.pending = append(m.pending, frame)
	m.requests++
	m.mu.Unlock()
}

// Pending returns the number of queued frames.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Requests returns the total number of frame requests received.
func (m *ManualScheduler) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// Run executes the queued frames and returns how many ran.
func (m *ManualScheduler) Run() int {
	m.mu.Lock()
	frames := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, f := range frames {
		f()
	}
	return len(frames)
}

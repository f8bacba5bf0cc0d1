package app

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

// HotReloader polls a file, normally the running binary, and calls back
// when its modification time moves past the baseline. It also offers a
// periodic tick for housekeeping such as saving preferences.
type HotReloader struct {
	path     string
	interval time.Duration

	mu       sync.Mutex
	baseline time.Time
	stopCh   chan struct{}
	onChange func()
	onTick   func()
}

// NewHotReloader watches the current executable. It returns nil if the
// executable cannot be located.
func NewHotReloader(interval time.Duration) *HotReloader {
	execPath, err := os.Executable()
	if err != nil {
		return nil
	}
	if real, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = real
	}
	return NewFileWatcher(execPath, interval)
}

// NewFileWatcher watches path. It returns nil if path cannot be stat'ed.
func NewFileWatcher(path string, interval time.Duration) *HotReloader {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	return &HotReloader{
		path:     path,
		interval: interval,
		baseline: info.ModTime(),
	}
}

// OnNewBinary sets the change callback. It runs on the watcher goroutine.
func (h *HotReloader) OnNewBinary(callback func()) {
	h.mu.Lock()
	h.onChange = callback
	h.mu.Unlock()
}

// OnTick sets a callback run on every poll.
func (h *HotReloader) OnTick(callback func()) {
	h.mu.Lock()
	h.onTick = callback
	h.mu.Unlock()
}

// Start begins polling. A change is reported once; call ResetBaseline and
// Start again to keep watching.
func (h *HotReloader) Start() {
	h.mu.Lock()
	h.stopCh = make(chan struct{})
	stop := h.stopCh
	h.mu.Unlock()
	go h.watchLoop(stop)
}

// Stop ends polling.
func (h *HotReloader) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopCh != nil {
		close(h.stopCh)
		h.stopCh = nil
	}
}

func (h *HotReloader) watchLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.mu.Lock()
			tick, change := h.onTick, h.onChange
			h.mu.Unlock()

			if tick != nil {
				tick()
			}
			if h.Changed() {
				log.WithField("path", h.path).Info("Hot reload: file changed")
				if change != nil {
					change()
				}
				return
			}
		}
	}
}

// Changed reports whether the file was modified after the baseline.
func (h *HotReloader) Changed() bool {
	info, err := os.Stat(h.path)
	if err != nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return info.ModTime().After(h.baseline)
}

// ExecPath returns the watched path.
func (h *HotReloader) ExecPath() string { return h.path }

// StartupTime returns the baseline modification time.
func (h *HotReloader) StartupTime() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.baseline
}

// ResetBaseline adopts the file's current modification time, so a declined
// restart is not reported again.
func (h *HotReloader) ResetBaseline() {
	if info, err := os.Stat(h.path); err == nil {
		h.mu.Lock()
		h.baseline = info.ModTime()
		h.mu.Unlock()
	}
}

// Restart replaces the process with the watched binary, keeping arguments
// and environment. It does not return on success.
func (h *HotReloader) Restart() error {
	return syscall.Exec(h.path, os.Args, os.Environ())
}

// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

const (
	appDir    = "plm-whiteboard"
	prefsFile = "preferences.json"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu      sync.RWMutex
	values  map[string]interface{}
	path    string
	changed bool
}

// DefaultPath returns ~/.config/plm-whiteboard/preferences.json.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, prefsFile)
}

// Load reads preferences from DefaultPath.
func Load() *Prefs {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads preferences from path. A missing or unreadable file yields
// empty preferences that will be written to path on Save.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, &p.values); err != nil {
		log.WithError(err).WithField("path", path).Warn("Prefs: ignoring malformed preferences")
		p.values = make(map[string]interface{})
	}
	return p
}

// Path returns the file the preferences are saved to.
func (p *Prefs) Path() string { return p.path }

// Changed reports whether a value was set since the last Save.
func (p *Prefs) Changed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.changed
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.Lock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.changed = false
	p.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

func (p *Prefs) set(key string, val interface{}) {
	p.mu.Lock()
	if old, ok := p.values[key]; !ok || old != val {
		p.values[key] = val
		p.changed = true
	}
	p.mu.Unlock()
}

// Has reports whether key is set.
func (p *Prefs) Has(key string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.values[key]
	return ok
}

// Float returns a float64 preference, or fallback if not set.
func (p *Prefs) Float(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) { p.set(key, val) }

// String returns a string preference, or fallback if not set.
func (p *Prefs) String(key, fallback string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) { p.set(key, val) }

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) { p.set(key, val) }

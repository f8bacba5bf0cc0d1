// Package symbols provides the shape symbol catalog: a registry of named
// symbols the shape renderer draws for variants that are not built in.
package symbols

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"plm-whiteboard/internal/render"
)

var (
	ErrEmptyID     = errors.New("symbol id is empty")
	ErrNoRenderer  = errors.New("symbol has no render function")
	ErrDuplicateID = errors.New("symbol already registered")
)

// Catalog is a registry of symbols keyed by id. It is built at startup and
// handed to the render pipeline; it has no package-level state.
type Catalog struct {
	mu      sync.RWMutex
	symbols map[string]render.Symbol
	order   []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{symbols: make(map[string]render.Symbol)}
}

// Register adds symbols. It fails on the first invalid or duplicate id and
// leaves earlier symbols registered.
func (c *Catalog) Register(syms ...render.Symbol) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range syms {
		if s.ID == "" {
			return ErrEmptyID
		}
		if s.Render == nil {
			return fmt.Errorf("%s: %w", s.ID, ErrNoRenderer)
		}
		if _, ok := c.symbols[s.ID]; ok {
			return fmt.Errorf("%s: %w", s.ID, ErrDuplicateID)
		}
		c.symbols[s.ID] = s
		c.order = append(c.order, s.ID)
	}
	return nil
}

// Symbol implements render.SymbolLookup.
func (c *Catalog) Symbol(id string) (render.Symbol, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.symbols[id]
	return s, ok
}

// IDs returns the registered ids in registration order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Categories returns the distinct categories in registration order.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for _, id := range c.order {
		cat := c.symbols[id].Category
		if !slices.Contains(out, cat) {
			out = append(out, cat)
		}
	}
	return out
}

// InCategory returns the symbols of one category in registration order.
func (c *Catalog) InCategory(category string) []render.Symbol {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []render.Symbol
	for _, id := range c.order {
		if s := c.symbols[id]; s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of registered symbols.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.symbols)
}

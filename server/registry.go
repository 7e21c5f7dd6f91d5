package server

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateTool is returned when registering a tool whose name is
// already taken.
var ErrDuplicateTool = errors.New("tool already registered")

// Registry is the authoritative set of tools exposed by a server
// instance. It is populated during bootstrap and never mutated while
// sessions are being served; List preserves registration order because
// clients may display it directly.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]*Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. It fails with ErrDuplicateTool if a tool with
// the same name is already present.
func (r *Registry) Register(t *Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, t.name)
	}
	r.tools[t.name] = t
	r.order = append(r.order, t.name)
	return nil
}

// List returns all registered tools in registration order.
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

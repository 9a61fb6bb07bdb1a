package checker

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the explicit list of checkers known to the analyzer.
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	disabled map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		checkers: make(map[string]Checker),
		disabled: make(map[string]bool),
	}
}

// Register adds c. Names must be unique.
func (r *Registry) Register(c Checker) error {
	if c == nil || c.Name() == "" {
		return fmt.Errorf("checker: cannot register unnamed checker")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.checkers[c.Name()]; exists {
		return fmt.Errorf("checker: %q already registered", c.Name())
	}
	r.checkers[c.Name()] = c
	return nil
}

// SetEnabled toggles a registered checker. Unknown names are ignored.
func (r *Registry) SetEnabled(name string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.checkers[name]; ok {
		r.disabled[name] = !enabled
	}
}

// Get returns the checker registered under name.
func (r *Registry) Get(name string) (Checker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.checkers[name]
	return c, ok
}

// Enabled returns the enabled checkers in ascending priority, ties broken by name.
func (r *Registry) Enabled() []Checker {
	r.mu.RLock()
	out := make([]Checker, 0, len(r.checkers))
	for name, c := range r.checkers {
		if !r.disabled[name] {
			out = append(out, c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority() != out[j].Priority() {
			return out[i].Priority() < out[j].Priority()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Names lists every registered checker name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

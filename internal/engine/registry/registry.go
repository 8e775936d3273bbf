// Package registry maps backend names to their implementations.
package registry

import (
	"sync"

	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry holds the backends registered at startup, in registration order.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]ports.Backend
	order    []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{backends: make(map[string]ports.Backend)}
}

// Register adds b under its name.
func (r *Registry) Register(b ports.Backend) error {
	name := b.Name()
	if !domain.ValidBackendName(name) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidBackendName, "cannot register backend"), "backend", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.backends[name]; ok {
		return zerr.With(zerr.Wrap(domain.ErrBackendExists, "cannot register backend"), "backend", name)
	}
	r.backends[name] = b
	r.order = append(r.order, name)
	return nil
}

// Resolve returns the backend registered under name.
func (r *Registry) Resolve(name string) (ports.Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.backends[name]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrBackendNotFound, "no such backend"), "backend", name)
	}
	return b, nil
}

// Names returns the registered backend names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Descriptors describes every registered backend in registration order.
func (r *Registry) Descriptors() []domain.BackendDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.BackendDescriptor, 0, len(r.order))
	for _, name := range r.order {
		b := r.backends[name]
		if d, ok := b.(ports.Describer); ok {
			out = append(out, d.Describe())
			continue
		}
		out = append(out, domain.BackendDescriptor{Name: name})
	}
	return out
}

package reader

import (
	"fmt"
	"sync"

	"github.com/leandrodaf/drumkit/sdk/contracts"
)

// Registry records which endpoints are held open so a second session fails with ErrBusy
// even on platforms whose MIDI subsystem allows shared access.
type Registry struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{held: make(map[string]struct{})}
}

// Acquire claims port and returns the function that releases it. The release
// function is safe to call more than once.
func (r *Registry) Acquire(port contracts.PortDescriptor) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.held[port.Name]; ok {
		return nil, fmt.Errorf("%w: %s", contracts.ErrBusy, port.Name)
	}
	r.held[port.Name] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.held, port.Name)
			r.mu.Unlock()
		})
	}, nil
}

// Held reports whether port is currently claimed.
func (r *Registry) Held(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.held[name]
	return ok
}

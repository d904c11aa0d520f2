package pipeline

import (
	"errors"
	"sync"
)

// ErrConflict reports a render request for a source/table pair that is
// already in flight. Callers get it immediately; requests never queue.
var ErrConflict = errors.New("render already in progress for this video and subtitle table")

// Registry is the single-flight guard for render jobs. One registry is
// shared by all orchestrator instances that must exclude each other;
// separate registries (as in tests) are fully independent.
type Registry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]struct{})}
}

// Acquire claims the (source, tablePath) key and returns its release
// function, or ErrConflict if the key is already held. The release
// function is idempotent and must run on every exit path so a failed
// job does not block retries.
func (r *Registry) Acquire(source, tablePath string) (func(), error) {
	key := source + "\x00" + tablePath

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, held := r.active[key]; held {
		return nil, ErrConflict
	}
	r.active[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.active, key)
			r.mu.Unlock()
		})
	}
	return release, nil
}

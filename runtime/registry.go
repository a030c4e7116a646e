package runtime

import (
	"draw-lab/contract"
	"maps"
	"sync"
)

// Registry is the directory of connected sessions and the sink delivering
// board events to each of them.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.EventSink // map session -> Sink
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]contract.EventSink)}
}

// Sinks returns a copy of the session directory, safe to range over while
// sessions keep joining and leaving.
func (r *Registry) Sinks() map[string]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.sessions)
}

// Subscribe registers a session's active connection.
// Subscribing again with the same id replaces the previous sink.
func (r *Registry) Subscribe(sessionID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = sink
}

func (r *Registry) Unsubscribe(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

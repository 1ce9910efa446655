package pending

import "sync"

// Registry tracks handles with outstanding listeners. It is safe for
// concurrent use; Poll is expected to be called from a single tick-driving
// goroutine while Register and DiscardAll may come from anywhere.
type Registry[H Handle] struct {
	mux     sync.Mutex
	entries map[H]Listener[H]
}

type delivery[H Handle] struct {
	handle   H
	listener Listener[H]
}

// Register binds listener to handle, replacing any listener registered for
// the same handle before. The handle is expected to be non-terminal.
func (r *Registry[H]) Register(handle H, listener Listener[H]) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.entries[handle] = listener
}

// Poll delivers every handle whose operation is terminal to its listener and
// removes it. Entries are taken out of the registry before any listener runs,
// so each registration is delivered at most once even if Poll were called
// concurrently; listeners may call back into the registry. It returns the
// number of delivered handles.
func (r *Registry[H]) Poll() int {
	ready := r.takeTerminal()
	delivered := 0
	defer func() {
		if delivered < len(ready) { // a listener panicked
			r.restore(ready[delivered+1:])
		}
	}()
	for _, item := range ready {
		if item.listener != nil {
			item.listener(item.handle)
		}
		delivered++
	}
	return delivered
}

// DiscardAll forgets all pending handles without calling their listeners.
// The operations themselves keep running. It returns the number of discarded
// entries.
func (r *Registry[H]) DiscardAll() int {
	r.mux.Lock()
	defer r.mux.Unlock()
	count := len(r.entries)
	clear(r.entries)
	return count
}

// Len returns the number of pending handles.
func (r *Registry[H]) Len() int {
	r.mux.Lock()
	defer r.mux.Unlock()
	return len(r.entries)
}

// Contains reports whether handle awaits delivery.
func (r *Registry[H]) Contains(handle H) bool {
	r.mux.Lock()
	defer r.mux.Unlock()
	_, ok := r.entries[handle]
	return ok
}

func (r *Registry[H]) takeTerminal() []delivery[H] {
	r.mux.Lock()
	defer r.mux.Unlock()
	var ready []delivery[H]
	for handle, listener := range r.entries {
		if !handle.Terminal() {
			continue
		}
		ready = append(ready, delivery[H]{handle: handle, listener: listener})
		delete(r.entries, handle)
	}
	return ready
}

// restore puts back undelivered entries unless they were registered again meanwhile.
func (r *Registry[H]) restore(items []delivery[H]) {
	r.mux.Lock()
	defer r.mux.Unlock()
	for _, item := range items {
		if _, ok := r.entries[item.handle]; ok {
			continue
		}
		r.entries[item.handle] = item.listener
	}
}

// New creates an empty registry.
func New[H Handle]() *Registry[H] {
	return &Registry[H]{entries: make(map[H]Listener[H])}
}

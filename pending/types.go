package pending

// Handle identifies one in-flight operation. Handles are used as map keys and
// must therefore be comparable; pointer types are the usual choice.
type Handle interface {
	comparable
	// Terminal reports whether the operation left the not-started and
	// in-progress states.
	Terminal() bool
}

// Listener receives a handle once its operation reached a terminal state.
type Listener[H Handle] func(handle H)

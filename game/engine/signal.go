package engine

// Once guards a completion signal so it is raised at most once per game
// instance. It is not synchronised; engines hold it under their own mutex.
type Once struct {
	fired bool
}

// Arm marks the signal as raised and reports whether this call was the first
func (o *Once) Arm() bool {
	if o.fired {
		return false
	}
	o.fired = true
	return true
}

// Fired reports whether the signal has been raised
func (o *Once) Fired() bool {
	return o.fired
}

// Reset re-arms the signal for a new game instance
func (o *Once) Reset() {
	o.fired = false
}

// Notify calls fn if it is set. Engines call it after releasing their lock.
func Notify(fn func()) {
	if fn != nil {
		fn()
	}
}

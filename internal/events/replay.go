package events

// replay remembers the most recent notified value so late listeners can be brought up to date.
// Guarded by the owning event's mutex.
type replay[T any] struct {
	enabled bool
	value   T
	set     bool
}

func (r *replay[T]) store(value T) {
	if !r.enabled {
		return
	}
	r.value = value
	r.set = true
}

// latest returns the remembered value, if any
func (r *replay[T]) latest() (T, bool) {
	if !r.enabled || !r.set {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Package observe holds the push-based observable used to expose cart and
// order-list snapshots to the UI: current value + subscribe + unsubscribe.
package observe

import "sync"

// Value is an observable snapshot holder. Set swaps the whole snapshot,
// so readers never see a half-applied update. Writers are expected to be
// a single logical owner; subscribers may call Get from any goroutine.
type Value[T any] struct {
	mu      sync.RWMutex
	current T
	version uint64
	subs    map[int]func(T)
	nextID  int
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[int]func(T)),
	}
}

func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Set replaces the snapshot and notifies every subscriber with the new
// value. Callbacks run on the caller's goroutine, outside the lock.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.version++
	callbacks := v.swapLocked(val)
	v.mu.Unlock()

	for _, fn := range callbacks {
		fn(val)
	}
}

// SetAt applies val only when version is newer than the last accepted
// publication, reporting whether it was applied. Writers that compute a
// snapshot inside their own critical section but publish after leaving it
// stamp each snapshot with a version at computation time, so a stalled
// publication cannot overwrite a newer one.
func (v *Value[T]) SetAt(version uint64, val T) bool {
	v.mu.Lock()
	if version <= v.version {
		v.mu.Unlock()
		return false
	}
	v.version = version
	callbacks := v.swapLocked(val)
	v.mu.Unlock()

	for _, fn := range callbacks {
		fn(val)
	}
	return true
}

// swapLocked stores val and collects the subscribers to notify. Caller
// holds v.mu.
func (v *Value[T]) swapLocked(val T) []func(T) {
	v.current = val
	callbacks := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		callbacks = append(callbacks, fn)
	}
	return callbacks
}

// Subscribe registers fn for future updates and returns a cancel func.
// fn is not called with the current value; use Get for the snapshot.
func (v *Value[T]) Subscribe(fn func(T)) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

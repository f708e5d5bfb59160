package progress

import (
	"errors"
	"reflect"
	"sync"

	"github.com/meigma/squish/core"
)

// registry is an ordered, copy-on-write list of observers.
//
// Mutations build a new slice under mu; broadcasts load the current slice and
// iterate it without holding the lock, so observers may register or unregister
// (themselves included) while being notified.
type registry struct {
	mu        sync.Mutex
	observers []core.Observer
	released  bool
}

// add appends o. Returns false if the registry has been released.
func (r *registry) add(o core.Observer) bool {
	if o == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return false
	}
	next := make([]core.Observer, len(r.observers), len(r.observers)+1)
	copy(next, r.observers)
	r.observers = append(next, o)
	return true
}

// remove drops every registration of o and returns how many were removed.
func (r *registry) remove(o core.Observer) int {
	if o == nil || !isComparable(o) {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]core.Observer, 0, len(r.observers))
	for _, existing := range r.observers {
		if sameObserver(existing, o) {
			continue
		}
		next = append(next, existing)
	}
	removed := len(r.observers) - len(next)
	if removed > 0 {
		r.observers = next
	}
	return removed
}

// snapshot returns the current observer slice. Callers must not modify it.
func (r *registry) snapshot() []core.Observer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.observers
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.observers)
}

// release drops all observers and rejects further registrations.
func (r *registry) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = nil
	r.released = true
}

// broadcast delivers event to every observer in the snapshot, in order.
// All observers are notified even if some fail; failures are joined.
func broadcast(observers []core.Observer, event core.ProgressEvent) error {
	var errs []error
	for i, o := range observers {
		if err := o.OnProgress(event); err != nil {
			errs = append(errs, &core.ObserverError{Kind: event.Kind(), Index: i, Err: err})
		}
	}
	return errors.Join(errs...)
}

// isComparable reports whether o can be compared with ==.
// The dynamic contents are checked too: a struct whose interface field holds
// a func value has a comparable type, but comparing it panics.
func isComparable(o core.Observer) bool {
	return reflect.ValueOf(o).Comparable()
}

func sameObserver(a, b core.Observer) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return isComparable(a) && isComparable(b) && a == b
}

package core

// Waker is the erased wake handle exposed to suspendable computations. A
// future that returns Pending must arrange for a clone of the waker it was
// polled with to be invoked at least once after the event it is waiting on
// fires, or call WakeByRef itself before returning if it wants to be
// re-polled immediately.
//
// Clone, WakeConsuming, WakeByRef and Drop are all safe to call from any
// goroutine, and concurrent calls across independent clones of the same
// logical waker must not corrupt the runner's state. In the original
// reference implementation these four operations are a vtable over an
// opaque pointer; Go's interfaces already erase the concrete type, so the
// vtable collapses into four interface methods.
type Waker interface {
	// Clone returns a new handle with an independent lifetime whose wake
	// signal is equivalent to this one's.
	Clone() Waker

	// WakeConsuming sends this waker's task id for re-polling and releases
	// the handle. Call this when you are done with the handle (you hold
	// the only reference to it).
	WakeConsuming()

	// WakeByRef sends this waker's task id for re-polling without
	// releasing the handle; it remains usable afterwards.
	WakeByRef()

	// Drop releases the handle's resources without signalling a wake.
	Drop()
}

// wakeRecord is the pair (task id, sender endpoint of a re-poll channel)
// that a chanWaker addresses. Its lifetime is not tied to the task's: it
// lives exactly as long as some clone of the waker that wraps it.
type wakeRecord struct {
	id   Id
	poll chan<- Id
}

// chanWaker is the one Waker implementation this runtime needs: it wakes a
// runner by pushing the bound task id onto the runner's wake channel.
type chanWaker struct {
	rec wakeRecord
}

// NewWaker builds a waker bound to (id, pollCh). pollCh is the runner's
// wake channel; the runner itself is the sole consumer.
func NewWaker(id Id, pollCh chan<- Id) Waker {
	return &chanWaker{rec: wakeRecord{id: id, poll: pollCh}}
}

func (w *chanWaker) Clone() Waker {
	return &chanWaker{rec: w.rec}
}

func (w *chanWaker) WakeConsuming() {
	w.rec.poll <- w.rec.id
}

func (w *chanWaker) WakeByRef() {
	w.rec.poll <- w.rec.id
}

func (w *chanWaker) Drop() {
	// Nothing to release explicitly: the garbage collector reclaims the
	// record once the last clone referencing it is unreachable. Drop
	// exists so callers that were written against the erased four-method
	// contract (clone/wake_consuming/wake_by_ref/drop) have somewhere to
	// put the "I'm done, no wake" case.
}

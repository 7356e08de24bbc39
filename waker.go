package taskrun

import "github.com/ndowmon/taskrun/core"

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
// vtable collapses into four interface methods. Defined in taskrun/core
// alongside Id so runner and pool can operate on it without importing this
// package back.
type Waker = core.Waker

// NewWaker binds a waker to a task id and its owning runner's wake channel,
// for code outside the runner package that assembles a runner-like loop.
// It wraps core.NewWaker, which the runner package calls directly.
func NewWaker(id Id, pollCh chan<- Id) Waker {
	return core.NewWaker(id, pollCh)
}

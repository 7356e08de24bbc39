package iofs

import "github.com/ndowmon/taskrun"

type clientState int

const (
	stateArmed clientState = iota
	stateWaiting
	stateDone
)

// requestFuture is the shared three-state machine (submit once, then poll
// the worker's result table until present) behind every operation this
// package exposes. submit and extract close over the specific request
// this future represents. want is the Outcome variant this future expects
// back; a mismatch is a worker protocol bug, not a recoverable error, so
// Poll asserts it rather than silently handing extract a zero value.
type requestFuture[T any] struct {
	state   clientState
	reqID   taskrun.Id
	want    outcomeKind
	submit  func(w taskrun.Waker) taskrun.Id
	extract func(Outcome) T
}

func (f *requestFuture[T]) Poll(w taskrun.Waker) (T, bool) {
	switch f.state {
	case stateArmed:
		f.reqID = f.submit(w)
		f.state = stateWaiting
		var zero T
		return zero, false
	case stateWaiting:
		o, ok := get().tryRecvResult(f.reqID)
		if !ok {
			var zero T
			return zero, false
		}
		if o.Kind != f.want {
			panic("iofs: worker returned outcome variant that does not match the request")
		}
		f.state = stateDone
		return f.extract(o), true
	default:
		panic("iofs: polled a future after completion")
	}
}

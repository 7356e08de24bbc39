package timer

import (
	"time"

	"github.com/ndowmon/taskrun"
)

type futureState int

const (
	stateArmed futureState = iota
	stateWaiting
	stateDone
)

// Future resolves to the duration it was created with (not the measured
// elapsed time) once its deadline has passed. Poll must not be called again
// after it returns ready.
type Future struct {
	timeout time.Duration
	end     time.Time
	state   futureState
}

// Sleep returns a Future that becomes ready no sooner than d from now —
// the deadline is fixed at construction, not at first poll.
func Sleep(d time.Duration) *Future {
	return &Future{timeout: d, end: time.Now().Add(d), state: stateArmed}
}

func (f *Future) Poll(w taskrun.Waker) (time.Duration, bool) {
	switch f.state {
	case stateArmed:
		get().submit(request{waker: w.Clone(), end: f.end})
		f.state = stateWaiting
		return 0, false
	case stateWaiting:
		if !time.Now().Before(f.end) {
			f.state = stateDone
			return f.timeout, true
		}
		return 0, false
	default:
		panic("timer: polled a sleep future after completion")
	}
}

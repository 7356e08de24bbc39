package taskrun

import "github.com/ndowmon/taskrun/core"

// Future is the one suspendable-computation contract the runtime knows
// about: Poll, given a wake handle, returns either pending (ready == false)
// or ready(value). A future that returns pending has either arranged for a
// clone of the waker to be invoked after some external event, or has
// already called WakeByRef on it before returning, requesting immediate
// re-polling. Polling a future again after it has returned ready == true is
// a programming error and the concrete future is free to panic.
//
// Polling is single-threaded per task: the runner that owns a task never
// calls Poll on it from two goroutines concurrently.
type Future[T any] interface {
	Poll(w Waker) (value T, ready bool)
}

// Task is the type-erased form of a suspendable computation: the runner's
// live-task map and the worker pool both operate purely in terms of Task,
// never knowing the concrete output type. Heterogeneous Future[T] values
// flow through one map keyed by Id; the output is boxed as any and
// downcast at Executor.TakeResult time. Defined in taskrun/core so runner
// and pool can operate on it without importing this package back.
type Task = core.Task

// taskShell adapts a typed Future[T] into a Task by boxing its output the
// moment it becomes ready.
type taskShell[T any] struct {
	inner Future[T]
}

// EraseFuture boxes a typed Future[T] into a Task, the erasure boundary
// between user-supplied suspendable computations and the scheduler.
func EraseFuture[T any](f Future[T]) Task {
	return &taskShell[T]{inner: f}
}

func (f *taskShell[T]) Poll(w Waker) (any, bool) {
	v, ready := f.inner.Poll(w)
	if !ready {
		return nil, false
	}
	return v, true
}

// readyFuture is already resolved on its first poll; it never touches the
// waker. Useful for tasks that do no suspending work of their own (spec's
// "submit 1000 immediate-ready tasks" scenario).
type readyFuture[T any] struct {
	value T
	done  bool
}

// Ready returns a Future[T] that resolves to value on its first poll.
func Ready[T any](value T) Future[T] {
	return &readyFuture[T]{value: value}
}

func (f *readyFuture[T]) Poll(_ Waker) (T, bool) {
	if f.done {
		panic("taskrun: polled a ready future after completion")
	}
	f.done = true
	return f.value, true
}

// FuncFuture adapts a plain closure into a Future[T] for composing
// suspendable computations out of ordinary Go code. The closure is called
// repeatedly (once per poll) and must itself return (value, ready) — it is
// the caller's responsibility to arrange re-polling (e.g. by delegating to
// another suspendable primitive and forwarding its waker arrangement).
type FuncFuture[T any] func(w Waker) (T, bool)

func (f FuncFuture[T]) Poll(w Waker) (T, bool) {
	return f(w)
}

package core

// Task is the type-erased form of a suspendable computation: the runner's
// live-task map and the worker pool both operate purely in terms of Task,
// never knowing the concrete output type. Heterogeneous Future[T] values
// flow through one map keyed by Id; the output is boxed as any and
// downcast at Executor.TakeResult time.
//
// The root package's EraseFuture builds values of this type from a typed
// Future[T], and any value with this Poll method is a Task too; Task lives here, rather than alongside Future[T] in the root
// package, so runner and pool can operate on it without importing the
// root package back.
type Task interface {
	Poll(w Waker) (value any, ready bool)
}

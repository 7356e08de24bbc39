package taskrun

import (
	"reflect"
	"sync"

	"github.com/ndowmon/taskrun/pool"
	"github.com/ndowmon/taskrun/tracelog"
)

// Running and Finished are the two phases of an Executor's lifecycle.
// Phase restricts Executor's type parameter to exactly these two marker
// types; Go has no per-instantiation methods (a method on Executor[S]
// applies to every S satisfying Phase), so the phase-specific operations
// — Run, TakeResult, Join — are free functions typed against the specific
// Executor[Running] or Executor[S] they accept. That is this module's
// rendering of the reference implementation's phantom-typed
// Executor<Running>/Executor<Finished> split: the compiler, not a runtime
// flag, rejects Run(finishedExecutor, ...).
type Phase interface {
	Running | Finished
}

// Running marks an Executor that still owns a pool and accepts new tasks.
type Running struct{}

// Finished marks an Executor that has been joined: its pool has stopped
// and drained, and only TakeResult remains callable.
type Finished struct{}

// Executor is the typed submit/take-result/join facade over a pool. S
// pins which phase this particular value is in.
type Executor[S Phase] struct {
	mu    sync.Mutex
	cache map[Id]any
	idGen IdGenerator
	pool  *pool.Pool // nil once Join has drained it (Finished phase).
}

// Start constructs a pool of n workers and returns a running executor. n
// overrides any NumWorkers set via WithNumWorkers; the explicit argument always
// wins, matching the component design's "pool size fixed at construction".
func Start(n int, opts ...Option) *Executor[Running] {
	cfg := buildConfig(opts...)
	tracelog.SetLevel(cfg.TraceLevel)

	return &Executor[Running]{
		cache: make(map[Id]any),
		pool:  pool.New(n, pool.WithMetrics(cfg.MetricsProvider)),
	}
}

// StartFromConfig is Start using cfg.NumWorkers as the pool size, for
// callers that built an ExecutorConfig via LoadConfig.
func StartFromConfig(cfg *ExecutorConfig) *Executor[Running] {
	return Start(cfg.NumWorkers, WithMetricsProvider(cfg.MetricsProvider), WithTraceLevel(cfg.TraceLevel))
}

// Run wraps f in an erasure shell, allocates a task id, and submits it to
// the least-loaded runner. It returns (Id{}, false) without submitting
// anything if the executor's id generator is exhausted.
func Run[T any](e *Executor[Running], f Future[T]) (Id, bool) {
	e.mu.Lock()
	id, ok := e.idGen.Next()
	e.mu.Unlock()
	if !ok {
		return Id{}, false
	}
	e.pool.RunFuture(id, EraseFuture(f))
	return id, true
}

// TakeResult drains whatever the pool can currently yield into the result
// cache, then attempts to remove id from it, downcasting against T.
func TakeResult[T any, S Phase](e *Executor[S], id Id) FutureResult[T] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pool != nil {
		for _, c := range e.pool.CollectResults() {
			e.cache[c.ID] = c.Value
		}
	}
	return takeResultNoUpdate[T](e.cache, id)
}

func takeResultNoUpdate[T any](cache map[Id]any, id Id) FutureResult[T] {
	v, ok := cache[id]
	if !ok {
		return FutureResult[T]{Kind: NonExistent}
	}
	delete(cache, id)

	if typed, ok := v.(T); ok {
		return FutureResult[T]{Kind: Expected, Value: typed}
	}
	// A nil interface output (such as a nil error) boxes to a nil any that
	// carries no type; an interface T accepts it as its zero value.
	if v == nil && reflect.TypeOf((*T)(nil)).Elem().Kind() == reflect.Interface {
		var zero T
		return FutureResult[T]{Kind: Expected, Value: zero}
	}
	return FutureResult[T]{Kind: Other, Other: v}
}

// Join requests stop on the pool, drains all residual results into the
// cache, and returns a Finished-phase executor exposing only TakeResult.
func Join(e *Executor[Running]) *Executor[Finished] {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, c := range e.pool.Join() {
		e.cache[c.ID] = c.Value
	}

	return &Executor[Finished]{cache: e.cache, pool: nil}
}

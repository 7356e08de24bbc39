// Package taskrun is a cooperative task executor: a fixed pool of runner
// goroutines polling caller-supplied Future[T] values to completion, fed
// by a wake protocol instead of blocking I/O.
//
// Constructors
//   - Start(n, opts...): builds an n-runner pool and returns a Running
//     executor. n overrides any NumWorkers set via WithNumWorkers.
//   - StartFromConfig(cfg): Start sized from an ExecutorConfig, typically
//     loaded with LoadConfig.
//
// Lifecycle
// An Executor is typed by its phase, Running or Finished. Run and
// TakeResult accept a Running executor (TakeResult also accepts a
// Finished one, to retrieve results after Join); Join consumes a Running
// executor and returns a Finished one. The compiler rejects Run against
// an already-joined executor — there is no runtime flag to check.
//
// Futures
// A Future[T] is polled with a Waker and returns (value, ready). A
// pending future must arrange for its Waker to be woken — by reference
// or by consuming it — once it can usefully be polled again; the runner
// never re-polls a pending task on its own. taskrun/timer, taskrun/iofs,
// and taskrun/netio provide Future[T] implementations backed by
// background workers for sleeping, blocking file I/O, and non-blocking
// TCP, respectively.
//
// Defaults
// Unless overridden, a newly built ExecutorConfig carries:
//   - NumWorkers: 1
//   - MetricsProvider: metrics.NewNoopProvider()
//   - TraceLevel: logrus.PanicLevel (tracing effectively disabled)
//
// Observability
// WithMetricsProvider reports each runner's live-task count and
// completed-task total; metrics.NewPrometheusProvider backs it with real
// Prometheus instruments. WithTraceLevel raises the package's internal
// logrus logger, shared by the runner, timer, and I/O worker packages,
// to see per-poll diagnostics.
package taskrun

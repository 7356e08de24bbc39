// Package runner implements the task runner described by the executor's
// component design: one goroutine (standing in for the reference
// implementation's dedicated OS thread) owning a set of live tasks, a wake
// channel, a result channel, and a running-count used for least-loaded
// placement by the pool.
package runner

import (
	"sync"
	"sync/atomic"

	"github.com/ndowmon/taskrun/core"
	"github.com/ndowmon/taskrun/metrics"
	"github.com/ndowmon/taskrun/tracelog"
)

// Metrics holds the instruments a runner reports into as it runs, built by
// the pool against whatever Provider the executor was configured with. A nil
// *Metrics disables reporting entirely; every call site checks for nil
// rather than requiring a no-op provider.
type Metrics struct {
	Live      metrics.UpDownCounter
	Completed metrics.Counter
}

// Completion is a resolved task: its id and its boxed output.
type Completion struct {
	ID    core.Id
	Value any
}

// entry is a (id, task) submission awaiting insertion into the live set.
type entry struct {
	id   core.Id
	task core.Task
}

// Runner owns a dedicated goroutine and the live-task map described in the
// data model: mutated only by that goroutine, never touched concurrently
// from outside.
type Runner struct {
	index int

	submissions chan entry
	wakeCh      chan core.Id
	results     chan Completion
	stopCh      chan struct{}
	stopOnce    sync.Once
	done        chan struct{}

	running atomic.Int64

	tasks   map[core.Id]core.Task
	metrics *Metrics
}

// submissionsBuffer and wakeBuffer size the runner's intake channels.
// Advisory only — placement is approximate and a momentarily full channel
// just makes a submitting/waking goroutine block briefly, as with any
// bounded Go channel.
const (
	submissionsBuffer = 256
	wakeBuffer        = 1024
)

// New constructs a runner identified by index (used only for diagnostics
// and test assertions) and starts its goroutine. m may be nil.
func New(index int, m *Metrics) *Runner {
	r := &Runner{
		index:       index,
		submissions: make(chan entry, submissionsBuffer),
		wakeCh:      make(chan core.Id, wakeBuffer),
		results:     make(chan Completion, wakeBuffer),
		stopCh:      make(chan struct{}),
		done:        make(chan struct{}),
		tasks:       make(map[core.Id]core.Task),
		metrics:     m,
	}
	go r.loop()
	return r
}

// Index returns this runner's position in its pool.
func (r *Runner) Index() int { return r.index }

// CurrentTasks returns the approximate number of live tasks this runner
// owns. The count rises in Submit, on the submitting goroutine, and falls
// on the runner's goroutine when a task resolves. Reads may race with
// those writes; that race is
// intentional (placement is advisory — spec's "relaxed ordering is
// acceptable because placement is advisory").
func (r *Runner) CurrentTasks() int64 { return r.running.Load() }

// Submit hands a (id, task) pair to this runner and counts it as live at
// once, so a placement decision made right after sees it. The task is
// inserted into the live set and polled for the first time on the runner's
// own goroutine.
func (r *Runner) Submit(id core.Id, task core.Task) {
	r.running.Add(1)
	if r.metrics != nil {
		r.metrics.Live.Add(1)
	}
	r.submissions <- entry{id: id, task: task}
}

// Results returns the channel this runner's completions are posted on. It
// remains readable after the runner's goroutine exits (its producer side
// is simply never written to again).
func (r *Runner) Results() <-chan Completion { return r.results }

// Stop requests the runner to finish its live tasks and then exit. It does
// not block; call Wait to block until the goroutine has actually exited.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Wait blocks until the runner's goroutine has exited.
func (r *Runner) Wait() { <-r.done }

// loop is the runner's poll loop (component design §4.3):
//
//	repeat until (stop_requested AND live_tasks empty):
//	    drain submission channel: for each (id, future), insert into live_tasks, poll it once
//	    if stop_requested AND live_tasks empty: exit
//	    drain wake channel: for each id, look up task, poll it, emit result if ready
//
// A freshly submitted task is polled immediately as part of insertion
// rather than round-tripping through the wake channel first — this is
// equivalent to treating submission as an implicit first wake, and avoids
// the runner ever sending to a channel only itself reads from within the
// same iteration.
func (r *Runner) loop() {
	defer close(r.done)

	stopping := false
	for {
		r.drainSubmissions()

		if stopping && len(r.tasks) == 0 {
			return
		}

		r.drainWakes()

		if stopping && len(r.tasks) == 0 {
			return
		}

		select {
		case e, ok := <-r.submissions:
			if ok {
				r.insert(e)
			}
		case id, ok := <-r.wakeCh:
			if ok {
				r.pollOne(id)
			}
		case <-r.stopCh:
			stopping = true
		}
	}
}

func (r *Runner) drainSubmissions() {
	for {
		select {
		case e := <-r.submissions:
			r.insert(e)
		default:
			return
		}
	}
}

func (r *Runner) drainWakes() {
	for {
		select {
		case id := <-r.wakeCh:
			r.pollOne(id)
		default:
			return
		}
	}
}

func (r *Runner) insert(e entry) {
	r.tasks[e.id] = e.task
	tracelog.Tracef("runner", "runner %d: inserted task %v", r.index, e.id)
	r.pollOne(e.id)
}

func (r *Runner) pollOne(id core.Id) {
	task, ok := r.tasks[id]
	if !ok {
		// A stray wake for an id this runner no longer owns (e.g. a
		// duplicate wake arriving after the task already resolved).
		// Harmless: the invariant is "a single wake produces at most one
		// poll attempt", not "every wake finds a live task".
		tracelog.Tracef("runner", "runner %d: wake for unknown task %v", r.index, id)
		return
	}

	w := core.NewWaker(id, r.wakeCh)
	value, ready := task.Poll(w)
	if !ready {
		return
	}

	delete(r.tasks, id)
	r.running.Add(-1)
	if r.metrics != nil {
		r.metrics.Live.Add(-1)
		r.metrics.Completed.Add(1)
	}
	tracelog.Tracef("runner", "runner %d: task %v resolved", r.index, id)
	r.results <- Completion{ID: id, Value: value}
}

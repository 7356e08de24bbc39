// Package pool implements the fixed-size worker pool described by the
// executor's component design: a fixed set of runners, least-loaded
// submission, unordered fan-in of completions, and an orderly join.
package pool

import (
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/ndowmon/taskrun/core"
	"github.com/ndowmon/taskrun/metrics"
	"github.com/ndowmon/taskrun/runner"
)

// Pool is a fixed-size vector of runners constructed at startup. There is
// no work stealing and no affinity: RunFuture always places a new task on
// whichever runner currently reports the fewest live tasks.
type Pool struct {
	runners []*runner.Runner
}

// Option configures a Pool at construction time.
type Option func(*poolConfig)

type poolConfig struct {
	metricsProvider metrics.Provider
}

// WithMetrics reports each runner's live-task count and completed-task
// count into the given provider, labeled by runner index.
func WithMetrics(p metrics.Provider) Option {
	return func(c *poolConfig) { c.metricsProvider = p }
}

// New constructs a pool of n runners. An n below 1 is treated as 1.
func New(n int, opts ...Option) *Pool {
	if n < 1 {
		n = 1
	}
	var cfg poolConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	runners := make([]*runner.Runner, n)
	for i := range runners {
		runners[i] = runner.New(i, runnerMetrics(cfg.metricsProvider, i))
	}
	return &Pool{runners: runners}
}

func runnerMetrics(provider metrics.Provider, index int) *runner.Metrics {
	if provider == nil {
		return nil
	}
	attrs := metrics.WithAttributes(map[string]string{"runner": strconv.Itoa(index)})
	return &runner.Metrics{
		Live:      provider.UpDownCounter("runner_live_tasks", attrs),
		Completed: provider.Counter("runner_tasks_completed_total", attrs),
	}
}

// Size returns the number of runners in the pool.
func (p *Pool) Size() int { return len(p.runners) }

// RunFuture selects the runner with the smallest current-task count
// (ties broken by position) and submits (id, task) to it.
func (p *Pool) RunFuture(id core.Id, task core.Task) {
	best := p.runners[0]
	bestLoad := best.CurrentTasks()
	for _, r := range p.runners[1:] {
		if load := r.CurrentTasks(); load < bestLoad {
			best, bestLoad = r, load
		}
	}
	best.Submit(id, task)
}

// LoadSnapshot returns each runner's current live-task count, indexed by
// runner position. Exposed for tests asserting the load-balancing
// property and for metrics wiring.
func (p *Pool) LoadSnapshot() []int64 {
	loads := make([]int64, len(p.runners))
	for i, r := range p.runners {
		loads[i] = r.CurrentTasks()
	}
	return loads
}

// CollectResults drains every completion currently available from every
// runner, in unspecified order, without blocking for more to arrive.
func (p *Pool) CollectResults() []runner.Completion {
	var out []runner.Completion
	for _, r := range p.runners {
	drain:
		for {
			select {
			case c := <-r.Results():
				out = append(out, c)
			default:
				break drain
			}
		}
	}
	return out
}

// Join signals stop on every runner, awaits each runner's goroutine
// exiting (i.e. its live tasks draining to completion), and returns the
// residual results collected afterwards. One goroutine per runner runs
// concurrently via errgroup so Join's wall-clock is the slowest single
// runner's drain, not the sum of all of them.
func (p *Pool) Join() []runner.Completion {
	var g errgroup.Group
	for _, r := range p.runners {
		r := r
		g.Go(func() error {
			r.Stop()
			r.Wait()
			return nil
		})
	}
	_ = g.Wait() // runner goroutines never return an error.

	return p.CollectResults()
}

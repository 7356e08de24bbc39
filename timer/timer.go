// Package timer provides a sleep future backed by one process-wide
// background goroutine: a min-heap of (deadline, waker) pairs, polled in a
// tight spin/yield loop rather than blocked on a computed timeout.
package timer

import (
	"container/heap"
	"runtime"
	"sync"
	"time"

	"github.com/ndowmon/taskrun"
	"github.com/ndowmon/taskrun/tracelog"
)

// request is a (waker, deadline) pair submitted by a pending sleep Future.
type request struct {
	waker taskrun.Waker
	end   time.Time
}

// minHeap orders requests soonest-deadline-first.
type minHeap []request

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].end.Before(h[j].end) }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(request)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// thread is the singleton background worker. Its requests channel has no
// bound large enough to matter in practice; submitters never block on a
// worker that is simply busy spinning on an earlier deadline.
type thread struct {
	requests chan request
}

var (
	instance     *thread
	instanceOnce sync.Once
)

func get() *thread {
	instanceOnce.Do(func() {
		t := &thread{requests: make(chan request, 4096)}
		go t.run()
		instance = t
	})
	return instance
}

func (t *thread) run() {
	pending := &minHeap{}
	heap.Init(pending)

	for {
		drained := t.drain(pending)

		if pending.Len() > 0 && !time.Now().Before((*pending)[0].end) {
			top := heap.Pop(pending).(request)
			tracelog.Tracef("timer", "firing deadline %s", top.end)
			top.waker.WakeConsuming()
			continue
		}

		if !drained {
			runtime.Gosched()
		}
	}
}

// drain moves every request currently queued into pending, reporting
// whether it moved at least one.
func (t *thread) drain(pending *minHeap) bool {
	moved := false
	for {
		select {
		case r := <-t.requests:
			heap.Push(pending, r)
			moved = true
		default:
			return moved
		}
	}
}

func (t *thread) submit(r request) {
	t.requests <- r
}

package taskrun

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// yieldingFuture becomes ready after n polls, re-arming its own waker on
// every pending poll. It models a suspendable computation without pulling
// in a background worker package.
type yieldingFuture struct {
	remaining int
	value     int
}

func (f *yieldingFuture) Poll(w Waker) (int, bool) {
	if f.remaining > 0 {
		f.remaining--
		w.WakeByRef()
		return 0, false
	}
	return f.value, true
}

func TestExecutor_RunAndTakeResult_ImmediateFuture(t *testing.T) {
	e := Start(2)
	defer Join(e)

	id, ok := Run(e, Ready(7))
	require.True(t, ok)

	var got FutureResult[int]
	require.Eventually(t, func() bool {
		got = TakeResult[int](e, id)
		return got.Kind == Expected
	}, time.Second, time.Millisecond)
	require.Equal(t, 7, got.Value)
}

func TestExecutor_RunAndTakeResult_YieldingFuture(t *testing.T) {
	e := Start(2)
	defer Join(e)

	id, ok := Run[int](e, &yieldingFuture{remaining: 20, value: 99})
	require.True(t, ok)

	var got FutureResult[int]
	require.Eventually(t, func() bool {
		got = TakeResult[int](e, id)
		return got.Kind == Expected
	}, time.Second, time.Millisecond)
	require.Equal(t, 99, got.Value)
}

func TestExecutor_TakeResult_WrongTypeThenRightType(t *testing.T) {
	e := Start(1)
	defer Join(e)

	id, ok := Run(e, Ready("hello"))
	require.True(t, ok)

	require.Eventually(t, func() bool {
		r := TakeResult[int](e, id)
		return r.Kind != NonExistent
	}, time.Second, time.Millisecond)

	// The wrong-type take above consumed the cache entry (TakeResult always
	// deletes what it finds), so a second TakeResult against the same id
	// reports NonExistent rather than finding the value again.
	again := TakeResult[string](e, id)
	require.Equal(t, NonExistent, again.Kind)
}

func TestExecutor_TakeResult_BeforeCompletionIsNonExistent(t *testing.T) {
	e := Start(1)
	defer Join(e)

	id, ok := Run[int](e, &yieldingFuture{remaining: 200, value: 1})
	require.True(t, ok)

	r := TakeResult[int](e, id)
	require.Equal(t, NonExistent, r.Kind)
}

func TestExecutor_RunOneThousandImmediateTasks(t *testing.T) {
	e := Start(4)
	defer Join(e)

	const n = 1000
	ids := make([]Id, n)
	for i := 0; i < n; i++ {
		id, ok := Run(e, Ready(i))
		require.True(t, ok)
		ids[i] = id
	}

	var remaining atomic.Int64
	remaining.Store(n)
	results := make(map[Id]int, n)

	require.Eventually(t, func() bool {
		for _, id := range ids {
			if _, seen := results[id]; seen {
				continue
			}
			r := TakeResult[int](e, id)
			if r.Kind == Expected {
				results[id] = r.Value
				remaining.Add(-1)
			}
		}
		return remaining.Load() == 0
	}, 5*time.Second, time.Millisecond)

	for i, id := range ids {
		require.Equal(t, i, results[id])
	}
}

func TestExecutor_Join_DrainsOutstandingWork(t *testing.T) {
	e := Start(3)

	ids := make([]Id, 0, 10)
	for i := 0; i < 10; i++ {
		id, ok := Run[int](e, &yieldingFuture{remaining: 3, value: i})
		require.True(t, ok)
		ids = append(ids, id)
	}

	finished := Join(e)

	for i, id := range ids {
		r := TakeResult[int](finished, id)
		require.Equal(t, Expected, r.Kind)
		require.Equal(t, i, r.Value)
	}
}

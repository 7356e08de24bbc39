package runner_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ndowmon/taskrun"
	"github.com/ndowmon/taskrun/runner"
)

func TestRunner_ImmediateReadyTask(t *testing.T) {
	r := runner.New(0, nil)
	defer func() { r.Stop(); r.Wait() }()

	id, _ := (&taskrun.IdGenerator{}).Next()
	r.Submit(id, taskrun.EraseFuture(taskrun.Ready(42)))

	select {
	case c := <-r.Results():
		require.Equal(t, id, c.ID)
		require.Equal(t, 42, c.Value)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion")
	}
	require.Zero(t, r.CurrentTasks())
}

// onceWaitTask becomes ready on its second poll; it re-arms its waker via
// WakeByRef before returning pending on the first poll, exercising the
// runner's wake-channel path end to end.
type onceWaitTask struct {
	polled bool
}

func (t *onceWaitTask) Poll(w taskrun.Waker) (any, bool) {
	if !t.polled {
		t.polled = true
		w.WakeByRef()
		return nil, false
	}
	return "done", true
}

func TestRunner_PendingTaskIsRePolledAfterWake(t *testing.T) {
	r := runner.New(0, nil)
	defer func() { r.Stop(); r.Wait() }()

	id, _ := (&taskrun.IdGenerator{}).Next()
	r.Submit(id, &onceWaitTask{})

	select {
	case c := <-r.Results():
		require.Equal(t, id, c.ID)
		require.Equal(t, "done", c.Value)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion")
	}
}

func TestRunner_StopDrainsLiveTasksBeforeExiting(t *testing.T) {
	r := runner.New(0, nil)

	id, _ := (&taskrun.IdGenerator{}).Next()
	r.Submit(id, &onceWaitTask{})

	r.Stop()

	select {
	case c := <-r.Results():
		require.Equal(t, "done", c.Value)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion before stop")
	}

	exited := make(chan struct{})
	go func() { r.Wait(); close(exited) }()
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("runner goroutine did not exit after live tasks drained")
	}
}

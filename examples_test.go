package taskrun_test

// Worked examples exercising the executor against the timer and iofs
// background workers together, standing in for the external driver
// spec.md assumes sits outside this module.

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ndowmon/taskrun"
	"github.com/ndowmon/taskrun/iofs"
	"github.com/ndowmon/taskrun/timer"
)

// spellFuture sleeps once per character of word, appending each character
// to its accumulator as the corresponding sleep resolves, then yields the
// fully spelled string.
type spellFuture struct {
	word   string
	next   int
	sleep  taskrun.Future[time.Duration]
	output []byte
}

func (f *spellFuture) Poll(w taskrun.Waker) (string, bool) {
	for {
		if f.next == len(f.word) {
			return string(f.output), true
		}
		if f.sleep == nil {
			f.sleep = timer.Sleep(time.Millisecond)
		}
		if _, ready := f.sleep.Poll(w); !ready {
			return "", false
		}
		f.sleep = nil
		f.output = append(f.output, f.word[f.next])
		f.next++
	}
}

func TestExample_SpellHelloWorldOneCharacterPerSleep(t *testing.T) {
	e := taskrun.Start(2)
	defer taskrun.Join(e)

	id, ok := taskrun.Run[string](e, &spellFuture{word: "Hello, World!"})
	require.True(t, ok)

	var got taskrun.FutureResult[string]
	require.Eventually(t, func() bool {
		got = taskrun.TakeResult[string](e, id)
		return got.Kind == taskrun.Expected
	}, 2*time.Second, time.Millisecond)
	require.Equal(t, "Hello, World!", got.Value)
}

func TestExample_TimerAndFileReadRaceToCompletion(t *testing.T) {
	e := taskrun.Start(2)
	defer taskrun.Join(e)

	dir := t.TempDir()
	path := filepath.Join(dir, "race.txt")
	require.NoError(t, writeFileSync(t, e, path, "payload"))

	timerID, ok := taskrun.Run[time.Duration](e, timer.Sleep(150*time.Millisecond))
	require.True(t, ok)

	fileID, ok := taskrun.Run[iofs.ReadResult](e, openAndReadToEnd(path))
	require.True(t, ok)

	var timerDone, fileDone bool
	require.Eventually(t, func() bool {
		if !timerDone {
			if r := taskrun.TakeResult[time.Duration](e, timerID); r.Kind == taskrun.Expected {
				timerDone = true
			}
		}
		if !fileDone {
			if r := taskrun.TakeResult[iofs.ReadResult](e, fileID); r.Kind == taskrun.Expected {
				require.NoError(t, r.Value.Err)
				require.Equal(t, "payload", string(r.Value.Bytes))
				fileDone = true
			}
		}
		return timerDone && fileDone
	}, 2*time.Second, time.Millisecond)
}

// openAndReadFuture chains Open then ReadToEnd into a single suspendable
// computation, reused by the race test above.
type openAndReadFuture struct {
	path string
	open taskrun.Future[iofs.OpenResult]
	read taskrun.Future[iofs.ReadResult]
}

func openAndReadToEnd(path string) taskrun.Future[iofs.ReadResult] {
	return &openAndReadFuture{path: path}
}

func (f *openAndReadFuture) Poll(w taskrun.Waker) (iofs.ReadResult, bool) {
	if f.read == nil {
		if f.open == nil {
			f.open = iofs.Open(f.path)
		}
		opened, ready := f.open.Poll(w)
		if !ready {
			return iofs.ReadResult{}, false
		}
		if opened.Err != nil {
			return iofs.ReadResult{Err: opened.Err}, true
		}
		f.read = opened.File.ReadToEnd()
	}
	return f.read.Poll(w)
}

// writeFileSync drives Create+WriteAll to completion on e before returning,
// a synchronous helper for tests that need a file to already exist.
func writeFileSync(t *testing.T, e *taskrun.Executor[taskrun.Running], path, contents string) error {
	t.Helper()

	id, ok := taskrun.Run[iofs.OpenResult](e, iofs.Create(path))
	require.True(t, ok)
	var created iofs.OpenResult
	require.Eventually(t, func() bool {
		r := taskrun.TakeResult[iofs.OpenResult](e, id)
		if r.Kind != taskrun.Expected {
			return false
		}
		created = r.Value
		return true
	}, 2*time.Second, time.Millisecond)
	require.NoError(t, created.Err)

	wid, ok := taskrun.Run[error](e, created.File.WriteAll([]byte(contents)))
	require.True(t, ok)
	var werr taskrun.FutureResult[error]
	require.Eventually(t, func() bool {
		werr = taskrun.TakeResult[error](e, wid)
		return werr.Kind == taskrun.Expected
	}, 2*time.Second, time.Millisecond)
	return werr.Value
}

// TestExample_ConcurrentCreateAndWriteToSamePath submits two independent
// Create+WriteAll sequences against the same path at once. The I/O worker
// serializes every request through one goroutine, so each Create truncates
// whatever the other wrote, and the file ends up holding exactly one
// payload in full rather than an interleaved mix of both.
func TestExample_ConcurrentCreateAndWriteToSamePath(t *testing.T) {
	e := taskrun.Start(2)
	defer taskrun.Join(e)

	dir := t.TempDir()
	path := filepath.Join(dir, "shared.txt")

	type outcome struct {
		created iofs.OpenResult
		werr    error
	}
	results := make(chan outcome, 2)

	submitWriter := func(payload string) {
		oid, ok := taskrun.Run[iofs.OpenResult](e, iofs.Create(path))
		require.True(t, ok)
		go func() {
			var created iofs.OpenResult
			require.Eventually(t, func() bool {
				r := taskrun.TakeResult[iofs.OpenResult](e, oid)
				if r.Kind != taskrun.Expected {
					return false
				}
				created = r.Value
				return true
			}, 2*time.Second, time.Millisecond)
			require.NoError(t, created.Err)

			wid, ok := taskrun.Run[error](e, created.File.WriteAll([]byte(payload)))
			require.True(t, ok)
			var werr taskrun.FutureResult[error]
			require.Eventually(t, func() bool {
				werr = taskrun.TakeResult[error](e, wid)
				return werr.Kind == taskrun.Expected
			}, 2*time.Second, time.Millisecond)
			results <- outcome{created: created, werr: werr.Value}
		}()
	}

	submitWriter("first-payload")
	submitWriter("second-payload!")

	var first, second outcome
	first = <-results
	second = <-results
	require.NoError(t, first.werr)
	require.NoError(t, second.werr)

	id, ok := taskrun.Run[iofs.ReadResult](e, openAndReadToEnd(path))
	require.True(t, ok)
	var read iofs.ReadResult
	require.Eventually(t, func() bool {
		r := taskrun.TakeResult[iofs.ReadResult](e, id)
		if r.Kind != taskrun.Expected {
			return false
		}
		read = r.Value
		return true
	}, 2*time.Second, time.Millisecond)
	require.NoError(t, read.Err)
	require.Contains(t, []string{"first-payload", "second-payload!"}, string(read.Bytes))
}

package iofs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ndowmon/taskrun"
	"github.com/ndowmon/taskrun/pool"
)

// run polls p until id's completion is observed, returning its value.
func run[T any](t *testing.T, p *pool.Pool, f taskrun.Future[T]) T {
	t.Helper()
	var gen taskrun.IdGenerator
	id, _ := gen.Next()
	p.RunFuture(id, taskrun.EraseFuture[T](f))

	var value any
	require.Eventually(t, func() bool {
		for _, c := range p.CollectResults() {
			if c.ID == id {
				value = c.Value
				return true
			}
		}
		return false
	}, 2*time.Second, time.Millisecond)
	// A nil interface output (e.g. a nil error) arrives as a nil any.
	if value == nil {
		var zero T
		return zero
	}
	return value.(T)
}

func TestCreateWriteReadRoundTrip(t *testing.T) {
	p := pool.New(2)
	defer p.Join()

	dir := t.TempDir()
	path := filepath.Join(dir, "greeting.txt")

	created := run(t, p, Create(path))
	require.NoError(t, created.Err)

	werr := run(t, p, created.File.WriteAll([]byte("Hello, World!")))
	require.NoError(t, werr)

	opened := run(t, p, Open(path))
	require.NoError(t, opened.Err)

	read := run(t, p, opened.File.ReadToEnd())
	require.NoError(t, read.Err)
	require.Equal(t, "Hello, World!", string(read.Bytes))
}

func TestMetadataAndSetLen(t *testing.T) {
	p := pool.New(1)
	defer p.Join()

	dir := t.TempDir()
	path := filepath.Join(dir, "sized.txt")

	created := run(t, p, Create(path))
	require.NoError(t, created.Err)

	werr := run(t, p, created.File.WriteAll([]byte("0123456789")))
	require.NoError(t, werr)

	meta := run(t, p, created.File.Metadata())
	require.NoError(t, meta.Err)
	require.EqualValues(t, 10, meta.Info.Size())

	slerr := run(t, p, created.File.SetLen(4))
	require.NoError(t, slerr)

	meta2 := run(t, p, created.File.Metadata())
	require.NoError(t, meta2.Err)
	require.EqualValues(t, 4, meta2.Info.Size())
}

func TestIntoStdHandsOffUnderlyingFile(t *testing.T) {
	p := pool.New(1)
	defer p.Join()

	dir := t.TempDir()
	path := filepath.Join(dir, "std.txt")

	created := run(t, p, Create(path))
	require.NoError(t, created.Err)

	std := run(t, p, created.File.IntoStd())
	require.NotNil(t, std)
	require.NoError(t, std.Close())
}

func TestCopyRenameRemove(t *testing.T) {
	p := pool.New(2)
	defer p.Join()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	copyDst := filepath.Join(dir, "copy.txt")
	renameDst := filepath.Join(dir, "renamed.txt")

	created := run(t, p, Create(src))
	require.NoError(t, created.Err)
	require.NoError(t, run(t, p, created.File.WriteAll([]byte("payload"))))

	copyRes := run(t, p, Copy(src, copyDst))
	require.NoError(t, copyRes.Err)
	require.EqualValues(t, len("payload"), copyRes.N)

	require.NoError(t, run(t, p, Rename(copyDst, renameDst)))
	_, err := os.Stat(renameDst)
	require.NoError(t, err)

	require.NoError(t, run(t, p, RemoveFile(renameDst)))
	_, err = os.Stat(renameDst)
	require.True(t, os.IsNotExist(err))
}

func TestCreateDirAllAndRemoveDirAll(t *testing.T) {
	p := pool.New(1)
	defer p.Join()

	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")

	require.NoError(t, run(t, p, CreateDirAll(nested)))
	info, err := os.Stat(nested)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	require.NoError(t, run(t, p, RemoveDirAll(filepath.Join(dir, "a"))))
	_, err = os.Stat(filepath.Join(dir, "a"))
	require.True(t, os.IsNotExist(err))
}

func TestReadUnknownHandleIsSilentlyDropped(t *testing.T) {
	p := pool.New(1)

	// A File whose handle the worker no longer holds (here: already handed
	// off via IntoStd) has no handle to operate on; the request is dropped
	// rather than erroring, so the future simply never resolves. Confirm
	// CollectResults stays empty for a bounded wait instead of racing a
	// result that will never arrive. This leaves the task permanently live,
	// so this test deliberately never calls p.Join (it would block forever
	// waiting for it to drain).
	created := run(t, p, Create(filepath.Join(t.TempDir(), "ghost.txt")))
	require.NoError(t, created.Err)
	std := run(t, p, created.File.IntoStd())
	require.NoError(t, std.Close())
	ghost := created.File
	var gen taskrun.IdGenerator
	id, _ := gen.Next()
	p.RunFuture(id, taskrun.EraseFuture[ReadResult](ghost.Read(16)))

	time.Sleep(50 * time.Millisecond)
	for _, c := range p.CollectResults() {
		require.NotEqual(t, id, c.ID)
	}
}

// Package iofs offloads blocking filesystem calls onto one process-wide
// background goroutine, exposing them to the executor as ordinary
// Future[T] values instead of blocking a runner goroutine directly.
package iofs

import (
	"io"
	"os"
	"sync"

	"github.com/ndowmon/taskrun"
	"github.com/ndowmon/taskrun/tracelog"
)

type opKind int

const (
	opOpen opKind = iota
	opCreate
	opRead
	opFullyRead
	opWrite
	opMetadata
	opToStd
	opSetLen
	opChangeDir
	opCopy
	opRemoveFile
	opRename
)

// DirChange selects which directory mutation ChangeDir performs.
type DirChange int

const (
	DirCreate DirChange = iota
	DirCreateAll
	DirRemove
	DirRemoveAll
)

type request struct {
	kind      opKind
	path      string
	path2     string
	file      taskrun.Id
	maxBytes  int
	buf       []byte
	size      int64
	dirChange DirChange
}

type taggedRequest struct {
	id      taskrun.Id
	req     request
	waker   taskrun.Waker
}

type taggedOutcome struct {
	id      taskrun.Id
	outcome Outcome
}

// worker is the singleton background goroutine. Its request channel and
// results table are unbounded in practice (4096-deep buffer); a client
// future submitting a request never blocks on the worker being busy with
// an earlier one.
type worker struct {
	requests chan taggedRequest

	idMu  sync.Mutex
	idGen taskrun.IdGenerator

	resultsMu sync.Mutex
	resultsCh chan taggedOutcome
	results   map[taskrun.Id]Outcome
}

var (
	instance     *worker
	instanceOnce sync.Once
)

func get() *worker {
	instanceOnce.Do(func() {
		w := &worker{
			requests:  make(chan taggedRequest, 4096),
			resultsCh: make(chan taggedOutcome, 4096),
			results:   make(map[taskrun.Id]Outcome),
		}
		go w.run()
		instance = w
	})
	return instance
}

// submit assigns a fresh request id, hands (id, req, waker) to the worker,
// and returns the id a future polls tryRecvResult with.
func (w *worker) submit(req request, waker taskrun.Waker) taskrun.Id {
	w.idMu.Lock()
	id, ok := w.idGen.Next()
	w.idMu.Unlock()
	if !ok {
		panic("iofs: request id space exhausted")
	}
	w.requests <- taggedRequest{id: id, req: req, waker: waker}
	return id
}

// tryRecvResult drains whatever outcomes the worker has posted into the
// results table, then attempts to remove id from it.
func (w *worker) tryRecvResult(id taskrun.Id) (Outcome, bool) {
	w.resultsMu.Lock()
	defer w.resultsMu.Unlock()

drain:
	for {
		select {
		case to := <-w.resultsCh:
			w.results[to.id] = to.outcome
		default:
			break drain
		}
	}

	o, ok := w.results[id]
	if ok {
		delete(w.results, id)
	}
	return o, ok
}

func (w *worker) deliver(id taskrun.Id, outcome Outcome, waker taskrun.Waker) {
	w.resultsCh <- taggedOutcome{id: id, outcome: outcome}
	waker.WakeConsuming()
}

func (w *worker) run() {
	files := make(map[taskrun.Id]*os.File)
	var fileIDGen taskrun.IdGenerator

	for tr := range w.requests {
		switch tr.req.kind {
		case opOpen:
			w.handleOpenOrCreate(tr, files, &fileIDGen, os.Open)
		case opCreate:
			w.handleOpenOrCreate(tr, files, &fileIDGen, func(p string) (*os.File, error) { return os.Create(p) })
		case opRead:
			w.handleRead(tr, files)
		case opFullyRead:
			w.handleFullyRead(tr, files)
		case opWrite:
			w.handleWrite(tr, files)
		case opMetadata:
			w.handleMetadata(tr, files)
		case opToStd:
			w.handleToStd(tr, files)
		case opSetLen:
			w.handleSetLen(tr, files)
		case opChangeDir:
			w.handleChangeDir(tr)
		case opCopy:
			w.handleCopy(tr)
		case opRemoveFile:
			w.deliver(tr.id, Outcome{Kind: outcomeRemoved, Err: os.Remove(tr.req.path)}, tr.waker)
		case opRename:
			w.deliver(tr.id, Outcome{Kind: outcomeRenamed, Err: os.Rename(tr.req.path, tr.req.path2)}, tr.waker)
		}
	}
}

func (w *worker) handleOpenOrCreate(tr taggedRequest, files map[taskrun.Id]*os.File, gen *taskrun.IdGenerator, open func(string) (*os.File, error)) {
	f, err := open(tr.req.path)
	if err != nil {
		w.deliver(tr.id, Outcome{Kind: outcomeFileOpenedOrCreated, Err: err}, tr.waker)
		return
	}
	fid, ok := gen.Next()
	if !ok {
		panic("iofs: file handle id space exhausted")
	}
	files[fid] = f
	tracelog.Tracef("iofs", "opened file %v as handle %v", tr.req.path, fid)
	w.deliver(tr.id, Outcome{Kind: outcomeFileOpenedOrCreated, FileID: fid}, tr.waker)
}

// handleRead, handleFullyRead, etc. silently drop the request — no result
// posted, no wake — when the file handle is unknown (already closed via
// IntoStd, or never valid). This is a deliberate carry-over of the
// original worker's "operate only if the handle is still present" shape:
// a stray request against a handle nobody holds any more has no
// meaningful outcome to report.
func (w *worker) handleRead(tr taggedRequest, files map[taskrun.Id]*os.File) {
	f, ok := files[tr.req.file]
	if !ok {
		return
	}
	buf := make([]byte, tr.req.maxBytes)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		w.deliver(tr.id, Outcome{Kind: outcomeBytesRead, Err: err}, tr.waker)
		return
	}
	w.deliver(tr.id, Outcome{Kind: outcomeBytesRead, Bytes: buf[:n]}, tr.waker)
}

func (w *worker) handleFullyRead(tr taggedRequest, files map[taskrun.Id]*os.File) {
	f, ok := files[tr.req.file]
	if !ok {
		return
	}
	buf := make([]byte, 1024)
	var contents []byte
	var rerr error
	for {
		n, err := f.Read(buf)
		if n > 0 {
			contents = append(contents, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			rerr = err
			break
		}
		if n == 0 {
			break
		}
	}
	w.deliver(tr.id, Outcome{Kind: outcomeBytesRead, Bytes: contents, Err: rerr}, tr.waker)
}

func (w *worker) handleWrite(tr taggedRequest, files map[taskrun.Id]*os.File) {
	f, ok := files[tr.req.file]
	if !ok {
		return
	}
	n, err := f.Write(tr.req.buf)
	w.deliver(tr.id, Outcome{Kind: outcomeBytesWritten, N: n, Err: err}, tr.waker)
}

func (w *worker) handleMetadata(tr taggedRequest, files map[taskrun.Id]*os.File) {
	f, ok := files[tr.req.file]
	if !ok {
		return
	}
	info, err := f.Stat()
	w.deliver(tr.id, Outcome{Kind: outcomeMetadata, Info: info, Err: err}, tr.waker)
}

func (w *worker) handleToStd(tr taggedRequest, files map[taskrun.Id]*os.File) {
	f, ok := files[tr.req.file]
	if !ok {
		return
	}
	delete(files, tr.req.file)
	w.deliver(tr.id, Outcome{Kind: outcomeToStd, StdFile: f}, tr.waker)
}

func (w *worker) handleSetLen(tr taggedRequest, files map[taskrun.Id]*os.File) {
	f, ok := files[tr.req.file]
	if !ok {
		return
	}
	err := f.Truncate(tr.req.size)
	w.deliver(tr.id, Outcome{Kind: outcomeLenSet, Err: err}, tr.waker)
}

func (w *worker) handleChangeDir(tr taggedRequest) {
	var err error
	switch tr.req.dirChange {
	case DirCreate:
		err = os.Mkdir(tr.req.path, 0o755)
	case DirCreateAll:
		err = os.MkdirAll(tr.req.path, 0o755)
	case DirRemove:
		err = os.Remove(tr.req.path)
	case DirRemoveAll:
		err = os.RemoveAll(tr.req.path)
	}
	w.deliver(tr.id, Outcome{Kind: outcomeDirChanged, Err: err}, tr.waker)
}

func (w *worker) handleCopy(tr taggedRequest) {
	n, err := copyFile(tr.req.path, tr.req.path2)
	w.deliver(tr.id, Outcome{Kind: outcomeCopied, Copied: n, Err: err}, tr.waker)
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

package iofs

import (
	"io"
	"os"

	"github.com/ndowmon/taskrun"
)

// File is a handle into the I/O worker's open-file table. The zero value
// is not usable; obtain one from Open or Create.
type File struct {
	id taskrun.Id
}

// OpenResult is the outcome of Open.
type OpenResult struct {
	File *File
	Err  error
}

// Open offloads os.Open(path) onto the I/O worker.
func Open(path string) taskrun.Future[OpenResult] {
	return &requestFuture[OpenResult]{
		want: outcomeFileOpenedOrCreated,
		submit: func(w taskrun.Waker) taskrun.Id {
			return get().submit(request{kind: opOpen, path: path}, w.Clone())
		},
		extract: func(o Outcome) OpenResult {
			if o.Err != nil {
				return OpenResult{Err: o.Err}
			}
			return OpenResult{File: &File{id: o.FileID}}
		},
	}
}

// Create offloads os.Create(path) onto the I/O worker.
func Create(path string) taskrun.Future[OpenResult] {
	return &requestFuture[OpenResult]{
		want: outcomeFileOpenedOrCreated,
		submit: func(w taskrun.Waker) taskrun.Id {
			return get().submit(request{kind: opCreate, path: path}, w.Clone())
		},
		extract: func(o Outcome) OpenResult {
			if o.Err != nil {
				return OpenResult{Err: o.Err}
			}
			return OpenResult{File: &File{id: o.FileID}}
		},
	}
}

// ReadResult is the outcome of Read and ReadToEnd.
type ReadResult struct {
	Bytes []byte
	Err   error
}

// Read offloads a single bounded read of at most maxBytes onto the I/O
// worker.
func (f *File) Read(maxBytes int) taskrun.Future[ReadResult] {
	id := f.id
	return &requestFuture[ReadResult]{
		want: outcomeBytesRead,
		submit: func(w taskrun.Waker) taskrun.Id {
			return get().submit(request{kind: opRead, file: id, maxBytes: maxBytes}, w.Clone())
		},
		extract: func(o Outcome) ReadResult {
			return ReadResult{Bytes: o.Bytes, Err: o.Err}
		},
	}
}

// ReadToEnd offloads reading the file to completion onto the I/O worker.
func (f *File) ReadToEnd() taskrun.Future[ReadResult] {
	id := f.id
	return &requestFuture[ReadResult]{
		want: outcomeBytesRead,
		submit: func(w taskrun.Waker) taskrun.Id {
			return get().submit(request{kind: opFullyRead, file: id}, w.Clone())
		},
		extract: func(o Outcome) ReadResult {
			return ReadResult{Bytes: o.Bytes, Err: o.Err}
		},
	}
}

// WriteResult is the outcome of Write.
type WriteResult struct {
	N   int
	Err error
}

// Write offloads a single write of buf onto the I/O worker. Like os.File,
// a short write is possible; callers wanting "all of buf or an error"
// should use WriteAll.
func (f *File) Write(buf []byte) taskrun.Future[WriteResult] {
	id := f.id
	return &requestFuture[WriteResult]{
		want: outcomeBytesWritten,
		submit: func(w taskrun.Waker) taskrun.Id {
			return get().submit(request{kind: opWrite, file: id, buf: buf}, w.Clone())
		},
		extract: func(o Outcome) WriteResult {
			return WriteResult{N: o.N, Err: o.Err}
		},
	}
}

// writeAllFuture loops Write across polls until buf is exhausted or an
// error occurs, mirroring the original write_all's retry-until-empty
// behavior without blocking a runner goroutine for the whole sequence.
type writeAllFuture struct {
	file      *File
	remaining []byte
	current   taskrun.Future[WriteResult]
	done      bool
	err       error
}

// WriteAll offloads buf, writing it in full (retrying on short writes)
// unless an error occurs first.
func (f *File) WriteAll(buf []byte) taskrun.Future[error] {
	return &writeAllFuture{file: f, remaining: buf}
}

func (w *writeAllFuture) Poll(waker taskrun.Waker) (error, bool) {
	if w.done {
		panic("iofs: polled a WriteAll future after completion")
	}
	for {
		if len(w.remaining) == 0 {
			w.done = true
			return w.err, true
		}
		if w.current == nil {
			w.current = w.file.Write(w.remaining)
		}
		res, ready := w.current.Poll(waker)
		if !ready {
			return nil, false
		}
		w.current = nil
		if res.Err != nil {
			w.done = true
			w.err = res.Err
			return w.err, true
		}
		if res.N == 0 {
			w.done = true
			w.err = io.ErrShortWrite
			return w.err, true
		}
		w.remaining = w.remaining[res.N:]
	}
}

// MetadataResult is the outcome of Metadata.
type MetadataResult struct {
	Info os.FileInfo
	Err  error
}

// Metadata offloads f.Stat() onto the I/O worker.
func (f *File) Metadata() taskrun.Future[MetadataResult] {
	id := f.id
	return &requestFuture[MetadataResult]{
		want: outcomeMetadata,
		submit: func(w taskrun.Waker) taskrun.Id {
			return get().submit(request{kind: opMetadata, file: id}, w.Clone())
		},
		extract: func(o Outcome) MetadataResult {
			return MetadataResult{Info: o.Info, Err: o.Err}
		},
	}
}

// IntoStd hands the underlying *os.File to the caller, removing it from
// the worker's table — after this, the File it was called on can no
// longer be operated on (a further op against its id is silently dropped,
// as the worker no longer holds any handle for it).
func (f *File) IntoStd() taskrun.Future[*os.File] {
	id := f.id
	return &requestFuture[*os.File]{
		want: outcomeToStd,
		submit: func(w taskrun.Waker) taskrun.Id {
			return get().submit(request{kind: opToStd, file: id}, w.Clone())
		},
		extract: func(o Outcome) *os.File {
			return o.StdFile
		},
	}
}

// SetLen offloads f.Truncate(size) onto the I/O worker.
func (f *File) SetLen(size int64) taskrun.Future[error] {
	id := f.id
	return &requestFuture[error]{
		want: outcomeLenSet,
		submit: func(w taskrun.Waker) taskrun.Id {
			return get().submit(request{kind: opSetLen, file: id, size: size}, w.Clone())
		},
		extract: func(o Outcome) error {
			return o.Err
		},
	}
}

package iofs

import "github.com/ndowmon/taskrun"

// CreateDir offloads os.Mkdir(path) onto the I/O worker.
func CreateDir(path string) taskrun.Future[error] {
	return changeDirFuture(path, DirCreate)
}

// CreateDirAll offloads os.MkdirAll(path) onto the I/O worker.
func CreateDirAll(path string) taskrun.Future[error] {
	return changeDirFuture(path, DirCreateAll)
}

// RemoveDir offloads os.Remove(path) (as a directory removal) onto the
// I/O worker.
func RemoveDir(path string) taskrun.Future[error] {
	return changeDirFuture(path, DirRemove)
}

// RemoveDirAll offloads os.RemoveAll(path) onto the I/O worker.
func RemoveDirAll(path string) taskrun.Future[error] {
	return changeDirFuture(path, DirRemoveAll)
}

func changeDirFuture(path string, change DirChange) taskrun.Future[error] {
	return &requestFuture[error]{
		want: outcomeDirChanged,
		submit: func(w taskrun.Waker) taskrun.Id {
			return get().submit(request{kind: opChangeDir, path: path, dirChange: change}, w.Clone())
		},
		extract: func(o Outcome) error { return o.Err },
	}
}

// CopyResult is the outcome of Copy.
type CopyResult struct {
	N   int64
	Err error
}

// Copy offloads copying src to dst onto the I/O worker.
func Copy(src, dst string) taskrun.Future[CopyResult] {
	return &requestFuture[CopyResult]{
		want: outcomeCopied,
		submit: func(w taskrun.Waker) taskrun.Id {
			return get().submit(request{kind: opCopy, path: src, path2: dst}, w.Clone())
		},
		extract: func(o Outcome) CopyResult {
			return CopyResult{N: o.Copied, Err: o.Err}
		},
	}
}

// RemoveFile offloads os.Remove(path) onto the I/O worker.
func RemoveFile(path string) taskrun.Future[error] {
	return &requestFuture[error]{
		want: outcomeRemoved,
		submit: func(w taskrun.Waker) taskrun.Id {
			return get().submit(request{kind: opRemoveFile, path: path}, w.Clone())
		},
		extract: func(o Outcome) error { return o.Err },
	}
}

// Rename offloads os.Rename(oldpath, newpath) onto the I/O worker.
func Rename(oldpath, newpath string) taskrun.Future[error] {
	return &requestFuture[error]{
		want: outcomeRenamed,
		submit: func(w taskrun.Waker) taskrun.Id {
			return get().submit(request{kind: opRename, path: oldpath, path2: newpath}, w.Clone())
		},
		extract: func(o Outcome) error { return o.Err },
	}
}

package iofs

import (
	"os"

	"github.com/ndowmon/taskrun"
)

// outcomeKind tags the shape of a completed I/O operation's result.
type outcomeKind int

const (
	outcomeFileOpenedOrCreated outcomeKind = iota
	outcomeBytesRead
	outcomeBytesWritten
	outcomeMetadata
	outcomeToStd
	outcomeLenSet
	outcomeDirChanged
	outcomeCopied
	outcomeRemoved
	outcomeRenamed
)

// Outcome is the worker's boxed result for one request, keyed by id in its
// results table until a client future collects it.
type Outcome struct {
	Kind    outcomeKind
	FileID  taskrun.Id
	Err     error
	Bytes   []byte
	N       int
	Info    os.FileInfo
	StdFile *os.File
	Copied  int64
}

package netio

import "github.com/ndowmon/taskrun"

type readAllState int

const (
	rsBind readAllState = iota
	rsAccepting
	rsReading
	rsDone
)

// ReadAllResult is the outcome of ReadAll.
type ReadAllResult struct {
	Bytes []byte
	Err   error
}

// readAllFuture binds addr, accepts exactly one connection, and reads it
// to EOF one byte at a time — a worked example composing Listen, Accept,
// and Read into a single suspendable computation, not a general-purpose
// primitive.
type readAllFuture struct {
	addr string
	state readAllState

	listener *TcpListener
	accept   taskrun.Future[AcceptResult]
	stream   *TcpStream
	read     taskrun.Future[ReadResult]

	buf    [1]byte
	output []byte
}

// ReadAll binds addr, accepts a single connection, and reads it to EOF,
// returning the accumulated bytes.
func ReadAll(addr string) taskrun.Future[ReadAllResult] {
	return &readAllFuture{addr: addr, state: rsBind}
}

func (f *readAllFuture) Poll(w taskrun.Waker) (ReadAllResult, bool) {
	for {
		switch f.state {
		case rsBind:
			ln, err := Listen(f.addr)
			if err != nil {
				f.state = rsDone
				return ReadAllResult{Err: err}, true
			}
			f.listener = ln
			f.accept = f.listener.Accept()
			f.state = rsAccepting

		case rsAccepting:
			res, ready := f.accept.Poll(w)
			if !ready {
				return ReadAllResult{}, false
			}
			if res.Err != nil {
				f.state = rsDone
				return ReadAllResult{Err: res.Err}, true
			}
			f.stream = res.Stream
			f.state = rsReading

		case rsReading:
			if f.read == nil {
				f.read = f.stream.Read(f.buf[:])
			}
			res, ready := f.read.Poll(w)
			if !ready {
				return ReadAllResult{}, false
			}
			f.read = nil
			if res.Err != nil {
				f.state = rsDone
				return ReadAllResult{Err: res.Err}, true
			}
			if res.N == 0 {
				f.state = rsDone
				return ReadAllResult{Bytes: f.output}, true
			}
			f.output = append(f.output, f.buf[0])

		case rsDone:
			panic("netio: polled a ReadAll future after completion")
		}
	}
}

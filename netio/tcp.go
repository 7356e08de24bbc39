// Package netio provides thin non-blocking wrappers over net.Listener and
// net.Conn: Accept and Read return Future[T] values that poll the
// underlying socket with a short deadline and re-arm their waker on a
// timeout, standing in for the reference implementation's WouldBlock +
// wake_by_ref loop (Go's net package doesn't expose raw non-blocking
// sockets the way Rust's std::net does).
package netio

import (
	"io"
	"net"
	"time"

	"github.com/ndowmon/taskrun"
)

// pollDeadline bounds how long a single Accept/Read syscall attempt may
// block before this package treats it as "nothing ready yet" and re-arms
// the waker, rather than genuinely blocking the runner goroutine.
const pollDeadline = time.Millisecond

// TcpListener wraps a *net.TCPListener for non-blocking-style Accept.
type TcpListener struct {
	ln *net.TCPListener
}

// Listen binds addr and returns a TcpListener ready for non-blocking
// Accept polling.
func Listen(addr string) (*TcpListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TcpListener{ln: ln.(*net.TCPListener)}, nil
}

// AcceptResult is the outcome of TcpListener.Accept.
type AcceptResult struct {
	Stream *TcpStream
	Err    error
}

// Accept returns a Future that resolves once a connection arrives or the
// listener errors. Each poll attempts Accept with a short deadline; a
// timeout is treated as "not ready yet" and re-arms the waker instead of
// surfacing as an error.
func (l *TcpListener) Accept() taskrun.Future[AcceptResult] {
	return taskrun.FuncFuture[AcceptResult](func(w taskrun.Waker) (AcceptResult, bool) {
		if err := l.ln.SetDeadline(time.Now().Add(pollDeadline)); err != nil {
			return AcceptResult{Err: err}, true
		}
		conn, err := l.ln.Accept()
		if err != nil {
			if isTimeout(err) {
				w.WakeByRef()
				return AcceptResult{}, false
			}
			return AcceptResult{Err: err}, true
		}
		return AcceptResult{Stream: &TcpStream{conn: conn}}, true
	})
}

// Close releases the listener's underlying socket.
func (l *TcpListener) Close() error { return l.ln.Close() }

// TcpStream wraps a net.Conn for non-blocking-style Read.
type TcpStream struct {
	conn net.Conn
}

// ReadResult is the outcome of TcpStream.Read.
type ReadResult struct {
	N   int
	Err error
}

// Read returns a Future that resolves once at least one byte has been
// read into buf, the peer closes the connection (N == 0, Err == nil), or
// an error other than a poll timeout occurs.
func (s *TcpStream) Read(buf []byte) taskrun.Future[ReadResult] {
	return taskrun.FuncFuture[ReadResult](func(w taskrun.Waker) (ReadResult, bool) {
		if err := s.conn.SetReadDeadline(time.Now().Add(pollDeadline)); err != nil {
			return ReadResult{Err: err}, true
		}
		n, err := s.conn.Read(buf)
		if err != nil {
			if isTimeout(err) {
				w.WakeByRef()
				return ReadResult{}, false
			}
			if err == io.EOF {
				return ReadResult{N: n}, true
			}
			return ReadResult{N: n, Err: err}, true
		}
		return ReadResult{N: n}, true
	})
}

// Close releases the stream's underlying socket.
func (s *TcpStream) Close() error { return s.conn.Close() }

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

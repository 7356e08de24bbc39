// Package tracelog provides the gated, lazily-formatted trace logging used
// by the runner, timer, and I/O worker to narrate wake/poll activity. It
// mirrors the reference implementation's prt! macro — a debug println
// gated behind a compile-time-false constant — but as a real, leveled
// logger so a caller debugging a stuck task can turn it on without
// rebuilding.
//
// The default level is logrus.PanicLevel, meaning Tracef calls are free:
// logrus skips formatting entirely when the message's level is disabled.
package tracelog

import "github.com/sirupsen/logrus"

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel) // silent by default, mirroring `if false { println!(...) }`.
	return l
}

// SetLevel raises or lowers the package-wide trace level. Pass
// logrus.TraceLevel to see every wake/poll line; pass logrus.PanicLevel
// (the default) to silence them again.
func SetLevel(level logrus.Level) {
	logger.SetLevel(level)
}

// Tracef emits a trace-level line tagged with component (e.g. "runner",
// "timer", "iofs"). Arguments are only formatted if tracing is enabled.
func Tracef(component, format string, args ...interface{}) {
	logger.WithField("component", component).Tracef(format, args...)
}

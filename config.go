package taskrun

import (
	"github.com/sirupsen/logrus"

	"github.com/ndowmon/taskrun/metrics"
)

// ExecutorConfig holds Executor configuration.
type ExecutorConfig struct {
	// NumWorkers sizes the pool when an Executor is started via
	// StartFromConfig. Start's explicit n argument always takes priority
	// over this field.
	// Default: 1
	NumWorkers int

	// MetricsProvider receives each runner's live-task count and
	// completed-task count. A NoopProvider is used if none is given.
	// Default: metrics.NewNoopProvider()
	MetricsProvider metrics.Provider

	// TraceLevel gates the internal trace logger shared by the runner,
	// timer, and I/O worker packages. Left at its default, tracing is
	// silent; raise it (e.g. logrus.TraceLevel) to see per-poll
	// diagnostics.
	// Default: logrus.PanicLevel (effectively disabled)
	TraceLevel logrus.Level
}

// validateConfig performs lightweight invariants checks.
func validateConfig(cfg *ExecutorConfig) error {
	if cfg.NumWorkers < 0 {
		return ErrInvalidConfig
	}
	if cfg.MetricsProvider == nil {
		return ErrInvalidConfig
	}
	return nil
}

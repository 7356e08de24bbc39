package taskrun

import (
	"github.com/sirupsen/logrus"

	"github.com/ndowmon/taskrun/metrics"
)

// defaultConfig centralizes default values for ExecutorConfig. These
// defaults are applied by buildConfig as the options builder's base.
func defaultConfig() ExecutorConfig {
	return ExecutorConfig{
		NumWorkers:      1,
		MetricsProvider: metrics.NewNoopProvider(),
		TraceLevel:      logrus.PanicLevel,
	}
}

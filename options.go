package taskrun

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ndowmon/taskrun/metrics"
)

// Option configures an Executor. Pass any number to Start.
type Option func(*ExecutorConfig)

// WithNumWorkers sets the pool size used by StartFromConfig. Start's own n
// argument overrides this.
func WithNumWorkers(n int) Option {
	return func(cfg *ExecutorConfig) { cfg.NumWorkers = n }
}

// WithMetricsProvider reports runner load and completion counts into p.
func WithMetricsProvider(p metrics.Provider) Option {
	return func(cfg *ExecutorConfig) { cfg.MetricsProvider = p }
}

// WithTraceLevel raises or lowers the internal trace logger shared by the
// runner, timer, and I/O worker packages.
func WithTraceLevel(level logrus.Level) Option {
	return func(cfg *ExecutorConfig) { cfg.TraceLevel = level }
}

// buildConfig assembles an ExecutorConfig from defaults plus opts, panicking
// on an invalid result — Start has no error return, so a misconfigured
// executor is a programming error caught at construction, not runtime.
func buildConfig(opts ...Option) *ExecutorConfig {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			panic("taskrun: nil option")
		}
		opt(&cfg)
	}
	if err := validateConfig(&cfg); err != nil {
		panic(fmt.Errorf("taskrun: invalid config: %w", err))
	}
	return &cfg
}

// fileConfig is the YAML-facing shape LoadConfig reads. Only the fields
// expressible as plain data appear here; MetricsProvider is selected by
// name rather than constructed by the file (an interface value can't
// round-trip through YAML).
type fileConfig struct {
	NumWorkers       int    `yaml:"num_workers"`
	TraceLevel       string `yaml:"trace_level"`
	MetricsProvider  string `yaml:"metrics_provider"`
	MetricsNamespace string `yaml:"metrics_namespace"`
}

// LoadConfig reads an ExecutorConfig from a YAML file. metrics_provider
// selects among "noop" (default), "basic", and "prometheus" (registered
// against prometheus.DefaultRegisterer under metrics_namespace, or
// "taskrun" if that key is empty).
func LoadConfig(path string) (*ExecutorConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taskrun: reading config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("taskrun: parsing config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if fc.NumWorkers > 0 {
		cfg.NumWorkers = fc.NumWorkers
	}
	if fc.TraceLevel != "" {
		level, err := logrus.ParseLevel(fc.TraceLevel)
		if err != nil {
			return nil, fmt.Errorf("taskrun: config %s: %w", path, err)
		}
		cfg.TraceLevel = level
	}

	provider, err := resolveMetricsProvider(fc.MetricsProvider, fc.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("taskrun: config %s: %w", path, err)
	}
	cfg.MetricsProvider = provider

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("taskrun: config %s: %w", path, err)
	}
	return &cfg, nil
}

func resolveMetricsProvider(kind, namespace string) (metrics.Provider, error) {
	switch kind {
	case "", "noop":
		return metrics.NewNoopProvider(), nil
	case "basic":
		return metrics.NewBasicProvider(), nil
	case "prometheus":
		if namespace == "" {
			namespace = "taskrun"
		}
		return metrics.NewDefaultPrometheusProvider(namespace), nil
	default:
		return nil, fmt.Errorf("unknown metrics_provider %q", kind)
	}
}

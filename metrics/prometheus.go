package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider backs Provider with real prometheus instruments,
// registered on first use against the given registerer (pass
// prometheus.DefaultRegisterer to expose them on the default /metrics
// handler, or a fresh *prometheus.Registry in tests).
type PrometheusProvider struct {
	reg       prometheus.Registerer
	namespace string
}

// NewPrometheusProvider returns a Provider whose instruments are
// registered under namespace (e.g. "taskrun").
func NewPrometheusProvider(reg prometheus.Registerer, namespace string) *PrometheusProvider {
	return &PrometheusProvider{reg: reg, namespace: namespace}
}

// NewDefaultPrometheusProvider registers instruments against
// prometheus.DefaultRegisterer, exposing them on the default /metrics
// handler.
func NewDefaultPrometheusProvider(namespace string) *PrometheusProvider {
	return NewPrometheusProvider(prometheus.DefaultRegisterer, namespace)
}

func (p *PrometheusProvider) fqName(name string) string {
	return p.namespace + "_" + sanitize(name)
}

func sanitize(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
}

func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	cfg := applyOptions(opts)
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        p.fqName(name),
		Help:        helpOrDefault(cfg.Description, name),
		ConstLabels: toLabels(cfg.Attributes),
	})
	return prometheusCounter{registerOrReuse(p.reg, c).(prometheus.Counter)}
}

func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	cfg := applyOptions(opts)
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        p.fqName(name),
		Help:        helpOrDefault(cfg.Description, name),
		ConstLabels: toLabels(cfg.Attributes),
	})
	return prometheusUpDownCounter{registerOrReuse(p.reg, g).(prometheus.Gauge)}
}

func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	cfg := applyOptions(opts)
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        p.fqName(name),
		Help:        helpOrDefault(cfg.Description, name),
		ConstLabels: toLabels(cfg.Attributes),
	})
	return prometheusHistogram{registerOrReuse(p.reg, h).(prometheus.Histogram)}
}

func helpOrDefault(desc, name string) string {
	if desc != "" {
		return desc
	}
	return name
}

func toLabels(attrs map[string]string) prometheus.Labels {
	if len(attrs) == 0 {
		return nil
	}
	return prometheus.Labels(attrs)
}

// registerOrReuse registers c, tolerating the AlreadyRegisteredError that
// prometheus returns when an instrument with the same descriptor exists —
// Provider's contract is "created once, reused for the same name", and a
// caller may legitimately ask for the same instrument twice. It returns the
// collector that is actually registered: c itself, or the existing one.
func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		// Any other registration failure (malformed descriptor) is a
		// programming error in how this provider is used, not something
		// a caller can recover from mid-measurement.
		panic(err)
	}
	return c
}

type prometheusCounter struct{ c prometheus.Counter }

func (p prometheusCounter) Add(n int64) { p.c.Add(float64(n)) }

type prometheusUpDownCounter struct{ g prometheus.Gauge }

func (p prometheusUpDownCounter) Add(n int64) { p.g.Add(float64(n)) }

type prometheusHistogram struct{ h prometheus.Histogram }

func (p prometheusHistogram) Record(v float64) { p.h.Observe(v) }

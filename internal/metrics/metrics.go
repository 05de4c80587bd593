// Package metrics exports index load counters in the Prometheus format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gtile/core/errs"
	"gtile/core/loader"
)

// PrometheusObserver implements loader.MetricsObserver.
type PrometheusObserver struct {
	reg       *prometheus.Registry
	lines     prometheus.Counter
	inserted  *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	loads     *prometheus.CounterVec
	duration  prometheus.Histogram
	tableSize prometheus.Gauge
}

var _ loader.MetricsObserver = (*PrometheusObserver)(nil)

// NewPrometheusObserver registers the gtile collectors on a private registry.
func NewPrometheusObserver() *PrometheusObserver {
	o := &PrometheusObserver{
		reg: prometheus.NewRegistry(),
		lines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gtile_index_lines_total",
			Help: "Index data lines read",
		}),
		inserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gtile_index_entries_total",
			Help: "Entries stored in the lookup table",
		}, []string{"kind"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gtile_index_skipped_total",
			Help: "Index lines skipped as bad data",
		}, []string{"reason"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gtile_index_loads_total",
			Help: "Index loads completed",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gtile_index_load_seconds",
			Help:    "Wall time of index loads",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		tableSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gtile_table_entries",
			Help: "Entries in the most recently loaded table",
		}),
	}
	o.reg.MustRegister(o.lines, o.inserted, o.skipped, o.loads, o.duration, o.tableSize)
	return o
}

// Registry exposes the collectors, e.g. for a promhttp handler.
func (o *PrometheusObserver) Registry() *prometheus.Registry { return o.reg }

func (o *PrometheusObserver) OnLine() { o.lines.Inc() }

func (o *PrometheusObserver) OnInsert(countOnly bool) {
	kind := "positions"
	if countOnly {
		kind = "count_only"
	}
	o.inserted.WithLabelValues(kind).Inc()
}

func (o *PrometheusObserver) OnSkip(reason string) { o.skipped.WithLabelValues(reason).Inc() }

func (o *PrometheusObserver) OnLoad(d time.Duration, entries int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	o.loads.WithLabelValues(status).Inc()
	o.duration.Observe(d.Seconds())
	o.tableSize.Set(float64(entries))
}

// WriteTextfile dumps the current values in text exposition format, for
// the node_exporter textfile collector.
func (o *PrometheusObserver) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, o.reg); err != nil {
		return errs.IO(err, "write metrics", path)
	}
	return nil
}

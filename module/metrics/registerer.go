package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registerer creates collectors and registers them in one step. Registration
// errors are programming errors and panic.
type Registerer struct {
	prometheus.Registerer
}

func NewRegisterer(registerer prometheus.Registerer) *Registerer {
	return &Registerer{registerer}
}

func mustRegister[C prometheus.Collector](r prometheus.Registerer, collector C) C {
	r.MustRegister(collector)
	return collector
}

func (r *Registerer) RegisterNewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	return mustRegister(r, prometheus.NewHistogram(opts))
}

func (r *Registerer) RegisterNewHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	return mustRegister(r, prometheus.NewHistogramVec(opts, labels))
}

func (r *Registerer) RegisterNewCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	return mustRegister(r, prometheus.NewCounterVec(opts, labels))
}

func (r *Registerer) RegisterNewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	return mustRegister(r, prometheus.NewGauge(opts))
}

func (r *Registerer) RegisterNewGaugeVec(opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	return mustRegister(r, prometheus.NewGaugeVec(opts, labels))
}

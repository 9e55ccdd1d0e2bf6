// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package thermo

import "github.com/prometheus/client_golang/prometheus"

// ClampObserver is notified about the samples limited by every correction.
type ClampObserver interface {
	ObserveClamp(phase string, stats ClampStats)
}

// ClampMetrics exports how often the specific humidity had to be limited.
type ClampMetrics struct {
	Corrections *prometheus.CounterVec
	Clamped     *prometheus.CounterVec
}

func NewClampMetrics() *ClampMetrics {
	return &ClampMetrics{
		Corrections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "humidair_corrections_total",
				Help: "Number of humidity field corrections.",
			},
			[]string{"phase"},
		),
		Clamped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "humidair_specific_humidity_clamped_total",
				Help: "Number of samples whose specific humidity was limited to 0 (bound=lower) or to saturation (bound=upper).",
			},
			[]string{"phase", "bound"},
		),
	}
}

func (m *ClampMetrics) ObserveClamp(phase string, stats ClampStats) {
	m.Corrections.WithLabelValues(phase).Inc()
	m.Clamped.WithLabelValues(phase, "lower").Add(float64(stats.Below))
	m.Clamped.WithLabelValues(phase, "upper").Add(float64(stats.Above))
}

func (m *ClampMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Corrections.Describe(ch)
	m.Clamped.Describe(ch)
}

func (m *ClampMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Corrections.Collect(ch)
	m.Clamped.Collect(ch)
}

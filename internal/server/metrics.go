package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	analysisRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketscope_analysis_runs_total",
		Help: "Completed analysis runs by trigger and outcome.",
	}, []string{"trigger", "status"})

	analysisDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketscope_analysis_duration_seconds",
		Help:    "Wall clock time of analysis runs by trigger.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
)

func init() {
	prometheus.MustRegister(analysisRuns, analysisDuration)
}

func observeAnalysis(trigger, status string, d time.Duration) {
	analysisRuns.WithLabelValues(trigger, status).Inc()
	analysisDuration.WithLabelValues(trigger).Observe(d.Seconds())
}

package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cycleCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "poster_cycles_total",
	Help: "Number of completed generate/publish cycles",
})

var cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "poster_cycle_duration_sec",
	Help:    "Time spent in the active part of a cycle",
	Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
})

var generationCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "poster_generation_total",
	Help: "Generation results by outcome",
}, []string{"outcome"})

var publishCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "poster_publish_total",
	Help: "Publish attempts by platform and result",
}, []string{"platform", "result"})

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	RefreshRuns     *prometheus.CounterVec
	StationOutcomes *prometheus.CounterVec
	RefreshDuration *prometheus.HistogramVec
	TrainsStored    *prometheus.CounterVec
	TasksEnqueued   *prometheus.CounterVec
	ErrorsCount     *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RefreshRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "The total number of train refresh runs",
		}, []string{"region", "status"}),
		StationOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_station_outcomes_total",
			Help:      "Per-station results of train refresh runs",
		}, []string{"region", "outcome"}),
		RefreshDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Time taken by a train refresh run",
			Buckets:   prometheus.DefBuckets,
		}, []string{"region"}),
		TrainsStored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trains_stored_total",
			Help:      "The total number of train rows written to station tables",
		}, []string{"region"}),
		TasksEnqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_enqueued_total",
			Help:      "The total number of background tasks enqueued",
		}, []string{"kind"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

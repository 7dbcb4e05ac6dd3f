// Package metrics provides Prometheus metrics for the review group search.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons used as label values.
const (
	ReasonGuestRole = "guest_role"
	ReasonTemplate  = "template"
	ReasonDuplicate = "duplicate"
)

// Manager owns every collector used by the search.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Search throughput
	candidatesGenerated prometheus.Counter
	candidatesScored    prometheus.Counter
	candidatesRejected  *prometheus.CounterVec
	scoringLatency      prometheus.Histogram
	scoringErrors       prometheus.Counter

	// Outcome
	bestScore     prometheus.Gauge
	shortlistSize prometheus.Gauge
	runDuration   prometheus.Histogram
	runsTotal     *prometheus.CounterVec

	// Pipeline
	queueDepth       prometheus.Gauge
	queueCapacity    prometheus.Gauge
	workerCount      prometheus.Gauge
	historySessions  prometheus.Gauge
	populationSize   prometheus.Gauge
	guestComposition prometheus.Counter
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// scoringLatencyBuckets are in milliseconds; one score is a replay of a
// single session on a cloned baseline.
var scoringLatencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50} //nolint:gochecknoglobals // bucket layout

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(
		WithNamespace("revgroups"),
		WithSubsystem("search"),
		WithHistogramBuckets(scoringLatencyBuckets),
		WithPrometheusRegistry(customRegistry),
	)
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry the
// collectors land on the default registerer; without a namespace the metric
// names carry no prefix.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // collector declarations
	auto := promauto.With(m.registry)

	m.candidatesGenerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_generated_total",
		Help:      "Candidate groupings produced by the partition generator",
	})

	m.candidatesScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_scored_total",
		Help:      "Candidate groupings evaluated by the scorer",
	})

	m.candidatesRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "candidates_rejected_total",
			Help:      "Candidate groupings skipped before scoring, by reason",
		},
		[]string{"reason"},
	)

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Time spent scoring one candidate",
		Buckets:   m.histogramBuckets,
	})

	m.scoringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Candidates that could not be scored",
	})

	m.bestScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "best_score",
		Help:      "Lowest total score found by the last run",
	})

	m.shortlistSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "shortlist_size",
		Help:      "Candidates kept below the shortlist threshold",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Wall time of a complete search run",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	})

	m.runsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "runs_total",
			Help:      "Search runs by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_depth",
		Help:      "Candidates waiting to be scored",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Capacity of the candidate queue",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Scoring workers in the pool",
	})

	m.historySessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_sessions",
		Help:      "Historical sessions replayed into the baseline",
	})

	m.populationSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "population_size",
		Help:      "Roster members taking part in this round",
	})

	m.guestComposition = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "guest_compositions_total",
		Help:      "Guest role compositions explored",
	})
}

// RecordCandidateGenerated increments the generated candidates counter.
func RecordCandidateGenerated() {
	globalManager.candidatesGenerated.Inc()
}

// RecordCandidateScored increments the scored candidates counter.
func RecordCandidateScored() {
	globalManager.candidatesScored.Inc()
}

// RecordCandidateRejected increments the rejection counter for reason.
func RecordCandidateRejected(reason string) {
	globalManager.candidatesRejected.WithLabelValues(reason).Inc()
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoringError increments the scoring errors counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// UpdateBestScore sets the best score gauge.
func UpdateBestScore(score float64) {
	globalManager.bestScore.Set(score)
}

// UpdateShortlistSize sets the shortlist size gauge.
func UpdateShortlistSize(size int) {
	globalManager.shortlistSize.Set(float64(size))
}

// RecordRun records a finished run.
func RecordRun(strategy, outcome string, seconds float64) {
	globalManager.runsTotal.WithLabelValues(strategy, outcome).Inc()
	globalManager.runDuration.Observe(seconds)
}

// UpdateQueueDepth sets the number of queued candidates.
func UpdateQueueDepth(depth int) {
	globalManager.queueDepth.Set(float64(depth))
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateWorkerCount sets the worker count gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateHistorySessions sets the replayed history size.
func UpdateHistorySessions(count int) {
	globalManager.historySessions.Set(float64(count))
}

// UpdatePopulationSize sets the roster size gauge.
func UpdatePopulationSize(count int) {
	globalManager.populationSize.Set(float64(count))
}

// RecordGuestComposition increments the explored guest compositions counter.
func RecordGuestComposition() {
	globalManager.guestComposition.Inc()
}

// WriteTextfile writes the current metrics in text exposition format to
// path, suitable for the node exporter textfile collector.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

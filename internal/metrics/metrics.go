// Package metrics provides the centralized Prometheus metrics registry for the engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "predictions_total",
		Help:      "Total number of match evaluations, labelled by degraded flag",
	}, []string{"degraded"})
	ValueBetsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "value_bets_total",
		Help:      "Total number of value bets emitted, by quality tier",
	}, []string{"tier"})
	StakeVetoesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "stake_vetoes_total",
		Help:      "Total number of stake recommendations vetoed, by reason",
	}, []string{"reason"})
	InvalidOddsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "invalid_odds_total",
		Help:      "Total number of bookmaker odds sets rejected as invalid",
	}, []string{"bookmaker"})
	RefitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "calibration_refits_total",
		Help:      "Total number of calibration refits, by result",
	}, []string{"result"})
	BaseModelFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "base_model_failures_total",
		Help:      "Total number of base model prediction failures",
	}, []string{"model"})
	EnsembleCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "ensemble_cache_hits_total",
		Help:      "Total number of ensemble prediction cache hits",
	})
	EnsembleCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "ensemble_cache_misses_total",
		Help:      "Total number of ensemble prediction cache misses",
	})
)

// Gauge metrics
var (
	CalibrationVersion = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_engine",
		Name:      "calibration_version",
		Help:      "Version of the active calibration state",
	})
	CalibrationSampleSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_engine",
		Name:      "calibration_sample_size",
		Help:      "Sample size used for the active calibration state",
	})
	CalibrationError = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_engine",
		Name:      "calibration_error",
		Help:      "Mean absolute deviation between predicted and realized accuracy for the active state",
	})
	LastDisagreement = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_engine",
		Name:      "last_disagreement",
		Help:      "Disagreement score of the most recent ensemble prediction",
	})
)

// Histogram metrics
var (
	BaseModelLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "edge_engine",
		Name:      "base_model_latency_seconds",
		Help:      "Latency of base model predictions in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"model"})
	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "edge_engine",
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of one full match evaluation in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	RefitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "edge_engine",
		Name:      "calibration_refit_duration_seconds",
		Help:      "Duration of calibration refits in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
	MonteCarloDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "edge_engine",
		Name:      "monte_carlo_duration_seconds",
		Help:      "Duration of Monte Carlo risk simulations in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(ValueBetsTotal)
		registry.MustRegister(StakeVetoesTotal)
		registry.MustRegister(InvalidOddsTotal)
		registry.MustRegister(RefitsTotal)
		registry.MustRegister(BaseModelFailuresTotal)
		registry.MustRegister(EnsembleCacheHitsTotal)
		registry.MustRegister(EnsembleCacheMissesTotal)

		// Register gauge metrics
		registry.MustRegister(CalibrationVersion)
		registry.MustRegister(CalibrationSampleSize)
		registry.MustRegister(CalibrationError)
		registry.MustRegister(LastDisagreement)

		// Register histogram metrics
		registry.MustRegister(BaseModelLatency)
		registry.MustRegister(PipelineDuration)
		registry.MustRegister(RefitDuration)
		registry.MustRegister(MonteCarloDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records a completed match evaluation.
func RecordPrediction(degraded bool, durationSeconds float64) {
	label := "false"
	if degraded {
		label = "true"
	}
	PredictionsTotal.WithLabelValues(label).Inc()
	PipelineDuration.Observe(durationSeconds)
}

// RecordValueBet records an emitted value bet.
func RecordValueBet(tier string) {
	ValueBetsTotal.WithLabelValues(tier).Inc()
}

// RecordRefit records a calibration refit result.
func RecordRefit(committed bool, durationSeconds float64) {
	result := "committed"
	if !committed {
		result = "failed"
	}
	RefitsTotal.WithLabelValues(result).Inc()
	RefitDuration.Observe(durationSeconds)
}

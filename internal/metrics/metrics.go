// Package metrics wires the counters and histograms this codebase emits:
// toggle decisions, chain selection, per-provider latency, cache hit
// ratio, chain hops, and fallback reasons. Registration happens once per
// Recorder; the metric registry itself is safe for concurrent use,
// matching github.com/prometheus/client_golang's own concurrency
// guarantees.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns every Prometheus collector this codebase emits. Construct
// one per process with NewRecorder and register it against a registry
// (prometheus.DefaultRegisterer or a private one in tests).
type Recorder struct {
	ToggleDecisions   *prometheus.CounterVec
	ChainSelections   *prometheus.CounterVec
	ProviderLatency   *prometheus.HistogramVec
	ChainHops         prometheus.Histogram
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	FallbackReasons   *prometheus.CounterVec
	OptimizerRuns     *prometheus.CounterVec
	ReviewsSubmitted  *prometheus.CounterVec
}

// NewRecorder builds a Recorder with all collectors created but not yet
// registered.
func NewRecorder() *Recorder {
	return &Recorder{
		ToggleDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recommend",
			Name:      "llm_toggle_decisions_total",
			Help:      "Count of recommendation requests by whether the LLM chain was enabled.",
		}, []string{"enabled"}),

		ChainSelections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recommend",
			Name:      "chain_strategy_total",
			Help:      "Count of recommendation responses by resulting strategy (llm, fsrs_fallback, busy_message).",
		}, []string{"strategy"}),

		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recommend",
			Name:      "provider_latency_ms",
			Help:      "Per-provider ranking call latency in milliseconds, labelled by outcome.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 12),
		}, []string{"provider", "outcome"}),

		ChainHops: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "recommend",
			Name:      "chain_hops",
			Help:      "Number of provider hops visited per chain execution.",
			Buckets:   prometheus.LinearBuckets(0, 1, 8),
		}),

		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recommend",
			Name:      "cache_hits_total",
			Help:      "Recommendation cache hits.",
		}),

		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recommend",
			Name:      "cache_misses_total",
			Help:      "Recommendation cache misses.",
		}),

		FallbackReasons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recommend",
			Name:      "fallback_reasons_total",
			Help:      "Count of chain defaults by reason (error class or policy string).",
		}, []string{"reason"}),

		OptimizerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fsrs",
			Name:      "optimizer_runs_total",
			Help:      "FSRS parameter optimizer invocations by outcome (applied, skipped_insufficient_data, skipped_invalid).",
		}, []string{"outcome"}),

		ReviewsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fsrs",
			Name:      "reviews_submitted_total",
			Help:      "Review submissions by resulting card state.",
		}, []string{"state"}),
	}
}

// MustRegister registers every collector against reg, panicking on
// duplicate registration (mirrors prometheus.MustRegister's own contract).
func (r *Recorder) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		r.ToggleDecisions,
		r.ChainSelections,
		r.ProviderLatency,
		r.ChainHops,
		r.CacheHits,
		r.CacheMisses,
		r.FallbackReasons,
		r.OptimizerRuns,
		r.ReviewsSubmitted,
	)
}

// RecordToggle records whether the LLM chain was enabled for a request.
func (r *Recorder) RecordToggle(enabled bool) {
	label := "false"
	if enabled {
		label = "true"
	}
	r.ToggleDecisions.WithLabelValues(label).Inc()
}

// RecordStrategy records the strategy a recommendation response resolved to.
func (r *Recorder) RecordStrategy(strategy string) {
	r.ChainSelections.WithLabelValues(strategy).Inc()
}

// RecordProviderLatency records one provider call's latency, labelled by
// success/failure.
func (r *Recorder) RecordProviderLatency(provider string, success bool, latencyMs int64) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	r.ProviderLatency.WithLabelValues(provider, outcome).Observe(float64(latencyMs))
}

// RecordChainHops records the number of hops a chain execution visited.
func (r *Recorder) RecordChainHops(hops int) {
	r.ChainHops.Observe(float64(hops))
}

// RecordCache records a cache hit or miss.
func (r *Recorder) RecordCache(hit bool) {
	if hit {
		r.CacheHits.Inc()
		return
	}
	r.CacheMisses.Inc()
}

// RecordFallbackReason records a chain default's reason string.
func (r *Recorder) RecordFallbackReason(reason string) {
	if reason == "" {
		return
	}
	r.FallbackReasons.WithLabelValues(reason).Inc()
}

// RecordOptimizerRun records one optimizer invocation's outcome.
func (r *Recorder) RecordOptimizerRun(outcome string) {
	r.OptimizerRuns.WithLabelValues(outcome).Inc()
}

// RecordReviewSubmitted records one review submission's resulting state.
func (r *Recorder) RecordReviewSubmitted(state string) {
	r.ReviewsSubmitted.WithLabelValues(state).Inc()
}

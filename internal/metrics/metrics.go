// Package metrics registers the Prometheus counters, gauges and histograms
// updated by the Budget Tracker (C10) and Model Router (C11), in the
// underlying service corpus's promauto-based registration style. The
// scorer and selector duration histograms are registered as well; no
// package in this repository observes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the metrics this repository's core emits. It is safe
// for concurrent use and is passed explicitly, never reached through an
// ambient singleton.
type Collector struct {
	BudgetTokensTracked *prometheus.CounterVec
	BudgetRemaining     *prometheus.GaugeVec
	BudgetAlerts        *prometheus.CounterVec
	RouterDecisions     *prometheus.CounterVec
	RouterEstimatedCost *prometheus.HistogramVec
	ScorerDuration      prometheus.Histogram
	SelectorDuration    prometheus.Histogram
}

// New creates and registers all metrics against the default registerer.
func New(namespace string) *Collector {
	return NewWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics against a specific registry, for tests.
func NewWithRegistry(namespace string, reg prometheus.Registerer) *Collector {
	if namespace == "" {
		namespace = "prism"
	}
	return &Collector{
		BudgetTokensTracked: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_tokens_tracked_total",
			Help:      "Tokens tracked against a provider's daily budget.",
		}, []string{"provider", "model"}),
		BudgetRemaining: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "budget_remaining",
			Help:      "Remaining budget units for a provider, as of the last Track call.",
		}, []string{"provider"}),
		BudgetAlerts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_alerts_total",
			Help:      "Number of times a provider crossed the 90% daily-budget alert threshold.",
		}, []string{"provider"}),
		RouterDecisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "router_decisions_total",
			Help:      "Model Router decisions by ladder rung and chosen provider.",
		}, []string{"rung", "provider", "model"}),
		RouterEstimatedCost: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "router_estimated_cost_usd",
			Help:      "Estimated cost in USD of routed requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"provider", "model"}),
		ScorerDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scorer_duration_seconds",
			Help:      "Wall time spent scoring a batch of candidate chunks.",
			Buckets:   prometheus.DefBuckets,
		}),
		SelectorDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "selector_duration_seconds",
			Help:      "Wall time spent selecting a budget-respecting chunk subset.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects interpreter metrics.
type Metrics struct {
	Interpretations *prometheus.CounterVec
	RuleMatches     *prometheus.CounterVec
	Dispatches      *prometheus.CounterVec
	Duration        prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Interpretations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuevox_interpretations_total",
				Help: "Total number of interpreted utterances",
			},
			[]string{"success"},
		),
		RuleMatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuevox_rule_matches_total",
				Help: "Number of times a rule provided the performed action",
			},
			[]string{"rule", "name"},
		),
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuevox_dispatches_total",
				Help: "Commands sent to entities",
			},
			[]string{"result"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cuevox_interpretation_duration_seconds",
				Help:    "Duration of utterance interpretation including actions",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.Interpretations, m.RuleMatches, m.Dispatches, m.Duration)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRuleMatch: func(ctx context.Context, e *domain.RuleEvent) {
			m.RuleMatches.WithLabelValues(strconv.Itoa(e.Rule), e.RuleName).Inc()
		},
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.Dispatches.WithLabelValues(result).Inc()
		},
		OnInterpret: func(ctx context.Context, e *domain.InterpretEvent) {
			m.Interpretations.WithLabelValues(strconv.FormatBool(e.Annotation.Success)).Inc()
			m.Duration.Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

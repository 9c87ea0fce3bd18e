// Package metrics provides a Permit plugin exporting Prometheus metrics.
//
// Metrics:
//   - permit_generations_total: GenerateAbility runs by result
//   - permit_generation_duration_seconds: GenerateAbility duration
//   - permit_permissions_total: evaluated permissions by terminal state
//   - permit_condition_evaluations_total: condition handler results by ref and kind
//   - permit_condition_duration_seconds: condition handler duration by ref
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/permit/id"
	"github.com/xraph/permit/permission"
	"github.com/xraph/permit/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Plugin)(nil)
	_ plugin.AfterGenerate       = (*Plugin)(nil)
	_ plugin.PermissionEvaluated = (*Plugin)(nil)
	_ plugin.ConditionEvaluated  = (*Plugin)(nil)
)

// Config names the metrics.
type Config struct {
	Namespace string `json:"namespace" mapstructure:"namespace" yaml:"namespace"`
	Subsystem string `json:"subsystem" mapstructure:"subsystem" yaml:"subsystem"`
}

// DefaultConfig returns the "permit" namespace without subsystem.
func DefaultConfig() Config {
	return Config{Namespace: "permit"}
}

// Plugin records generation outcomes.
type Plugin struct {
	generationsTotal   *prometheus.CounterVec
	generationDuration prometheus.Histogram
	permissionsTotal   *prometheus.CounterVec
	conditionsTotal    *prometheus.CounterVec
	conditionDuration  *prometheus.HistogramVec
}

// New creates the plugin and registers its metrics with registry. A nil
// registry means prometheus.DefaultRegisterer.
func New(cfg Config, registry prometheus.Registerer) *Plugin {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	p := &Plugin{
		generationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "generations_total",
				Help:      "Total number of ability generations",
			},
			[]string{"result"},
		),
		generationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "generation_duration_seconds",
				Help:      "Duration of ability generation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to 2.6s
			},
		),
		permissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "permissions_total",
				Help:      "Total number of evaluated permissions by terminal state",
			},
			[]string{"state"},
		),
		conditionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "condition_evaluations_total",
				Help:      "Total number of condition handler results by kind",
			},
			[]string{"condition", "kind"},
		),
		conditionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "condition_duration_seconds",
				Help:      "Duration of condition handlers in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"condition"},
		),
	}

	registry.MustRegister(
		p.generationsTotal,
		p.generationDuration,
		p.permissionsTotal,
		p.conditionsTotal,
		p.conditionDuration,
	)
	return p
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return "metrics" }

// OnAfterGenerate implements plugin.AfterGenerate.
func (p *Plugin) OnAfterGenerate(_ context.Context, g plugin.Generation) error {
	result := "success"
	if g.Err != nil {
		result = "error"
	}
	p.generationsTotal.WithLabelValues(result).Inc()
	p.generationDuration.Observe(g.Duration.Seconds())
	return nil
}

// OnPermissionEvaluated implements plugin.PermissionEvaluated.
func (p *Plugin) OnPermissionEvaluated(_ context.Context, _ id.GenerationID, _ permission.Permission, state permission.State) error {
	p.permissionsTotal.WithLabelValues(string(state)).Inc()
	return nil
}

// OnConditionEvaluated implements plugin.ConditionEvaluated.
func (p *Plugin) OnConditionEvaluated(_ context.Context, r plugin.ConditionResult) error {
	p.conditionsTotal.WithLabelValues(r.Ref, resultKind(r.Result)).Inc()
	p.conditionDuration.WithLabelValues(r.Ref).Observe(r.Duration.Seconds())
	return nil
}

func resultKind(v any) string {
	switch b := v.(type) {
	case bool:
		if b {
			return "true"
		}
		return "false"
	case map[string]any:
		return "object"
	default:
		return "invalid"
	}
}

package extension

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/permit/condition"
	"github.com/xraph/permit/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewAppliesOptions(t *testing.T) {
	e := New(
		WithConfig(Config{CacheTTL: time.Minute, ConditionTimeout: time.Second}),
		WithDisableCache(),
		WithLogger(slog.Default()),
		WithPlugin(metrics.New(metrics.DefaultConfig(), prometheus.NewRegistry())),
		WithConditions(condition.Condition{
			Name:    "is-creator",
			Handler: func(context.Context, condition.HandlerContext) (any, error) { return true, nil },
		}),
	)

	if e.Name() != ExtensionName || e.Version() == "" || e.Description() == "" {
		t.Fatal("unexpected extension metadata")
	}
	if !e.config.DisableCache || e.config.ConditionTimeout != time.Second {
		t.Fatalf("unexpected config: %+v", e.config)
	}
	if len(e.plugins) != 1 || len(e.conditions) != 1 {
		t.Fatal("expected one plugin and one condition")
	}
	if e.Engine() != nil {
		t.Fatal("engine must not exist before Register")
	}
	if err := e.Health(context.Background()); err == nil {
		t.Fatal("expected health error before Register")
	}
	if err := e.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestEngineOptionsRejectNegativeLimits(t *testing.T) {
	e := New(WithConfig(Config{MaxConditionConcurrency: -1}))
	e.registry = condition.NewRegistry()
	if _, err := e.engineOptions(slog.Default()); err == nil {
		t.Fatal("expected error for negative concurrency")
	}
}

func TestEngineOptionsIncludeCache(t *testing.T) {
	e := New()
	e.registry = condition.NewRegistry()
	withCache, err := e.engineOptions(slog.Default())
	if err != nil {
		t.Fatal(err)
	}

	e = New(WithDisableCache())
	e.registry = condition.NewRegistry()
	withoutCache, err := e.engineOptions(slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	if len(withCache) != len(withoutCache)+1 {
		t.Fatalf("expected one extra option for the cache, got %d vs %d", len(withCache), len(withoutCache))
	}
}

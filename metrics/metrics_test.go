package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/xraph/permit"
	"github.com/xraph/permit/condition"
	"github.com/xraph/permit/id"
	"github.com/xraph/permit/permission"
	"github.com/xraph/permit/plugin"
)

func TestPluginRecordsEvents(t *testing.T) {
	ctx := context.Background()
	p := New(DefaultConfig(), prometheus.NewRegistry())
	gen := id.NewGenerationID()

	_ = p.OnPermissionEvaluated(ctx, gen, permission.New("read", "article"), permission.StateRegistered)
	_ = p.OnPermissionEvaluated(ctx, gen, permission.New("read", "secret"), permission.StateBailedPreFormat)
	_ = p.OnConditionEvaluated(ctx, plugin.ConditionResult{Generation: gen, Ref: "is-owner", Result: map[string]any{"a": 1}, Duration: time.Millisecond})
	_ = p.OnConditionEvaluated(ctx, plugin.ConditionResult{Generation: gen, Ref: "is-owner", Result: "nope"})
	_ = p.OnAfterGenerate(ctx, plugin.Generation{ID: gen, Duration: time.Millisecond})
	_ = p.OnAfterGenerate(ctx, plugin.Generation{ID: gen, Err: errors.New("boom")})

	if got := testutil.ToFloat64(p.permissionsTotal.WithLabelValues("registered")); got != 1 {
		t.Errorf("Expected registered=1, got %f", got)
	}
	if got := testutil.ToFloat64(p.permissionsTotal.WithLabelValues("bailed_pre_format")); got != 1 {
		t.Errorf("Expected bailed_pre_format=1, got %f", got)
	}
	if got := testutil.ToFloat64(p.conditionsTotal.WithLabelValues("is-owner", "object")); got != 1 {
		t.Errorf("Expected object=1, got %f", got)
	}
	if got := testutil.ToFloat64(p.conditionsTotal.WithLabelValues("is-owner", "invalid")); got != 1 {
		t.Errorf("Expected invalid=1, got %f", got)
	}
	if got := testutil.ToFloat64(p.generationsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("Expected success=1, got %f", got)
	}
	if got := testutil.ToFloat64(p.generationsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("Expected error=1, got %f", got)
	}
}

func TestPluginWithEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := New(Config{Namespace: "test"}, reg)

	conds := condition.NewRegistry()
	_ = conds.Register(condition.Condition{
		Name:    "is-owner",
		Handler: func(context.Context, condition.HandlerContext) (any, error) { return true, nil },
	})
	eng, err := permit.NewEngine(permit.WithConditionProvider(conds), permit.WithPlugin(p))
	if err != nil {
		t.Fatal(err)
	}

	_, err = eng.GenerateAbility(context.Background(), []permit.Permission{
		permission.New("read", "article"),
		permission.New("update", "article", permission.WithConditions("is-owner")),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(p.permissionsTotal.WithLabelValues("skipped_all_true")); got != 1 {
		t.Errorf("Expected skipped_all_true=1, got %f", got)
	}
	if got := testutil.ToFloat64(p.conditionsTotal.WithLabelValues("is-owner", "true")); got != 1 {
		t.Errorf("Expected true=1, got %f", got)
	}
	if n := testutil.CollectAndCount(p.generationDuration); n != 1 {
		t.Errorf("Expected 1 duration series, got %d", n)
	}
}

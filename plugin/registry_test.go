package plugin

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/xraph/permit/id"
	"github.com/xraph/permit/permission"
)

// testPlugin implements Plugin + PermissionEvaluated + AfterGenerate.
type testPlugin struct {
	evaluated []permission.State
	generated []Generation
}

func (t *testPlugin) Name() string { return "test-plugin" }

func (t *testPlugin) OnPermissionEvaluated(_ context.Context, _ id.GenerationID, p permission.Permission, s permission.State) error {
	p.Action = "mutated"
	t.evaluated = append(t.evaluated, s)
	return nil
}

func (t *testPlugin) OnAfterGenerate(_ context.Context, g Generation) error {
	t.generated = append(t.generated, g)
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

// failingPlugin returns an error from every hook it implements.
type failingPlugin struct{}

func (f *failingPlugin) Name() string { return "failing" }

func (f *failingPlugin) OnBeforeGenerate(context.Context, id.GenerationID, int) error {
	return errors.New("boom")
}

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(tp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	gen := id.NewGenerationID()
	p := permission.New("read", "article")

	reg.EmitPermissionEvaluated(ctx, gen, p, permission.StateRegistered)
	if len(tp.evaluated) != 1 || tp.evaluated[0] != permission.StateRegistered {
		t.Fatalf("OnPermissionEvaluated not called as expected: %v", tp.evaluated)
	}
	if p.Action != "read" {
		t.Fatal("plugin mutated the caller's permission")
	}

	reg.EmitAfterGenerate(ctx, Generation{ID: gen, Permissions: 1, Registered: 1})
	if len(tp.generated) != 1 || tp.generated[0].Registered != 1 {
		t.Fatal("OnAfterGenerate was not called")
	}

	// Should not panic on hooks with no listeners.
	reg.EmitBeforeGenerate(ctx, gen, 1)
	reg.EmitConditionEvaluated(ctx, ConditionResult{Generation: gen, Ref: "is-creator"})
	reg.EmitShutdown(ctx)
}

func TestRegistryLogsHookErrors(t *testing.T) {
	var buf bytes.Buffer
	reg := NewRegistry(slog.New(slog.NewTextHandler(&buf, nil)))
	reg.Register(&failingPlugin{})

	reg.EmitBeforeGenerate(context.Background(), id.NewGenerationID(), 3)

	out := buf.String()
	if !strings.Contains(out, "plugin hook error") || !strings.Contains(out, "plugin=failing") {
		t.Fatalf("expected hook error to be logged, got %q", out)
	}
}

// Package plugin defines the plugin system for Permit.
// Plugins are notified of generation lifecycle events (generation started,
// permission evaluated, condition evaluated, etc.) and can react: logging,
// metrics, tracing, etc. They observe only; they cannot change an outcome.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/permit/id"
	"github.com/xraph/permit/permission"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// Generation summarizes one GenerateAbility run.
type Generation struct {
	ID          id.GenerationID `json:"id"`
	Permissions int             `json:"permissions"`
	Registered  int             `json:"registered"`
	Duration    time.Duration   `json:"duration"`
	Err         error           `json:"-"`
}

// ConditionResult reports one condition handler invocation.
type ConditionResult struct {
	Generation id.GenerationID `json:"generation"`
	Ref        string          `json:"ref"`
	Result     any             `json:"result"`
	Duration   time.Duration   `json:"duration"`
}

// ──────────────────────────────────────────────────
// Generation lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeGenerate is called before a permission set is evaluated.
type BeforeGenerate interface {
	OnBeforeGenerate(ctx context.Context, gen id.GenerationID, permissions int) error
}

// AfterGenerate is called once a generation run finishes, successfully or not.
type AfterGenerate interface {
	OnAfterGenerate(ctx context.Context, g Generation) error
}

// ──────────────────────────────────────────────────
// Evaluation hooks
// ──────────────────────────────────────────────────

// PermissionEvaluated is called when a permission reaches a terminal state.
// p is a snapshot; mutating it has no effect.
type PermissionEvaluated interface {
	OnPermissionEvaluated(ctx context.Context, gen id.GenerationID, p permission.Permission, state permission.State) error
}

// ConditionEvaluated is called for each condition handler that returned.
type ConditionEvaluated interface {
	OnConditionEvaluated(ctx context.Context, r ConditionResult) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}

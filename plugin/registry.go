package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/permit/id"
	"github.com/xraph/permit/permission"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeGenerateEntry struct {
	name string
	hook BeforeGenerate
}
type afterGenerateEntry struct {
	name string
	hook AfterGenerate
}
type permissionEvaluatedEntry struct {
	name string
	hook PermissionEvaluated
}
type conditionEvaluatedEntry struct {
	name string
	hook ConditionEvaluated
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
//
// Registration is setup-time; Register must not race with Emit calls.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeGenerate      []beforeGenerateEntry
	afterGenerate       []afterGenerateEntry
	permissionEvaluated []permissionEvaluatedEntry
	conditionEvaluated  []conditionEvaluatedEntry
	shutdown            []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// SetLogger replaces the logger used for hook errors.
func (r *Registry) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeGenerate); ok {
		r.beforeGenerate = append(r.beforeGenerate, beforeGenerateEntry{name, h})
	}
	if h, ok := p.(AfterGenerate); ok {
		r.afterGenerate = append(r.afterGenerate, afterGenerateEntry{name, h})
	}
	if h, ok := p.(PermissionEvaluated); ok {
		r.permissionEvaluated = append(r.permissionEvaluated, permissionEvaluatedEntry{name, h})
	}
	if h, ok := p.(ConditionEvaluated); ok {
		r.conditionEvaluated = append(r.conditionEvaluated, conditionEvaluatedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Generation event emitters
// ──────────────────────────────────────────────────

// EmitBeforeGenerate notifies all plugins that implement BeforeGenerate.
func (r *Registry) EmitBeforeGenerate(ctx context.Context, gen id.GenerationID, permissions int) {
	for _, e := range r.beforeGenerate {
		if err := e.hook.OnBeforeGenerate(ctx, gen, permissions); err != nil {
			r.logHookError("OnBeforeGenerate", e.name, err)
		}
	}
}

// EmitAfterGenerate notifies all plugins that implement AfterGenerate.
func (r *Registry) EmitAfterGenerate(ctx context.Context, g Generation) {
	for _, e := range r.afterGenerate {
		if err := e.hook.OnAfterGenerate(ctx, g); err != nil {
			r.logHookError("OnAfterGenerate", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Evaluation event emitters
// ──────────────────────────────────────────────────

// EmitPermissionEvaluated notifies all plugins that implement PermissionEvaluated.
func (r *Registry) EmitPermissionEvaluated(ctx context.Context, gen id.GenerationID, p permission.Permission, state permission.State) {
	for _, e := range r.permissionEvaluated {
		if err := e.hook.OnPermissionEvaluated(ctx, gen, p.Clone(), state); err != nil {
			r.logHookError("OnPermissionEvaluated", e.name, err)
		}
	}
}

// EmitConditionEvaluated notifies all plugins that implement ConditionEvaluated.
func (r *Registry) EmitConditionEvaluated(ctx context.Context, res ConditionResult) {
	for _, e := range r.conditionEvaluated {
		if err := e.hook.OnConditionEvaluated(ctx, res); err != nil {
			r.logHookError("OnConditionEvaluated", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are logged and never propagated.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}

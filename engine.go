package permit

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/xraph/permit/ability"
	"github.com/xraph/permit/condition"
	"github.com/xraph/permit/id"
	"github.com/xraph/permit/permission"
	"github.com/xraph/permit/plugin"
)

// Engine turns permission sets into abilities. It owns the hooks, resolves
// conditions through the provider and fires plugin events. An Engine is
// safe for concurrent use once its hooks are registered.
type Engine struct {
	hooks      *Hooks
	provider   condition.Provider
	resolver   *condition.Resolver
	newBuilder AbilityBuilderFactory
	cache      Cache
	plugins    *plugin.Registry
	logger     *slog.Logger
	config     Config
}

// NewEngine creates a new Permit engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		hooks:      newHooks(),
		newBuilder: ability.NewBuilder,
		logger:     slog.Default(),
		config:     DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.provider == nil {
		return nil, ErrConditionProviderRequired
	}
	if e.newBuilder == nil {
		return nil, ErrAbilityBuilderRequired
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.plugins == nil {
		e.plugins = plugin.NewRegistry(e.logger)
	}
	e.plugins.SetLogger(e.logger)

	e.resolver = condition.NewResolver(e.provider,
		condition.WithTimeout(e.config.ConditionTimeout),
		condition.WithConcurrency(e.config.MaxConditionConcurrency),
	)
	return e, nil
}

// Conditions returns the condition provider.
func (e *Engine) Conditions() condition.Provider { return e.provider }

// Plugins returns the plugin registry.
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop notifies plugins of shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	e.plugins.EmitShutdown(ctx)
	return nil
}

// GenerateAbility evaluates perms one after another and builds the
// resulting ability. opts are handed to every hook and condition handler.
//
// Any handler error aborts the whole run and is returned unchanged; the
// partial builder is discarded.
func (e *Engine) GenerateAbility(ctx context.Context, perms []Permission, opts map[string]any) (Checker, error) {
	run := &generation{
		id:      id.NewGenerationID(),
		builder: e.newBuilder(),
		options: maps.Clone(opts),
	}
	if run.options == nil {
		run.options = map[string]any{}
	}
	if run.builder == nil {
		return nil, ErrAbilityBuilderRequired
	}

	start := time.Now()
	e.plugins.EmitBeforeGenerate(ctx, run.id, len(perms))

	checker, err := e.generate(ctx, run, perms)

	e.plugins.EmitAfterGenerate(ctx, plugin.Generation{
		ID:          run.id,
		Permissions: len(perms),
		Registered:  run.registered,
		Duration:    time.Since(start),
		Err:         err,
	})
	if err != nil {
		return nil, err
	}
	return checker, nil
}

func (e *Engine) generate(ctx context.Context, run *generation, perms []Permission) (Checker, error) {
	for _, p := range perms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p = permission.Sanitize(p)
		if err := p.Validate(); err != nil {
			return nil, err
		}

		state, err := e.evaluate(ctx, run, p)
		if err != nil {
			return nil, err
		}
		if state.Registered() {
			run.registered++
		}

		e.logger.Debug("permission evaluated",
			slog.String("generation", run.id.String()),
			slog.String("action", p.Action),
			slog.String("subject", p.Subject),
			slog.String("state", string(state)),
		)
		e.plugins.EmitPermissionEvaluated(ctx, run.id, p, state)
	}

	checker, err := run.builder.Build()
	if err != nil {
		return nil, fmt.Errorf("permit: build ability: %w", err)
	}
	return checker, nil
}

// AbilityFor returns the cached ability for key, generating and caching it
// on a miss. Keys are scoped to the tenant found in ctx. Without a cache
// it is the same as GenerateAbility.
func (e *Engine) AbilityFor(ctx context.Context, key string, perms []Permission, opts map[string]any) (Checker, error) {
	if e.cache == nil {
		return e.GenerateAbility(ctx, perms, opts)
	}
	ck := scopeFromContext(ctx).key(key)
	if a, ok := e.cache.Get(ctx, ck); ok {
		return a, nil
	}
	a, err := e.GenerateAbility(ctx, perms, opts)
	if err != nil {
		return nil, err
	}
	e.cache.Set(ctx, ck, a)
	return a, nil
}

// InvalidateAbility drops the cached ability for key in the tenant of ctx.
func (e *Engine) InvalidateAbility(ctx context.Context, key string) {
	if e.cache != nil {
		e.cache.Invalidate(ctx, scopeFromContext(ctx).key(key))
	}
}

// InvalidateTenant drops every cached ability of the tenant in ctx.
func (e *Engine) InvalidateTenant(ctx context.Context) {
	if e.cache != nil {
		e.cache.InvalidatePrefix(ctx, scopeFromContext(ctx).prefix())
	}
}

// Package extension provides a Forge extension entry point for Permit.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/permit"
	"github.com/xraph/permit/cache"
	"github.com/xraph/permit/condition"
	"github.com/xraph/permit/plugin"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "permit"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Hook-driven permission to ability compiler"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Permit as a Forge extension.
type Extension struct {
	config     Config
	eng        *permit.Engine
	registry   *condition.Registry
	conditions []condition.Condition
	logger     *slog.Logger
	permitOpts []permit.Option
	plugins    []plugin.Plugin
}

// New creates a Permit Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{config: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying Permit engine.
func (e *Extension) Engine() *permit.Engine { return e.eng }

// Conditions returns the extension's condition registry. It is the
// engine's provider unless one was found in the DI container.
func (e *Extension) Conditions() *condition.Registry { return e.registry }

// Register implements [forge.Extension]. It initializes the engine and
// registers it, with the condition registry, in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	if err := vessel.Provide(fapp.Container(), func() (*permit.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("permit: register engine in container: %w", err)
	}
	if err := vessel.Provide(fapp.Container(), func() (*condition.Registry, error) {
		return e.registry, nil
	}); err != nil {
		return fmt.Errorf("permit: register conditions in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	e.registry = condition.NewRegistry()
	if err := e.registry.RegisterMany(e.conditions...); err != nil {
		return fmt.Errorf("permit: register conditions: %w", err)
	}

	opts, err := e.engineOptions(logger)
	if err != nil {
		return err
	}

	// Prefer a provider from the DI container over the local registry.
	if p, err := forge.Inject[condition.Provider](fapp.Container()); err == nil && p != nil {
		opts = append(opts, permit.WithConditionProvider(p))
	}

	// Append user-provided options (may override provider and cache).
	opts = append(opts, e.permitOpts...)

	eng, err := permit.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("permit: create engine: %w", err)
	}
	e.eng = eng
	return nil
}

// engineOptions builds the engine options derived from the config.
func (e *Extension) engineOptions(logger *slog.Logger) ([]permit.Option, error) {
	if e.config.ConditionTimeout < 0 || e.config.MaxConditionConcurrency < 0 {
		return nil, errors.New("permit: condition timeout and concurrency must not be negative")
	}

	opts := make([]permit.Option, 0, len(e.plugins)+4)
	opts = append(opts,
		permit.WithLogger(logger),
		permit.WithConditionProvider(e.registry),
		permit.WithConfig(permit.Config{
			ConditionTimeout:        e.config.ConditionTimeout,
			MaxConditionConcurrency: e.config.MaxConditionConcurrency,
		}),
	)

	if !e.config.DisableCache {
		var cacheOpts []cache.MemoryOption
		if e.config.CacheTTL > 0 {
			cacheOpts = append(cacheOpts, cache.WithTTL(e.config.CacheTTL))
		}
		if e.config.CacheMaxSize > 0 {
			cacheOpts = append(cacheOpts, cache.WithMaxSize(e.config.CacheMaxSize))
		}
		opts = append(opts, permit.WithCache(cache.NewMemory(cacheOpts...)))
	}

	// Register extension hooks.
	for _, x := range e.plugins {
		opts = append(opts, permit.WithPlugin(x))
	}
	return opts, nil
}

// Start begins the permit engine.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("permit: extension not initialized")
	}
	return e.eng.Start(ctx)
}

// Stop gracefully shuts down the permit engine.
func (e *Extension) Stop(ctx context.Context) error {
	if e.eng == nil {
		return nil
	}
	return e.eng.Stop(ctx)
}

// Health implements [forge.Extension].
func (e *Extension) Health(_ context.Context) error {
	if e.eng == nil {
		return errors.New("permit: extension not initialized")
	}
	if e.eng.Conditions() == nil {
		return errors.New("permit: no condition provider configured")
	}
	return nil
}

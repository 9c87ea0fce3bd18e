package permit

import (
	"log/slog"

	"github.com/xraph/permit/condition"
	"github.com/xraph/permit/plugin"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithConditionProvider sets where condition references are looked up.
func WithConditionProvider(p condition.Provider) Option {
	return func(e *Engine) { e.provider = p }
}

// WithAbilityBuilderFactory replaces the default ability builder.
func WithAbilityBuilderFactory(f AbilityBuilderFactory) Option {
	return func(e *Engine) { e.newBuilder = f }
}

// WithCache sets the ability cache used by AbilityFor.
func WithCache(c Cache) Option { return func(e *Engine) { e.cache = c } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithPlugin registers a plugin with the engine.
func WithPlugin(x plugin.Plugin) Option {
	return func(e *Engine) {
		if e.plugins == nil {
			e.plugins = plugin.NewRegistry(e.logger)
		}
		e.plugins.Register(x)
	}
}

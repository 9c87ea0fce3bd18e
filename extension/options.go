package extension

import (
	"log/slog"

	"github.com/xraph/permit"
	"github.com/xraph/permit/condition"
	"github.com/xraph/permit/plugin"
)

// ExtOption configures the Permit Forge extension.
type ExtOption func(*Extension)

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithConditions registers conditions in the extension's condition registry.
func WithConditions(cs ...condition.Condition) ExtOption {
	return func(e *Extension) {
		e.conditions = append(e.conditions, cs...)
	}
}

// WithEngineOptions adds engine-level options.
func WithEngineOptions(opts ...permit.Option) ExtOption {
	return func(e *Extension) {
		e.permitOpts = append(e.permitOpts, opts...)
	}
}

// WithPlugin registers a lifecycle hook plugin.
func WithPlugin(x plugin.Plugin) ExtOption {
	return func(e *Extension) {
		e.plugins = append(e.plugins, x)
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableCache disables ability caching.
func WithDisableCache() ExtOption {
	return func(e *Extension) {
		e.config.DisableCache = true
	}
}

package extension

import "time"

// Config holds the Permit extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.permit" or "permit" keys).
type Config struct {
	// DisableCache turns off ability caching for Engine.AbilityFor.
	DisableCache bool `json:"disable_cache" mapstructure:"disable_cache" yaml:"disable_cache"`

	// CacheTTL is how long a generated ability stays cached (default: 5m).
	CacheTTL time.Duration `json:"cache_ttl" mapstructure:"cache_ttl" yaml:"cache_ttl"`

	// CacheMaxSize bounds the number of cached abilities (default: 10000).
	CacheMaxSize int `json:"cache_max_size" mapstructure:"cache_max_size" yaml:"cache_max_size"`

	// ConditionTimeout bounds each condition handler call. Zero disables it.
	ConditionTimeout time.Duration `json:"condition_timeout" mapstructure:"condition_timeout" yaml:"condition_timeout"`

	// MaxConditionConcurrency caps concurrent condition handlers per
	// permission. Zero means no cap.
	MaxConditionConcurrency int `json:"max_condition_concurrency" mapstructure:"max_condition_concurrency" yaml:"max_condition_concurrency"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CacheTTL:     5 * time.Minute,
		CacheMaxSize: 10000,
	}
}

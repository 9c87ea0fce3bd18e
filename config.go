package permit

import "time"

// Config holds configuration for the Permit engine.
type Config struct {
	// ConditionTimeout bounds each condition handler call.
	// Zero means no timeout.
	ConditionTimeout time.Duration `json:"condition_timeout,omitempty"`

	// MaxConditionConcurrency caps how many condition handlers of one
	// permission run at once. Zero means no cap.
	MaxConditionConcurrency int `json:"max_condition_concurrency,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}

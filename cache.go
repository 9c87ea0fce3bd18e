package permit

import "context"

// Cache stores generated abilities by key.
type Cache interface {
	// Get returns a cached ability, if available.
	Get(ctx context.Context, key string) (Checker, bool)

	// Set stores an ability in the cache.
	Set(ctx context.Context, key string, a Checker)

	// Invalidate removes the ability stored under key.
	Invalidate(ctx context.Context, key string)

	// InvalidatePrefix removes every ability whose key starts with prefix.
	InvalidatePrefix(ctx context.Context, prefix string)
}

package permit

import "context"

type tenantKey struct{}

// WithTenant scopes cached abilities to appID and tenantID when the
// engine runs without Forge. A Forge scope in ctx takes precedence.
func WithTenant(ctx context.Context, appID, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantScope{appID: appID, tenantID: tenantID})
}

func tenantFromContext(ctx context.Context) tenantScope {
	s, _ := ctx.Value(tenantKey{}).(tenantScope)
	return s
}

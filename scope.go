package permit

import (
	"context"
	"net/url"

	"github.com/xraph/forge"
)

type tenantScope struct {
	appID    string
	tenantID string
}

// scopeFromContext prefers the Forge scope and falls back to WithTenant.
func scopeFromContext(ctx context.Context) tenantScope {
	if s, ok := forge.ScopeFrom(ctx); ok {
		return tenantScope{appID: s.AppID(), tenantID: s.OrgID()}
	}
	return tenantFromContext(ctx)
}

// prefix is the cache key prefix shared by every ability of the scope.
// Components are escaped so ':' inside an ID cannot forge another prefix.
func (s tenantScope) prefix() string {
	return url.QueryEscape(s.appID) + ":" + url.QueryEscape(s.tenantID) + ":"
}

func (s tenantScope) key(k string) string { return s.prefix() + k }

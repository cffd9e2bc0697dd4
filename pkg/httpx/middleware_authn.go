package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/devcrm/auth-service/pkg/jwtx"
	"github.com/devcrm/auth-service/pkg/slogx"
)

// AccessVerifier verifies a raw access token and returns its claims.
type AccessVerifier interface {
	VerifyAccess(raw string) (*jwtx.Claims, error)
}

// AuthnMiddleware guards endpoints that require a valid access token.
func AuthnMiddleware(v AccessVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token", nil)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.VerifyAccess(raw)
			if err != nil {
				log.Warn("access token rejected", "err", err)
				WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, "invalid or expired token", nil)
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c *jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.UserID())
	ctx = context.WithValue(ctx, CtxKeyOrgID, c.OrgID)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

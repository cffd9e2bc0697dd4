package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyOrgID  ctxKey = "org_id"
	CtxKeyClaims ctxKey = "claims"
)

// UserIDFromContext returns the authenticated user id set by AuthnMiddleware,
// or "" for unauthenticated requests.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyUserID).(string)
	return id
}

// OrgIDFromContext returns the active organization id from the access token.
func OrgIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyOrgID).(string)
	return id
}

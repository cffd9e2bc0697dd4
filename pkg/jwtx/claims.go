package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators carried in the "typ" claim. Access and refresh
// tokens are additionally signed with different secrets, so a forged "typ"
// alone can never cross the boundary between them.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	// One-time-purpose token types. The backing Redis record is deleted on
	// first successful consumption, so these are single-use regardless of
	// their cryptographic lifetime.
	PurposeEmailVerify = "email-verify"
	PurposeResetPwd    = "reset-pwd"
)

// Claims are the token claims used across the service. The registered
// claims carry sub/iss/aud/exp/jti; everything else is additive so older
// tokens keep parsing.
type Claims struct {
	jwt.RegisteredClaims

	// Type discriminates access, refresh and one-time-purpose tokens.
	Type string `json:"typ"`

	// OrgID scopes an access token to an organization. Optional; the
	// X-Org-Id header is the fallback for org selection.
	OrgID string `json:"org_id,omitempty"`

	// SID is the refresh session identifier. Refresh tokens only.
	SID string `json:"sid,omitempty"`
}

// UserID returns the subject claim under its domain name.
func (c *Claims) UserID() string { return c.Subject }

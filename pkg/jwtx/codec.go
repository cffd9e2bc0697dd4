package jwtx

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired reports a token whose exp (or nbf) check failed.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrInvalidToken covers everything else: bad signature, wrong
	// issuer/audience, wrong typ, malformed input. Callers treat both
	// errors as Unauthorized; the split only matters for logging.
	ErrInvalidToken = errors.New("jwtx: invalid token")
)

// Config holds the signing material and claim expectations for a Codec.
type Config struct {
	// AccessSecret signs access tokens and one-time-purpose tokens.
	AccessSecret []byte

	// RefreshSecret signs refresh tokens. Must differ from AccessSecret so
	// the two token families are not interchangeable.
	RefreshSecret []byte

	Issuer   string
	Audience string

	// Default TTLs used when a Sign call passes a zero ttl.
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration
}

// Codec signs and verifies the service's HS256 tokens. Construct once at
// bootstrap and share; it is immutable and safe for concurrent use.
type Codec struct {
	config Config
}

// NewCodec validates the configuration and returns a ready Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("jwtx: both signing secrets are required")
	}
	if len(cfg.AccessSecret) == len(cfg.RefreshSecret) &&
		subtle.ConstantTimeCompare(cfg.AccessSecret, cfg.RefreshSecret) == 1 {
		return nil, errors.New("jwtx: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("jwtx: token TTLs must be positive")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("jwtx: leeway out of range")
	}
	return &Codec{config: cfg}, nil
}

// SignAccess mints an access token for userID. orgID may be empty when the
// user has no organization scope yet. A zero ttl uses the configured default.
func (c *Codec) SignAccess(userID, orgID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.config.AccessTTL
	}
	claims := c.newClaims(userID, TypeAccess, ttl)
	claims.OrgID = orgID
	return c.sign(claims, c.config.AccessSecret)
}

// VerifyAccess validates signature, issuer, audience, expiry and typ.
func (c *Codec) VerifyAccess(token string) (*Claims, error) {
	return c.verify(token, TypeAccess, c.config.AccessSecret)
}

// SignRefresh mints a refresh token bound to a session id. The token is only
// redeemable while the session record it names is still live.
func (c *Codec) SignRefresh(userID, sessionID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.config.RefreshTTL
	}
	claims := c.newClaims(userID, TypeRefresh, ttl)
	claims.SID = sessionID
	return c.sign(claims, c.config.RefreshSecret)
}

// VerifyRefresh validates a refresh token and requires a non-empty sid.
func (c *Codec) VerifyRefresh(token string) (*Claims, error) {
	claims, err := c.verify(token, TypeRefresh, c.config.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.SID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SignPurpose mints a one-time-purpose token (email verification, password
// reset). The jti is supplied by the caller because the one-time store keys
// its Redis record on it.
func (c *Codec) SignPurpose(userID, purpose, jti string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("jwtx: purpose token requires explicit ttl")
	}
	claims := c.newClaims(userID, purpose, ttl)
	claims.ID = jti
	return c.sign(claims, c.config.AccessSecret)
}

// VerifyPurpose validates a one-time-purpose token against the expected
// purpose and requires a jti. It says nothing about whether the token has
// already been consumed; that is the one-time store's job.
func (c *Codec) VerifyPurpose(token, purpose string) (*Claims, error) {
	claims, err := c.verify(token, purpose, c.config.AccessSecret)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) newClaims(userID, typ string, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.config.Issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{c.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Type: typ,
	}
}

func (c *Codec) sign(claims Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (c *Codec) verify(token, wantType string, secret []byte) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.config.Issuer),
		jwt.WithAudience(c.config.Audience),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

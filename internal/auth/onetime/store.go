package onetime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devcrm/auth-service/pkg/jwtx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrTokenNotFound is returned when a token was never issued, has
	// expired, or was already consumed.
	ErrTokenNotFound = errors.New("one-time token not found")

	// ErrRedisUnavailable wraps transport-level Redis failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Default lifetimes for the two token purposes.
const (
	DefaultEmailVerifyTTL = 24 * time.Hour
	DefaultResetPwdTTL    = time.Hour
)

// consumeScript reads and deletes the token key in one step so a token can
// only ever be consumed once, even under concurrent requests.
const consumeScript = `
local v = redis.call("GET", KEYS[1])
if not v then
  return false
end
redis.call("DEL", KEYS[1])
return v
`

var consumeLua = redis.NewScript(consumeScript)

// Store issues and consumes single-use tokens for email verification and
// password resets. The token itself is a purpose-scoped JWT; Redis holds a
// matching key per jti so consumption can be made atomic and signed tokens
// die the moment they are used.
type Store struct {
	Redis redis.UniversalClient
	Codec *jwtx.Codec

	EmailVerifyTTL time.Duration
	ResetPwdTTL    time.Duration
}

func (s *Store) params(purpose string) (prefix string, ttl time.Duration, err error) {
	switch purpose {
	case jwtx.PurposeEmailVerify:
		return "ev:", s.EmailVerifyTTL, nil
	case jwtx.PurposeResetPwd:
		return "rp:", s.ResetPwdTTL, nil
	default:
		return "", 0, fmt.Errorf("unknown token purpose %q", purpose)
	}
}

// Create mints a signed one-time token for the user and registers its jti.
func (s *Store) Create(ctx context.Context, userID, purpose string) (string, error) {
	prefix, ttl, err := s.params(purpose)
	if err != nil {
		return "", err
	}

	jti := uuid.NewString()
	token, err := s.Codec.SignPurpose(userID, purpose, jti, ttl)
	if err != nil {
		return "", err
	}

	if err := s.Redis.Set(ctx, prefix+jti, userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return token, nil
}

// Consume verifies the token signature and purpose, then atomically removes
// its jti from Redis. Returns the owning user id. A second Consume of the
// same token returns ErrTokenNotFound.
func (s *Store) Consume(ctx context.Context, token, purpose string) (string, error) {
	claims, err := s.Codec.VerifyPurpose(token, purpose)
	if err != nil {
		return "", err
	}

	prefix, _, err := s.params(purpose)
	if err != nil {
		return "", err
	}

	stored, err := consumeLua.Run(ctx, s.Redis, []string{prefix + claims.ID}).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if stored != claims.UserID() {
		return "", ErrTokenNotFound
	}
	return stored, nil
}

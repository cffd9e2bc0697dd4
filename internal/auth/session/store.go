package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devcrm/auth-service/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrInvalidSession is returned when a session does not exist, has
	// expired, or belongs to a different user. Callers treat all three the
	// same so a stolen refresh token leaks nothing about why it failed.
	ErrInvalidSession = errors.New("invalid session")

	// ErrRedisUnavailable wraps transport-level Redis failures. Session
	// checks fail closed on it.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const keyPrefix = "rt:"

// rotateScript atomically swaps an old session for a new one. The compare,
// delete and insert happen in one script so two concurrent refreshes with the
// same token can never both succeed.
const rotateScript = `
local current = redis.call("GET", KEYS[1])
if not current or current ~= ARGV[1] then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("SET", KEYS[2], ARGV[1], "PX", ARGV[2])
return 1
`

var rotateLua = redis.NewScript(rotateScript)

// Store tracks refresh sessions in Redis. Each session is a single key
// rt:<sid> holding the owning user id, with the refresh TTL as expiry. A
// refresh token is only usable while its session key exists.
type Store struct {
	Redis redis.UniversalClient
	TTL   time.Duration
}

func (s *Store) key(sid string) string { return keyPrefix + sid }

// Create mints a new session for the user and returns its id.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	sid, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}

	if err := s.Redis.Set(ctx, s.key(sid), userID, s.TTL).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return sid, nil
}

// Rotate replaces oldSID with a fresh session id for the same user. It is a
// single atomic compare-and-swap: when two requests race on the same token,
// exactly one wins and the loser gets ErrInvalidSession. A rotated-away or
// revoked session also fails here, which is how refresh-token reuse surfaces.
func (s *Store) Rotate(ctx context.Context, oldSID, userID string) (string, error) {
	newSID, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}

	res, err := rotateLua.Run(ctx, s.Redis,
		[]string{s.key(oldSID), s.key(newSID)},
		userID, s.TTL.Milliseconds(),
	).Int64()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if res != 1 {
		return "", ErrInvalidSession
	}
	return newSID, nil
}

// Revoke deletes a session. Revoking an unknown session is not an error,
// logout is idempotent.
func (s *Store) Revoke(ctx context.Context, sid string) error {
	if err := s.Redis.Del(ctx, s.key(sid)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// AssertValid checks that the session exists and belongs to userID.
func (s *Store) AssertValid(ctx context.Context, sid, userID string) error {
	owner, err := s.Redis.Get(ctx, s.key(sid)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidSession
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if owner != userID {
		return ErrInvalidSession
	}
	return nil
}

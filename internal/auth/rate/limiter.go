package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport-level Redis failures. Rate checks
// fail closed on it.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Rule is a fixed-window limit: at most Limit hits per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Per-flow limits. Each flow is checked against the caller's IP first and
// the target email second, so an attacker spraying one mailbox from many
// addresses still trips the email rule.
var (
	LoginPerIP     = Rule{Limit: 10, Window: 10 * time.Minute}
	LoginPerEmail  = Rule{Limit: 5, Window: 10 * time.Minute}
	ResendPerIP    = Rule{Limit: 20, Window: time.Hour}
	ResendPerEmail = Rule{Limit: 3, Window: 15 * time.Minute}
	ForgotPerIP    = Rule{Limit: 50, Window: 24 * time.Hour}
	ForgotPerEmail = Rule{Limit: 5, Window: 30 * time.Minute}
)

// Result reports the outcome of a single Hit.
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
}

// hitScript increments the window counter and arms its expiry in the same
// script. A plain INCR-then-EXPIRE pair can leak a counter without a TTL if
// the client dies between the two commands, leaving the key stuck forever.
const hitScript = `
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`

var hitLua = redis.NewScript(hitScript)

// Limiter is a Redis-backed fixed-window rate limiter shared by all
// instances of the service.
type Limiter struct {
	Redis redis.UniversalClient
}

// Hit records one attempt for the given scope and identifier and reports
// whether it is within the rule. Counting before checking means a denied
// attempt still consumes window budget.
func (l *Limiter) Hit(ctx context.Context, scope, ident string, rule Rule) (Result, error) {
	key := "rl:" + scope + ":" + ident

	vals, err := hitLua.Run(ctx, l.Redis, []string{key}, rule.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(vals) != 2 {
		return Result{}, fmt.Errorf("%w: unexpected script reply", ErrRedisUnavailable)
	}

	count, ttl := vals[0], vals[1]
	remaining := rule.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:    count <= int64(rule.Limit),
		Remaining:  remaining,
		ResetAfter: time.Duration(ttl) * time.Millisecond,
	}, nil
}

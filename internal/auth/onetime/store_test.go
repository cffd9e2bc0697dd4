package onetime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/devcrm/auth-service/internal/auth/onetime"
	"github.com/devcrm/auth-service/pkg/jwtx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*onetime.Store, *miniredis.Miniredis) {
	t.Helper()

	codec, err := jwtx.NewCodec(jwtx.Config{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		Issuer:        "devcrm",
		Audience:      "devcrm-app",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &onetime.Store{
		Redis:          client,
		Codec:          codec,
		EmailVerifyTTL: onetime.DefaultEmailVerifyTTL,
		ResetPwdTTL:    onetime.DefaultResetPwdTTL,
	}, mr
}

func TestCreateAndConsume(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	token, err := s.Create(ctx, "user-1", jwtx.PurposeEmailVerify)
	require.NoError(t, err)

	userID, err := s.Consume(ctx, token, jwtx.PurposeEmailVerify)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
}

func TestConsumeTwice(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	token, err := s.Create(ctx, "user-1", jwtx.PurposeResetPwd)
	require.NoError(t, err)

	_, err = s.Consume(ctx, token, jwtx.PurposeResetPwd)
	require.NoError(t, err)

	_, err = s.Consume(ctx, token, jwtx.PurposeResetPwd)
	require.ErrorIs(t, err, onetime.ErrTokenNotFound)
}

func TestConsumeWrongPurpose(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	token, err := s.Create(ctx, "user-1", jwtx.PurposeEmailVerify)
	require.NoError(t, err)

	_, err = s.Consume(ctx, token, jwtx.PurposeResetPwd)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)

	// The mismatched attempt must not burn the token.
	_, err = s.Consume(ctx, token, jwtx.PurposeEmailVerify)
	require.NoError(t, err)
}

func TestConsumeGarbage(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Consume(context.Background(), "not-a-jwt", jwtx.PurposeEmailVerify)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestConsumeExpired(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	token, err := s.Create(ctx, "user-1", jwtx.PurposeResetPwd)
	require.NoError(t, err)

	// Redis key is gone once the reset TTL elapses.
	mr.FastForward(2 * time.Hour)

	_, err = s.Consume(ctx, token, jwtx.PurposeResetPwd)
	require.ErrorIs(t, err, onetime.ErrTokenNotFound)
}

func TestConcurrentConsumeSingleWinner(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	token, err := s.Create(ctx, "user-1", jwtx.PurposeEmailVerify)
	require.NoError(t, err)

	const racers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Consume(ctx, token, jwtx.PurposeEmailVerify); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}

func TestRedisDownFailsClosed(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	token, err := s.Create(ctx, "user-1", jwtx.PurposeEmailVerify)
	require.NoError(t, err)

	mr.Close()

	_, err = s.Consume(ctx, token, jwtx.PurposeEmailVerify)
	require.ErrorIs(t, err, onetime.ErrRedisUnavailable)
}

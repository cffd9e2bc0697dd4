package service

import (
	"context"
	"errors"

	"github.com/devcrm/auth-service/internal/auth/domain"
	"github.com/devcrm/auth-service/internal/auth/session"
	"github.com/devcrm/auth-service/internal/auth/store"
	"github.com/devcrm/auth-service/pkg/cryptox"
	"github.com/devcrm/auth-service/pkg/slogx"
)

type LoginResult struct {
	User   domain.User
	Org    domain.Organization
	Tokens domain.TokenPair
}

// Login authenticates by email and password. Unknown email, wrong password
// and unverified email all come back as the same class of failure so the
// endpoint cannot be used to probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := slogx.FromContext(ctx)
	email = NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time on a throwaway hash so an attacker
			// cannot distinguish unknown emails by response latency.
			_ = cryptox.VerifyPassword(password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Info("login failed, bad password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	if !user.Verified() {
		log.Info("login blocked, email not verified", "user_id", user.ID)
		return nil, ErrEmailNotVerified
	}

	org, err := s.Store.Orgs().GetDefaultOrgForUser(ctx, user.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	sid, err := s.Sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	pair, err := s.signPair(user.ID, org.ID, sid)
	if err != nil {
		return nil, err
	}

	if err := s.Store.Users().TouchLastLogin(ctx, user.ID); err != nil {
		log.Warn("touch last_login failed", "user_id", user.ID, "err", err)
	}

	log.Info("login succeeded", "user_id", user.ID, "org_id", org.ID)
	return &LoginResult{User: user, Org: org, Tokens: pair}, nil
}

// Refresh redeems a refresh token for a new pair. The underlying session is
// rotated atomically, so each refresh token works exactly once; replaying a
// rotated-away token fails and the caller must log in again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	claims, err := s.Codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	newSID, err := s.Sessions.Rotate(ctx, claims.SID, claims.UserID())
	if err != nil {
		if errors.Is(err, session.ErrInvalidSession) {
			log.Warn("refresh rejected, session invalid or reused", "user_id", claims.UserID())
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	// Keep the org scope the previous access context carried.
	org, err := s.Store.Orgs().GetDefaultOrgForUser(ctx, claims.UserID())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	pair, err := s.signPair(claims.UserID(), org.ID, newSID)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Logout revokes the refresh token's session. Revoking an already-dead
// session is fine; only a malformed token is an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.Codec.VerifyRefresh(refreshToken)
	if err != nil {
		return ErrInvalidRefresh
	}
	return s.Sessions.Revoke(ctx, claims.SID)
}

// Me returns the user's profile and default organization for the
// authenticated account endpoint.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.User, domain.Organization, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Organization{}, ErrUserNotFound
		}
		return domain.User{}, domain.Organization{}, err
	}

	org, err := s.Store.Orgs().GetDefaultOrgForUser(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.Organization{}, err
	}
	return user, org, nil
}

func (s *AuthService) signPair(userID, orgID, sid string) (domain.TokenPair, error) {
	access, err := s.Codec.SignAccess(userID, orgID, 0)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Codec.SignRefresh(userID, sid, 0)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}

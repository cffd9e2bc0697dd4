package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/devcrm/auth-service/internal/auth/domain"
	"github.com/devcrm/auth-service/internal/auth/mail"
	"github.com/devcrm/auth-service/internal/auth/onetime"
	"github.com/devcrm/auth-service/internal/auth/queue"
	"github.com/devcrm/auth-service/internal/auth/session"
	"github.com/devcrm/auth-service/internal/auth/store"
	"github.com/devcrm/auth-service/pkg/cryptox"
	"github.com/devcrm/auth-service/pkg/idx"
	"github.com/devcrm/auth-service/pkg/jwtx"
	"github.com/devcrm/auth-service/pkg/slogx"
)

// MinPasswordLength is the minimum accepted password length at registration
// and reset.
const MinPasswordLength = 8

var (
	ErrEmailTaken          = errors.New("email_taken")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrEmailNotVerified    = errors.New("email_not_verified")
	ErrInvalidRefresh      = errors.New("invalid_refresh_token")
	ErrInvalidOneTimeToken = errors.New("invalid_or_used_token")
	ErrUserNotFound        = errors.New("user_not_found")
	ErrWeakPassword        = errors.New("weak_password")
)

// AuthService orchestrates the account lifecycle: registration, email
// verification, login, token refresh, logout and password recovery. It is
// the only service that knows about the user/org domain; the session,
// one-time and queue collaborators are plain mechanisms.
type AuthService struct {
	Store    store.Store
	Codec    *jwtx.Codec
	Sessions *session.Store
	OneTime  *onetime.Store
	Mail     *queue.Queue

	FrontendURL string
	AccessTTL   time.Duration
}

type RegisterResult struct {
	UserID string
	OrgID  string
}

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the user, their organization and the owner membership in
// one transaction, then queues the verification email. No session is created;
// the user must verify their email and log in.
func (s *AuthService) Register(ctx context.Context, email, name, password, orgName string) (*RegisterResult, error) {
	log := slogx.FromContext(ctx)
	email = NormalizeEmail(email)

	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	userID := idx.New().String()
	orgID := idx.New().String()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:           userID,
			Email:        email,
			Name:         name,
			PasswordHash: hash,
		}); err != nil {
			return err
		}
		if err := tx.Orgs().CreateOrg(ctx, domain.Organization{
			ID:      orgID,
			Name:    orgName,
			OwnerID: userID,
			Plan:    domain.PlanFree,
		}); err != nil {
			return err
		}
		return tx.OrgMembers().AddMember(ctx, domain.OrgMember{
			UserID: userID,
			OrgID:  orgID,
			Role:   domain.RoleOwner,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if err := s.sendVerification(ctx, userID, email); err != nil {
		// The account exists; the user can ask for a resend.
		log.Error("queueing verification email failed", "user_id", userID, "err", err)
	}

	log.Info("user registered", "user_id", userID, "org_id", orgID)
	return &RegisterResult{UserID: userID, OrgID: orgID}, nil
}

// ResendVerification issues a fresh verification token. Unknown addresses
// and already-verified accounts return success without doing anything so the
// endpoint cannot be used to probe for accounts.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)
	email = NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("resend-verification for unknown email")
			return nil
		}
		return err
	}
	if user.Verified() {
		log.Info("resend-verification for already verified user", "user_id", user.ID)
		return nil
	}

	return s.sendVerification(ctx, user.ID, user.Email)
}

// VerifyEmail consumes the one-time token and stamps the user verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	log := slogx.FromContext(ctx)

	userID, err := s.OneTime.Consume(ctx, token, jwtx.PurposeEmailVerify)
	if err != nil {
		if errors.Is(err, onetime.ErrRedisUnavailable) {
			return err
		}
		return ErrInvalidOneTimeToken
	}

	if err := s.Store.Users().MarkEmailVerified(ctx, userID); err != nil {
		return err
	}

	log.Info("email verified", "user_id", userID)
	return nil
}

func (s *AuthService) sendVerification(ctx context.Context, userID, email string) error {
	token, err := s.OneTime.Create(ctx, userID, jwtx.PurposeEmailVerify)
	if err != nil {
		return err
	}
	return s.Mail.Enqueue(ctx, mail.JobSendVerificationEmail, mail.VerificationEmailPayload{
		To:    email,
		Token: token,
	})
}

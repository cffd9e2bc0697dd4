package service

import (
	"context"
	"errors"
	"net/url"

	"github.com/devcrm/auth-service/internal/auth/mail"
	"github.com/devcrm/auth-service/internal/auth/onetime"
	"github.com/devcrm/auth-service/internal/auth/store"
	"github.com/devcrm/auth-service/pkg/cryptox"
	"github.com/devcrm/auth-service/pkg/jwtx"
	"github.com/devcrm/auth-service/pkg/slogx"
)

// dummyHash is a syntactically valid argon2id hash verified against when the
// email is unknown, so both branches of a login cost one hash computation.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=2$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// ForgotPassword starts the reset flow. The response is identical whether or
// not the address has an account; only the email reveals anything, and only
// to the mailbox owner.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)
	email = NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("forgot-password for unknown email")
			return nil
		}
		return err
	}

	token, err := s.OneTime.Create(ctx, user.ID, jwtx.PurposeResetPwd)
	if err != nil {
		return err
	}

	resetURL := s.FrontendURL + "/reset-password?token=" + url.QueryEscape(token)
	return s.Mail.Enqueue(ctx, mail.JobSendResetPwdEmail, mail.ResetPwdEmailPayload{
		To:  user.Email,
		URL: resetURL,
	})
}

// ResetPassword consumes the reset token and stores the new password hash.
// Outstanding refresh sessions stay valid; see the project notes on session
// revocation.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := slogx.FromContext(ctx)

	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	userID, err := s.OneTime.Consume(ctx, token, jwtx.PurposeResetPwd)
	if err != nil {
		if errors.Is(err, onetime.ErrRedisUnavailable) {
			return err
		}
		return ErrInvalidOneTimeToken
	}

	// The token may outlive its account.
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	log.Info("password reset", "user_id", userID)
	return nil
}

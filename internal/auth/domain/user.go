package domain

import "time"

type User struct {
	ID              string
	Email           string
	Name            string
	PasswordHash    string     // argon2 encoded
	EmailVerifiedAt *time.Time // nil until the verification link is consumed
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Verified reports whether the user has completed email verification.
func (u User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

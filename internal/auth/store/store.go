package store

import (
	"context"
	"errors"

	"github.com/devcrm/auth-service/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable. We can change having the sub-repos as methods later but we do it
// now so we can have more control and actively stop people from accidently
// doing transactions within transactions.
type Store interface {
	Users() Users
	Orgs() Orgs
	OrgMembers() OrgMembers

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., registration).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and the forgot-password flow.
	// Emails are stored lowercased, callers normalize before lookup.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// MarkEmailVerified stamps email_verified_at if not already set.
	MarkEmailVerified(ctx context.Context, userID string) error

	// TouchLastLogin stamps last_login_at after a successful login.
	TouchLastLogin(ctx context.Context, userID string) error

	// DeleteUser cascades to org_members (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type Orgs interface {
	// GetOrgByID returns an organization by id.
	GetOrgByID(ctx context.Context, id string) (domain.Organization, error)

	// GetDefaultOrgForUser returns the organization a user's tokens are
	// scoped to, currently the oldest org they belong to.
	GetDefaultOrgForUser(ctx context.Context, userID string) (domain.Organization, error)

	// CreateOrg inserts a new organization (id is ULID).
	CreateOrg(ctx context.Context, o domain.Organization) error

	// DeleteOrg cascades to org_members (per schema).
	DeleteOrg(ctx context.Context, orgID string) error
}

type OrgMembers interface {
	// AddMember inserts a membership row.
	AddMember(ctx context.Context, m domain.OrgMember) error

	// GetMember fetches a single membership, ErrNotFound when absent.
	GetMember(ctx context.Context, userID, orgID string) (domain.OrgMember, error)

	// ListMembersByOrg returns all members of an org ordered by join date.
	ListMembersByOrg(ctx context.Context, orgID string) ([]domain.OrgMember, error)

	// RemoveMember deletes a membership row.
	RemoveMember(ctx context.Context, userID, orgID string) error
}

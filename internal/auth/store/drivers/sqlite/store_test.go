package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/devcrm/auth-service/internal/auth/domain"
	"github.com/devcrm/auth-service/internal/auth/store"
	"github.com/devcrm/auth-service/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s store.Store, id, email string) {
	t.Helper()

	require.NoError(t, s.Users().CreateUser(context.Background(), domain.User{
		ID:           id,
		Email:        email,
		Name:         "Test User",
		PasswordHash: "$argon2id$fake",
	}))
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "01TESTUSER", "alice@example.com")

	byID, err := s.Users().GetUserByID(ctx, "01TESTUSER")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", byID.Email)
	require.Nil(t, byID.EmailVerifiedAt)
	require.False(t, byID.Verified())

	byEmail, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, byID.ID, byEmail.ID)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)

	seedUser(t, s, "01USERA", "dup@example.com")

	err := s.Users().CreateUser(context.Background(), domain.User{
		ID:           "01USERB",
		Email:        "dup@example.com",
		Name:         "Other",
		PasswordHash: "$argon2id$fake",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Users().GetUserByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMarkEmailVerified(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "01VERIFYME", "verify@example.com")
	require.NoError(t, s.Users().MarkEmailVerified(ctx, "01VERIFYME"))

	u, err := s.Users().GetUserByID(ctx, "01VERIFYME")
	require.NoError(t, err)
	require.True(t, u.Verified())

	// Second call is a no-op, the original timestamp stays.
	first := *u.EmailVerifiedAt
	require.NoError(t, s.Users().MarkEmailVerified(ctx, "01VERIFYME"))

	u, err = s.Users().GetUserByID(ctx, "01VERIFYME")
	require.NoError(t, err)
	require.Equal(t, first, *u.EmailVerifiedAt)
}

func TestRegistrationTx(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:           "01OWNER",
			Email:        "owner@example.com",
			Name:         "Owner",
			PasswordHash: "$argon2id$fake",
		}); err != nil {
			return err
		}
		if err := tx.Orgs().CreateOrg(ctx, domain.Organization{
			ID:      "01ORG",
			Name:    "Owner's Workspace",
			OwnerID: "01OWNER",
			Plan:    domain.PlanFree,
		}); err != nil {
			return err
		}
		return tx.OrgMembers().AddMember(ctx, domain.OrgMember{
			UserID: "01OWNER",
			OrgID:  "01ORG",
			Role:   domain.RoleOwner,
		})
	})
	require.NoError(t, err)

	org, err := s.Orgs().GetDefaultOrgForUser(ctx, "01OWNER")
	require.NoError(t, err)
	require.Equal(t, "01ORG", org.ID)
	require.Equal(t, domain.PlanFree, org.Plan)

	member, err := s.OrgMembers().GetMember(ctx, "01OWNER", "01ORG")
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, member.Role)
}

func TestTxRollbackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:           "01ROLLBACK",
			Email:        "rollback@example.com",
			Name:         "Rollback",
			PasswordHash: "$argon2id$fake",
		}); err != nil {
			return err
		}
		// Org references a user that does not exist, FK violation.
		return tx.Orgs().CreateOrg(ctx, domain.Organization{
			ID:      "01BADORG",
			Name:    "Bad",
			OwnerID: "01NOSUCHUSER",
			Plan:    domain.PlanFree,
		})
	})
	require.Error(t, err)

	_, err = s.Users().GetUserByID(ctx, "01ROLLBACK")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "01CASCADE", "cascade@example.com")
	require.NoError(t, s.Orgs().CreateOrg(ctx, domain.Organization{
		ID: "01CORG", Name: "C", OwnerID: "01CASCADE", Plan: domain.PlanFree,
	}))
	require.NoError(t, s.OrgMembers().AddMember(ctx, domain.OrgMember{
		UserID: "01CASCADE", OrgID: "01CORG", Role: domain.RoleOwner,
	}))

	require.NoError(t, s.Users().DeleteUser(ctx, "01CASCADE"))

	_, err := s.OrgMembers().GetMember(ctx, "01CASCADE", "01CORG")
	require.ErrorIs(t, err, store.ErrNotFound)
}

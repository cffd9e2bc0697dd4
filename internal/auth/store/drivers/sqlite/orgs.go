package sqlite

import (
	"context"
	"database/sql"

	"github.com/devcrm/auth-service/internal/auth/domain"
)

type orgsRepo struct {
	db dbtx
}

const orgColumns = `id, name, owner_id, plan, created_at, updated_at`

func scanOrg(row *sql.Row) (domain.Organization, error) {
	var o domain.Organization
	err := row.Scan(&o.ID, &o.Name, &o.OwnerID, &o.Plan, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	return o, nil
}

func (r *orgsRepo) GetOrgByID(ctx context.Context, id string) (domain.Organization, error) {
	return scanOrg(r.db.QueryRowContext(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE id = ?`, id))
}

func (r *orgsRepo) GetDefaultOrgForUser(ctx context.Context, userID string) (domain.Organization, error) {
	// ULIDs sort by creation time, so MIN(org id) is the oldest membership.
	return scanOrg(r.db.QueryRowContext(ctx,
		`SELECT o.id, o.name, o.owner_id, o.plan, o.created_at, o.updated_at
		 FROM organizations o
		 JOIN org_members m ON m.org_id = o.id
		 WHERE m.user_id = ?
		 ORDER BY o.id ASC
		 LIMIT 1`, userID))
}

func (r *orgsRepo) CreateOrg(ctx context.Context, o domain.Organization) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, owner_id, plan) VALUES (?, ?, ?, ?)`,
		o.ID, o.Name, o.OwnerID, o.Plan)
	return mapConflict(err)
}

func (r *orgsRepo) DeleteOrg(ctx context.Context, orgID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, orgID)
	return err
}

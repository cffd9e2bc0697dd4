package sqlite

import (
	"context"

	"github.com/devcrm/auth-service/internal/auth/domain"
)

type orgMembersRepo struct {
	db dbtx
}

func (r *orgMembersRepo) AddMember(ctx context.Context, m domain.OrgMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO org_members (user_id, org_id, role) VALUES (?, ?, ?)`,
		m.UserID, m.OrgID, m.Role)
	return mapConflict(err)
}

func (r *orgMembersRepo) GetMember(ctx context.Context, userID, orgID string) (domain.OrgMember, error) {
	var m domain.OrgMember
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, org_id, role, created_at FROM org_members WHERE user_id = ? AND org_id = ?`,
		userID, orgID).Scan(&m.UserID, &m.OrgID, &m.Role, &m.CreatedAt)
	if err != nil {
		return domain.OrgMember{}, mapNotFound(err)
	}
	return m, nil
}

func (r *orgMembersRepo) ListMembersByOrg(ctx context.Context, orgID string) ([]domain.OrgMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, org_id, role, created_at FROM org_members WHERE org_id = ? ORDER BY created_at ASC`,
		orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.OrgMember
	for rows.Next() {
		var m domain.OrgMember
		if err := rows.Scan(&m.UserID, &m.OrgID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *orgMembersRepo) RemoveMember(ctx context.Context, userID, orgID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM org_members WHERE user_id = ? AND org_id = ?`,
		userID, orgID)
	return err
}

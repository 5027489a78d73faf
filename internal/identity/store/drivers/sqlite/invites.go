package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/pkg/idx"
)

type invitesRepo struct {
	db dbtx
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.TeamInvite) error {
	createdAt := inv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_invites (id, organization_id, creator_id, email, token_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID.String(), inv.OrganizationID, inv.CreatorID.String(), inv.Email,
		inv.TokenHash, string(inv.Role), createdAt,
	)
	return mapConstraint(err)
}

func (r *invitesRepo) FindInvite(ctx context.Context, email, orgID, tokenHash string) (domain.TeamInvite, error) {
	var (
		inv                 domain.TeamInvite
		id, creatorID, role string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, organization_id, creator_id, email, token_hash, role, created_at
		 FROM team_invites
		 WHERE email = ? AND organization_id = ? AND token_hash = ?`,
		email, orgID, tokenHash,
	).Scan(&id, &inv.OrganizationID, &creatorID, &inv.Email, &inv.TokenHash, &role, &inv.CreatedAt)
	if err != nil {
		return domain.TeamInvite{}, mapNotFound(err)
	}

	inv.ID = idx.ID(id)
	inv.Role = domain.Role(role)
	inv.CreatorID, err = uuid.Parse(creatorID)
	if err != nil {
		return domain.TeamInvite{}, err
	}
	return inv, nil
}

func (r *invitesRepo) ConsumeInvite(ctx context.Context, id idx.ID) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM team_invites WHERE id = ?`,
		id.String(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

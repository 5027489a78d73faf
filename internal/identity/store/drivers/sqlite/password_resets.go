package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/pkg/idx"
)

type passwordResetsRepo struct {
	db dbtx
}

func (r *passwordResetsRepo) CreateReset(ctx context.Context, req domain.PasswordResetRequest) error {
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_reset_requests (id, organization_id, user_id, email, token_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID.String(), req.OrganizationID, req.UserID.String(), req.Email, req.TokenHash, createdAt,
	)
	return mapConstraint(err)
}

func (r *passwordResetsRepo) FindValidReset(ctx context.Context, email, orgID, tokenHash string, notBefore time.Time) (domain.PasswordResetRequest, error) {
	var (
		req        domain.PasswordResetRequest
		id, userID string
	)

	// The created_at bound folds expiry into the lookup so an expired token
	// is indistinguishable from a consumed or never-issued one.
	err := r.db.QueryRowContext(ctx,
		`SELECT id, organization_id, user_id, email, token_hash, created_at
		 FROM password_reset_requests
		 WHERE email = ? AND organization_id = ? AND token_hash = ? AND created_at >= ?`,
		email, orgID, tokenHash, notBefore,
	).Scan(&id, &req.OrganizationID, &userID, &req.Email, &req.TokenHash, &req.CreatedAt)
	if err != nil {
		return domain.PasswordResetRequest{}, mapNotFound(err)
	}

	req.ID = idx.ID(id)
	req.UserID, err = uuid.Parse(userID)
	if err != nil {
		return domain.PasswordResetRequest{}, err
	}
	return req, nil
}

func (r *passwordResetsRepo) DeleteUserResets(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_requests WHERE user_id = ?`,
		userID.String(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *passwordResetsRepo) DeleteExpiredResets(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-domain.ResetValidity)
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_requests WHERE created_at < ?`,
		cutoff,
	)
	return err
}

package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/pkg/idx"
)

type signupsRepo struct {
	db dbtx
}

func (r *signupsRepo) CreateSignup(ctx context.Context, s domain.PendingSignup) error {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO signup_requests (id, organization_id, user_id, email, token_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.OrganizationID, s.UserID.String(), s.Email, s.TokenHash, createdAt,
	)
	return mapConstraint(err)
}

func (r *signupsRepo) FindSignup(ctx context.Context, email, orgID, tokenHash string) (domain.PendingSignup, error) {
	var (
		s          domain.PendingSignup
		id, userID string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, organization_id, user_id, email, token_hash, created_at
		 FROM signup_requests
		 WHERE email = ? AND organization_id = ? AND token_hash = ?`,
		email, orgID, tokenHash,
	).Scan(&id, &s.OrganizationID, &userID, &s.Email, &s.TokenHash, &s.CreatedAt)
	if err != nil {
		return domain.PendingSignup{}, mapNotFound(err)
	}

	s.ID = idx.ID(id)
	s.UserID, err = uuid.Parse(userID)
	if err != nil {
		return domain.PendingSignup{}, err
	}
	return s, nil
}

func (r *signupsRepo) DeleteUserSignups(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM signup_requests WHERE user_id = ?`,
		userID.String(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *signupsRepo) DeleteExpiredSignups(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-domain.SignupValidity)
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM signup_requests WHERE created_at < ?`,
		cutoff,
	)
	return err
}

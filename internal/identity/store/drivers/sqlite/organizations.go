package sqlite

import (
	"context"
	"time"

	"github.com/lightbeamhq/identity/internal/identity/domain"
)

type organizationsRepo struct {
	db dbtx
}

func (r *organizationsRepo) CreateOrganization(ctx context.Context, org domain.Organization) error {
	createdAt := org.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, created_at) VALUES (?, ?)`,
		org.ID, createdAt,
	)
	return mapConstraint(err)
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	var org domain.Organization
	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM organizations WHERE id = ?`,
		id,
	).Scan(&org.ID, &org.CreatedAt)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	return org, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/propcrm/crm-service/internal/domain"
)

// ProfileRepository manages the users table.
type ProfileRepository interface {
	Create(ctx context.Context, profile domain.NewProfile) (*domain.Profile, error)
	GetByAuthUserID(ctx context.Context, authUserID string) (*domain.Profile, error)
}

type profileRepository struct {
	pool DB
}

// NewProfileRepository builds the repository.
func NewProfileRepository(pool DB) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) Create(ctx context.Context, p domain.NewProfile) (*domain.Profile, error) {
	const query = `
        INSERT INTO users (organization_id, auth_user_id, first_name, last_name, email, phone, role, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING user_id, organization_id, first_name, last_name, email, role, profile_photo`

	var created domain.Profile
	if err := r.pool.QueryRow(ctx, query,
		p.OrganizationID,
		p.AuthUserID,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Phone,
		p.Role,
		p.IsActive,
	).Scan(
		&created.UserID,
		&created.OrganizationID,
		&created.FirstName,
		&created.LastName,
		&created.Email,
		&created.Role,
		&created.ProfilePhoto,
	); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *profileRepository) GetByAuthUserID(ctx context.Context, authUserID string) (*domain.Profile, error) {
	const query = `
        SELECT user_id, organization_id, first_name, last_name, email, role, profile_photo
        FROM users WHERE auth_user_id=$1`

	var p domain.Profile
	if err := r.pool.QueryRow(ctx, query, authUserID).Scan(
		&p.UserID,
		&p.OrganizationID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Role,
		&p.ProfilePhoto,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

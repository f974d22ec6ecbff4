package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/propcrm/crm-service/internal/domain"
)

// OrganizationRepository manages tenant rows.
type OrganizationRepository interface {
	Create(ctx context.Context, org domain.NewOrganization) (*domain.Organization, error)
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}

type organizationRepository struct {
	pool DB
}

// NewOrganizationRepository builds the repository.
func NewOrganizationRepository(pool DB) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) Create(ctx context.Context, org domain.NewOrganization) (*domain.Organization, error) {
	const query = `
        INSERT INTO organizations (
            organization_name, organization_type, email, phone, business_name,
            city, state, subscription_tier, subscription_status, trial_ends_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING organization_id, organization_name, organization_type, logo_url, brand_color, subscription_status`

	var created domain.Organization
	if err := r.pool.QueryRow(ctx, query,
		org.Name,
		org.Type,
		org.Email,
		org.Phone,
		org.BusinessName,
		org.City,
		org.State,
		org.SubscriptionTier,
		org.SubscriptionStatus,
		org.TrialEndsAt,
	).Scan(
		&created.ID,
		&created.Name,
		&created.Type,
		&created.LogoURL,
		&created.BrandColor,
		&created.SubscriptionStatus,
	); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	const query = `
        SELECT organization_id, organization_name, organization_type, logo_url, brand_color, subscription_status
        FROM organizations WHERE organization_id=$1`

	var org domain.Organization
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Type,
		&org.LogoURL,
		&org.BrandColor,
		&org.SubscriptionStatus,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, err
	}
	if !org.Type.Valid() {
		return nil, fmt.Errorf("organization %s has type %q: %w", org.ID, org.Type, domain.ErrOrganizationNotFound)
	}
	return &org, nil
}

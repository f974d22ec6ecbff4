package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/propcrm/crm-service/internal/domain"
)

const uniqueViolation = "23505"

// IdentityRepository persists login credentials.
type IdentityRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*domain.Credential, error)
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
}

type identityRepository struct {
	pool DB
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(pool DB) IdentityRepository {
	return &identityRepository{pool: pool}
}

func (r *identityRepository) Create(ctx context.Context, email, passwordHash string) (*domain.Credential, error) {
	const query = `
        INSERT INTO auth_identities (email, password_hash)
        VALUES ($1, $2)
        RETURNING identity_id, email, password_hash, created_at`

	var cred domain.Credential
	err := r.pool.QueryRow(ctx, query, normalizeEmail(email), passwordHash).Scan(
		&cred.IdentityID,
		&cred.Email,
		&cred.PasswordHash,
		&cred.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return &cred, nil
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	const query = `
        SELECT identity_id, email, password_hash, created_at
        FROM auth_identities WHERE email=$1`

	var cred domain.Credential
	if err := r.pool.QueryRow(ctx, query, normalizeEmail(email)).Scan(
		&cred.IdentityID,
		&cred.Email,
		&cred.PasswordHash,
		&cred.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidCredential
		}
		return nil, err
	}
	return &cred, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

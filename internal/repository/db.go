package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store bundles the tenancy repositories over one DB handle.
type Store struct {
	Identities    IdentityRepository
	Organizations OrganizationRepository
	Profiles      ProfileRepository
}

// NewStore binds the tenancy repositories to db.
func NewStore(db DB) *Store {
	return &Store{
		Identities:    NewIdentityRepository(db),
		Organizations: NewOrganizationRepository(db),
		Profiles:      NewProfileRepository(db),
	}
}

// InTx runs fn against a Store bound to a single transaction. The transaction
// commits only when fn returns nil.
func InTx(ctx context.Context, db DB, fn func(*Store) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(NewStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

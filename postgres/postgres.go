// Package postgres implements camguard.Store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/camguard/camguard"
)

// PGStore implements camguard.Store using PostgreSQL via pgx.
type PGStore struct {
	db *pgxpool.Pool
}

// New creates a new PGStore backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// storeErr wraps a low-level failure into the domain's storage error.
func storeErr(op string, err error) error {
	return &camguard.StorageError{Op: op, Err: err}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// scanner covers both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

var _ camguard.Store = (*PGStore)(nil)

// Begin is a small helper for the per-operation transaction scope: fn runs
// inside one transaction which commits on success and rolls back on error.
func (s *PGStore) tx(ctx context.Context, op string, fn func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return storeErr(op+": begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr(op+": commit", err)
	}
	return nil
}

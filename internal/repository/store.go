package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// Store owns the connection pool and hands out repositories bound either to
// the pool or to a single transaction.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the pool for callers that need it directly (health checks).
func (s *Store) DB() *sql.DB { return s.db }

// InTx runs fn inside one transaction.  The transaction commits only when fn
// returns nil; any error, or a panic, rolls every statement back.
func (s *Store) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	committed = true
	return nil
}

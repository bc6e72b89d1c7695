package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the store needs. Tests substitute an
// in-memory fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store wraps the connection pool with a single-writer discipline: at most
// one write (Exec or transaction) is in flight at a time, while reads run
// concurrently. The check-then-act patterns in the domain layer (username
// existence checks, test-statistics upserts) are race-free only under this
// serialization, so it is a correctness requirement, not an optimization.
type Store struct {
	q       Querier
	writeMu sync.Mutex
}

func NewStore(q Querier) *Store {
	return &Store{q: q}
}

// Exec runs a single write statement under the write lock.
func (s *Store) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.q.Exec(ctx, sql, args...)
}

// Query runs a read returning multiple rows. Reads do not take the write lock.
func (s *Store) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return s.q.Query(ctx, sql, args...)
}

// QueryRow runs a read returning a single row.
func (s *Store) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return s.q.QueryRow(ctx, sql, args...)
}

// InsertRow runs an INSERT ... RETURNING under the write lock and scans the
// returned row into dest.
func (s *Store) InsertRow(ctx context.Context, sql string, args []interface{}, dest ...interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.q.QueryRow(ctx, sql, args...).Scan(dest...)
}

// WithTx runs fn inside a transaction under the write lock. The transaction
// is rolled back when fn returns an error.
func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

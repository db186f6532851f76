package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventhub-backend/internal/logger"
	"eventhub-backend/internal/repository"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same repository code runs inside or
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const defaultMaxTxRetries = 3

// PostgreSQL SQLSTATE codes.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

type Store struct {
	db           *sql.DB
	maxTxRetries int
	repos        *repository.Repositories
}

type StoreOption func(*Store)

// WithMaxTxRetries bounds how many times a transaction is re-run after transient contention.
// The first attempt is not counted.
func WithMaxTxRetries(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxTxRetries = n
		}
	}
}

func NewStore(db *sql.DB, opts ...StoreOption) *Store {
	s := &Store{
		db:           db,
		maxTxRetries: defaultMaxTxRetries,
		repos:        newRepositories(db),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newRepositories(db DBTX) *repository.Repositories {
	return &repository.Repositories{
		Users:         NewUserRepository(db),
		Clubs:         NewClubRepository(db),
		Memberships:   NewMembershipRepository(db),
		JoinRequests:  NewJoinRequestRepository(db),
		Invitations:   NewInvitationRepository(db),
		Events:        NewEventRepository(db),
		Registrations: NewRegistrationRepository(db),
	}
}

func (s *Store) Repos() *repository.Repositories {
	return s.repos
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	var err error
	for attempt := 0; attempt <= s.maxTxRetries; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt == s.maxTxRetries {
			break
		}
		logger.Warn("Transaction hit transient contention, retrying", "retry", attempt+1, "max_retries", s.maxTxRetries, "error", err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return fmt.Errorf("%w: %v", repository.ErrContention, err)
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(ctx, newRepositories(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func isTransient(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// mapWriteError converts a unique violation into repository.ErrDuplicate, keeping the
// constraint name in the message so callers can tell which key collided.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == codeUniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Constraint)
	}
	return err
}

func mapReadError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// expectOneRow turns a zero-rows-affected conditional write into ErrConcurrentUpdate.
func expectOneRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrConcurrentUpdate
	}
	return nil
}

// expectFound is expectOneRow for unconditional writes, where zero rows means the key is unknown.
func expectFound(res sql.Result) error {
	if err := expectOneRow(res); err != nil {
		if errors.Is(err, repository.ErrConcurrentUpdate) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

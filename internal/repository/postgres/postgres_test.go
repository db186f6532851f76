package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub-backend/internal/repository"
	"eventhub-backend/internal/repository/postgres"
)

func TestStore_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		store := postgres.NewStore(db)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM club_memberships").WithArgs(int32(7)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
			return repos.Memberships.Delete(ctx, 7)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		store := postgres.NewStore(db)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err = store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Retries serialization failures then gives up", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		store := postgres.NewStore(db, postgres.WithMaxTxRetries(2))
		// one attempt plus two retries
		for i := 0; i < 3; i++ {
			mock.ExpectBegin()
			mock.ExpectRollback()
		}

		calls := 0
		err = store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
			calls++
			return &pq.Error{Code: "40001"}
		})
		assert.ErrorIs(t, err, repository.ErrContention)
		assert.Equal(t, 3, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Succeeds after a deadlock", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		store := postgres.NewStore(db)
		mock.ExpectBegin()
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectCommit()

		calls := 0
		err = store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
			calls++
			if calls == 1 {
				return &pq.Error{Code: "40P01"}
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

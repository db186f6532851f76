package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/repository"
	"eventhub-backend/internal/repository/postgres"
)

func TestMembershipRepository_Grant(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewMembershipRepository(db)
	ctx := context.Background()

	t.Run("Inserted", func(t *testing.T) {
		m := &domain.ClubMembership{ClubID: 1, UserID: 2, Role: domain.MembershipRoleMember}
		mock.ExpectQuery("INSERT INTO club_memberships (.+) ON CONFLICT \\(club_id, user_id\\) DO NOTHING").
			WithArgs(int32(1), int32(2), domain.MembershipRoleMember).
			WillReturnRows(sqlmock.NewRows([]string{"id", "joined_on"}).AddRow(5, time.Now()))

		inserted, err := repo.Grant(ctx, m)
		assert.NoError(t, err)
		assert.True(t, inserted)
		assert.Equal(t, int32(5), m.ID)
	})

	t.Run("Already a member", func(t *testing.T) {
		m := &domain.ClubMembership{ClubID: 1, UserID: 2, Role: domain.MembershipRoleMember}
		mock.ExpectQuery("INSERT INTO club_memberships").
			WithArgs(int32(1), int32(2), domain.MembershipRoleMember).
			WillReturnError(sql.ErrNoRows)

		inserted, err := repo.Grant(ctx, m)
		assert.NoError(t, err)
		assert.False(t, inserted)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewMembershipRepository(db)

	mock.ExpectExec("DELETE FROM club_memberships WHERE id").
		WithArgs(int32(40)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 40), repository.ErrNotFound)
}

func TestUserRepository_PromoteToClubAdmin(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	t.Run("Student promoted", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET role = 'CLUB_ADMIN' WHERE id = \\$1 AND role = 'STUDENT'").
			WithArgs(int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		promoted, err := repo.PromoteToClubAdmin(ctx, 3)
		assert.NoError(t, err)
		assert.True(t, promoted)
	})

	t.Run("Admin is never demoted", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET role = 'CLUB_ADMIN'").
			WithArgs(int32(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		promoted, err := repo.PromoteToClubAdmin(ctx, 9)
		assert.NoError(t, err)
		assert.False(t, promoted)
	})
}

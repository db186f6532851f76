package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/logger"
	"eventhub-backend/internal/repository"
)

type membershipRepository struct {
	db DBTX
}

func NewMembershipRepository(db DBTX) repository.MembershipRepository {
	return &membershipRepository{db: db}
}

const membershipColumns = `id, club_id, user_id, role, joined_on`

func (r *membershipRepository) Grant(ctx context.Context, m *domain.ClubMembership) (bool, error) {
	query := `INSERT INTO club_memberships (club_id, user_id, role)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (club_id, user_id) DO NOTHING
	          RETURNING id, joined_on`
	logger.DatabaseCall("GrantMembership", query, "clubID", m.ClubID, "userID", m.UserID, "role", m.Role)
	err := r.db.QueryRowContext(ctx, query, m.ClubID, m.UserID, m.Role).Scan(&m.ID, &m.JoinedOn)
	if errors.Is(err, sql.ErrNoRows) {
		// (club, user) already present; membership creation is idempotent.
		logger.DatabaseResult("GrantMembership", 0, nil)
		return false, nil
	}
	if err != nil {
		logger.DatabaseResult("GrantMembership", 0, err)
		return false, mapWriteError(err)
	}
	logger.DatabaseResult("GrantMembership", 1, nil)
	return true, nil
}

func (r *membershipRepository) Exists(ctx context.Context, clubID, userID int32) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM club_memberships WHERE club_id = $1 AND user_id = $2)`
	err := r.db.QueryRowContext(ctx, query, clubID, userID).Scan(&exists)
	return exists, err
}

func (r *membershipRepository) GetByID(ctx context.Context, id int32) (*domain.ClubMembership, error) {
	m := &domain.ClubMembership{}
	query := `SELECT ` + membershipColumns + ` FROM club_memberships WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.ClubID, &m.UserID, &m.Role, &m.JoinedOn)
	if err != nil {
		return nil, mapReadError(err)
	}
	return m, nil
}

func (r *membershipRepository) GetByClubAndUser(ctx context.Context, clubID, userID int32) (*domain.ClubMembership, error) {
	m := &domain.ClubMembership{}
	query := `SELECT ` + membershipColumns + ` FROM club_memberships WHERE club_id = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, query, clubID, userID).Scan(&m.ID, &m.ClubID, &m.UserID, &m.Role, &m.JoinedOn)
	if err != nil {
		return nil, mapReadError(err)
	}
	return m, nil
}

func (r *membershipRepository) ListByClub(ctx context.Context, clubID int32) ([]domain.ClubMembership, error) {
	return r.list(ctx, `SELECT `+membershipColumns+` FROM club_memberships WHERE club_id = $1 ORDER BY id`, clubID)
}

func (r *membershipRepository) ListByUser(ctx context.Context, userID int32) ([]domain.ClubMembership, error) {
	return r.list(ctx, `SELECT `+membershipColumns+` FROM club_memberships WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *membershipRepository) list(ctx context.Context, query string, args ...any) ([]domain.ClubMembership, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []domain.ClubMembership
	for rows.Next() {
		var m domain.ClubMembership
		if err := rows.Scan(&m.ID, &m.ClubID, &m.UserID, &m.Role, &m.JoinedOn); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *membershipRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM club_memberships WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectFound(res)
}

func (r *membershipRepository) DeleteByClub(ctx context.Context, clubID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM club_memberships WHERE club_id = $1`, clubID)
	return err
}

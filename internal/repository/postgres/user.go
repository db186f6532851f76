package postgres

import (
	"context"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/logger"
	"eventhub-backend/internal/repository"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, name, role) VALUES ($1, $2, $3) RETURNING id, created_on`
	if u.Role == "" {
		u.Role = domain.UserRoleStudent
	}
	err := r.db.QueryRowContext(ctx, query, u.Email, u.Name, u.Role).Scan(&u.ID, &u.CreatedOn)
	return mapWriteError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, email, name, role, created_on FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedOn)
	if err != nil {
		return nil, mapReadError(err)
	}
	return u, nil
}

func (r *userRepository) PromoteToClubAdmin(ctx context.Context, id int32) (bool, error) {
	query := `UPDATE users SET role = 'CLUB_ADMIN' WHERE id = $1 AND role = 'STUDENT'`
	logger.DatabaseCall("PromoteToClubAdmin", query, "userID", id)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.DatabaseResult("PromoteToClubAdmin", 0, err)
		return false, err
	}
	rows, err := res.RowsAffected()
	logger.DatabaseResult("PromoteToClubAdmin", rows, err)
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

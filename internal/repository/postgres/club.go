package postgres

import (
	"context"

	"github.com/lib/pq"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/logger"
	"eventhub-backend/internal/repository"
)

type clubRepository struct {
	db DBTX
}

func NewClubRepository(db DBTX) repository.ClubRepository {
	return &clubRepository{db: db}
}

const clubColumns = `id, name, description, admin_id, status, created_on`

func (r *clubRepository) Create(ctx context.Context, c *domain.Club) error {
	logger.EnterMethod("clubRepository.Create", "adminID", c.AdminID, "status", c.Status)
	query := `INSERT INTO clubs (name, description, admin_id, status)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_on`
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Description, c.AdminID, c.Status).Scan(&c.ID, &c.CreatedOn)
	if err != nil {
		logger.ExitMethodWithError("clubRepository.Create", err, "adminID", c.AdminID)
		return mapWriteError(err)
	}
	logger.ExitMethod("clubRepository.Create", "clubID", c.ID)
	return nil
}

func (r *clubRepository) GetByID(ctx context.Context, id int32) (*domain.Club, error) {
	return r.getOne(ctx, `SELECT `+clubColumns+` FROM clubs WHERE id = $1`, id)
}

func (r *clubRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Club, error) {
	return r.getOne(ctx, `SELECT `+clubColumns+` FROM clubs WHERE id = $1 FOR UPDATE`, id)
}

func (r *clubRepository) FindActiveOrPendingByAdmin(ctx context.Context, adminID int32) (*domain.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs
	          WHERE admin_id = $1 AND status IN ('PENDING', 'ACTIVE')
	          ORDER BY id LIMIT 1`
	return r.getOne(ctx, query, adminID)
}

func (r *clubRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Club, error) {
	c := &domain.Club{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Name, &c.Description, &c.AdminID, &c.Status, &c.CreatedOn)
	if err != nil {
		return nil, mapReadError(err)
	}
	return c, nil
}

func (r *clubRepository) ExistsByAdminAndStatus(ctx context.Context, adminID int32, status domain.ClubStatus) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM clubs WHERE admin_id = $1 AND status = $2)`
	err := r.db.QueryRowContext(ctx, query, adminID, status).Scan(&exists)
	return exists, err
}

func (r *clubRepository) ListByStatuses(ctx context.Context, statuses []domain.ClubStatus) ([]domain.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs ORDER BY id`
	args := []any{}
	if len(statuses) > 0 {
		query = `SELECT ` + clubColumns + ` FROM clubs WHERE status = ANY($1) ORDER BY id`
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		args = append(args, pq.Array(names))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clubs []domain.Club
	for rows.Next() {
		var c domain.Club
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.AdminID, &c.Status, &c.CreatedOn); err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

func (r *clubRepository) UpdateStatus(ctx context.Context, id int32, status domain.ClubStatus) error {
	query := `UPDATE clubs SET status = $1 WHERE id = $2`
	logger.DatabaseCall("UpdateClubStatus", query, "clubID", id, "status", status)
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		logger.DatabaseResult("UpdateClubStatus", 0, err)
		return mapWriteError(err)
	}
	if err := expectFound(res); err != nil {
		return err
	}
	logger.DatabaseResult("UpdateClubStatus", 1, nil)
	return nil
}

func (r *clubRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if err := expectFound(res); err != nil {
		return err
	}
	return nil
}

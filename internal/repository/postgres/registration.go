package postgres

import (
	"context"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/logger"
	"eventhub-backend/internal/repository"
)

type registrationRepository struct {
	db DBTX
}

func NewRegistrationRepository(db DBTX) repository.RegistrationRepository {
	return &registrationRepository{db: db}
}

const registrationColumns = `id, user_id, event_id, status, registered_at, cancelled_at`

func scanRegistration(row interface{ Scan(...any) error }, reg *domain.Registration) error {
	return row.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.Status, &reg.RegisteredAt, &reg.CancelledAt)
}

func (r *registrationRepository) Register(ctx context.Context, reg *domain.Registration) error {
	// A CANCELLED row for the pair is reused; a REGISTERED or ATTENDED one makes the upsert a
	// no-op, which surfaces as ErrDuplicate.
	query := `INSERT INTO registrations (user_id, event_id, status, registered_at)
	          VALUES ($1, $2, 'REGISTERED', $3)
	          ON CONFLICT (user_id, event_id) DO UPDATE
	              SET status = 'REGISTERED', registered_at = EXCLUDED.registered_at, cancelled_at = NULL
	              WHERE registrations.status = 'CANCELLED'
	          RETURNING id, status`
	logger.DatabaseCall("Register", query, "userID", reg.UserID, "eventID", reg.EventID)
	err := r.db.QueryRowContext(ctx, query, reg.UserID, reg.EventID, reg.RegisteredAt).Scan(&reg.ID, &reg.Status)
	if err != nil {
		logger.DatabaseResult("Register", 0, err)
		if err = mapReadError(err); err == repository.ErrNotFound {
			return repository.ErrDuplicate
		}
		return mapWriteError(err)
	}
	reg.CancelledAt = nil
	logger.DatabaseResult("Register", 1, nil, "registrationID", reg.ID)
	return nil
}

func (r *registrationRepository) GetByUserAndEvent(ctx context.Context, userID, eventID int32) (*domain.Registration, error) {
	reg := &domain.Registration{}
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE user_id = $1 AND event_id = $2`
	if err := scanRegistration(r.db.QueryRowContext(ctx, query, userID, eventID), reg); err != nil {
		return nil, mapReadError(err)
	}
	return reg, nil
}

func (r *registrationRepository) CountActive(ctx context.Context, eventID int32) (int32, error) {
	var count int32
	query := `SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = 'REGISTERED'`
	err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count)
	return count, err
}

func (r *registrationRepository) Transition(ctx context.Context, reg *domain.Registration, from domain.RegistrationStatus) error {
	query := `UPDATE registrations SET status = $1, cancelled_at = $2 WHERE id = $3 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, reg.Status, reg.CancelledAt, reg.ID, from)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Registration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE user_id = $1 ORDER BY registered_at DESC, id DESC`, userID)
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID int32) ([]domain.Registration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE event_id = $1 ORDER BY registered_at, id`, eventID)
}

func (r *registrationRepository) list(ctx context.Context, query string, args ...any) ([]domain.Registration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []domain.Registration
	for rows.Next() {
		var reg domain.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) DeleteByClub(ctx context.Context, clubID int32) error {
	query := `DELETE FROM registrations WHERE event_id IN (SELECT id FROM events WHERE club_id = $1)`
	_, err := r.db.ExecContext(ctx, query, clubID)
	return err
}

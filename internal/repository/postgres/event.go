package postgres

import (
	"context"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/logger"
	"eventhub-backend/internal/repository"
)

type eventRepository struct {
	db DBTX
}

func NewEventRepository(db DBTX) repository.EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, club_id, title, description, location, event_date, capacity, current_registrations, created_on`

func scanEvent(row interface{ Scan(...any) error }, e *domain.Event) error {
	return row.Scan(&e.ID, &e.ClubID, &e.Title, &e.Description, &e.Location, &e.EventDate,
		&e.Capacity, &e.CurrentRegistrations, &e.CreatedOn)
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `INSERT INTO events (club_id, title, description, location, event_date, capacity, current_registrations)
	          VALUES ($1, $2, $3, $4, $5, $6, 0) RETURNING id, current_registrations, created_on`
	err := r.db.QueryRowContext(ctx, query, e.ClubID, e.Title, e.Description, e.Location, e.EventDate, e.Capacity).
		Scan(&e.ID, &e.CurrentRegistrations, &e.CreatedOn)
	return mapWriteError(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id int32) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
}

func (r *eventRepository) getOne(ctx context.Context, query string, id int32) (*domain.Event, error) {
	e := &domain.Event{}
	if err := scanEvent(r.db.QueryRowContext(ctx, query, id), e); err != nil {
		return nil, mapReadError(err)
	}
	return e, nil
}

func (r *eventRepository) ListByClub(ctx context.Context, clubID int32) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events WHERE club_id = $1 ORDER BY event_date, id`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) UpdateCapacity(ctx context.Context, id int32, capacity *int32) error {
	res, err := r.db.ExecContext(ctx, `UPDATE events SET capacity = $1 WHERE id = $2`, capacity, id)
	if err != nil {
		return err
	}
	return expectFound(res)
}

func (r *eventRepository) RefreshOccupancy(ctx context.Context, id int32) (int32, error) {
	query := `UPDATE events
	          SET current_registrations = (
	              SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = 'REGISTERED'
	          )
	          WHERE id = $1
	          RETURNING current_registrations`
	logger.DatabaseCall("RefreshOccupancy", query, "eventID", id)
	var count int32
	err := r.db.QueryRowContext(ctx, query, id).Scan(&count)
	if err != nil {
		logger.DatabaseResult("RefreshOccupancy", 0, err)
		return 0, mapReadError(err)
	}
	logger.DatabaseResult("RefreshOccupancy", 1, nil, "occupancy", count)
	return count, nil
}

func (r *eventRepository) ListIDs(ctx context.Context) ([]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM events ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *eventRepository) DeleteByClub(ctx context.Context, clubID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE club_id = $1`, clubID)
	return err
}

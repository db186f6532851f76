package postgres

import (
	"context"

	"github.com/lib/pq"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/logger"
	"eventhub-backend/internal/repository"
)

type joinRequestRepository struct {
	db DBTX
}

func NewJoinRequestRepository(db DBTX) repository.JoinRequestRepository {
	return &joinRequestRepository{db: db}
}

const joinRequestColumns = `id, requester_id, type, status, target_club_id, requested_name,
	requested_description, message, reviewer_id, created_at, reviewed_at`

func scanJoinRequest(row interface{ Scan(...any) error }, req *domain.ClubJoinRequest) error {
	return row.Scan(&req.ID, &req.RequesterID, &req.Type, &req.Status, &req.TargetClubID, &req.RequestedName,
		&req.RequestedDescription, &req.Message, &req.ReviewerID, &req.CreatedAt, &req.ReviewedAt)
}

func (r *joinRequestRepository) Create(ctx context.Context, req *domain.ClubJoinRequest) error {
	logger.EnterMethod("joinRequestRepository.Create", "requesterID", req.RequesterID, "type", req.Type)
	query := `INSERT INTO club_join_requests
	          (requester_id, type, status, target_club_id, requested_name, requested_description, message, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, req.RequesterID, req.Type, req.Status, req.TargetClubID,
		req.RequestedName, req.RequestedDescription, req.Message, req.CreatedAt).Scan(&req.ID)
	if err != nil {
		logger.ExitMethodWithError("joinRequestRepository.Create", err, "requesterID", req.RequesterID)
		return mapWriteError(err)
	}
	logger.ExitMethod("joinRequestRepository.Create", "requestID", req.ID)
	return nil
}

func (r *joinRequestRepository) GetByID(ctx context.Context, id int32) (*domain.ClubJoinRequest, error) {
	return r.getOne(ctx, `SELECT `+joinRequestColumns+` FROM club_join_requests WHERE id = $1`, id)
}

func (r *joinRequestRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.ClubJoinRequest, error) {
	return r.getOne(ctx, `SELECT `+joinRequestColumns+` FROM club_join_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *joinRequestRepository) getOne(ctx context.Context, query string, id int32) (*domain.ClubJoinRequest, error) {
	req := &domain.ClubJoinRequest{}
	if err := scanJoinRequest(r.db.QueryRowContext(ctx, query, id), req); err != nil {
		return nil, mapReadError(err)
	}
	return req, nil
}

func (r *joinRequestRepository) HasPendingJoin(ctx context.Context, requesterID, clubID int32) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM club_join_requests
	          WHERE requester_id = $1 AND target_club_id = $2 AND type = 'JOIN_CLUB' AND status = 'PENDING')`
	err := r.db.QueryRowContext(ctx, query, requesterID, clubID).Scan(&exists)
	return exists, err
}

func (r *joinRequestRepository) HasPendingCreation(ctx context.Context, requesterID int32) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM club_join_requests
	          WHERE requester_id = $1 AND type = 'CREATE_CLUB' AND status = 'PENDING')`
	err := r.db.QueryRowContext(ctx, query, requesterID).Scan(&exists)
	return exists, err
}

func (r *joinRequestRepository) Transition(ctx context.Context, req *domain.ClubJoinRequest, from domain.RequestStatus) error {
	query := `UPDATE club_join_requests
	          SET status = $1, reviewer_id = $2, reviewed_at = $3, message = $4, target_club_id = $5
	          WHERE id = $6 AND status = $7`
	logger.DatabaseCall("TransitionJoinRequest", query, "requestID", req.ID, "from", from, "to", req.Status)
	res, err := r.db.ExecContext(ctx, query, req.Status, req.ReviewerID, req.ReviewedAt, req.Message, req.TargetClubID, req.ID, from)
	if err != nil {
		logger.DatabaseResult("TransitionJoinRequest", 0, err)
		return err
	}
	err = expectOneRow(res)
	logger.DatabaseResult("TransitionJoinRequest", 1, err)
	return err
}

func (r *joinRequestRepository) ListByRequester(ctx context.Context, requesterID int32) ([]domain.ClubJoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM club_join_requests WHERE requester_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, requesterID)
}

func (r *joinRequestRepository) ListByClub(ctx context.Context, clubID int32, statuses []domain.RequestStatus) ([]domain.ClubJoinRequest, error) {
	if len(statuses) == 0 {
		query := `SELECT ` + joinRequestColumns + ` FROM club_join_requests WHERE target_club_id = $1 ORDER BY created_at, id`
		return r.list(ctx, query, clubID)
	}
	query := `SELECT ` + joinRequestColumns + ` FROM club_join_requests
	          WHERE target_club_id = $1 AND status = ANY($2) ORDER BY created_at, id`
	return r.list(ctx, query, clubID, pq.Array(requestStatusNames(statuses)))
}

func (r *joinRequestRepository) ListByType(ctx context.Context, reqType domain.RequestType, statuses []domain.RequestStatus) ([]domain.ClubJoinRequest, error) {
	if len(statuses) == 0 {
		query := `SELECT ` + joinRequestColumns + ` FROM club_join_requests WHERE type = $1 ORDER BY created_at, id`
		return r.list(ctx, query, reqType)
	}
	query := `SELECT ` + joinRequestColumns + ` FROM club_join_requests
	          WHERE type = $1 AND status = ANY($2) ORDER BY created_at, id`
	return r.list(ctx, query, reqType, pq.Array(requestStatusNames(statuses)))
}

func (r *joinRequestRepository) list(ctx context.Context, query string, args ...any) ([]domain.ClubJoinRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.ClubJoinRequest
	for rows.Next() {
		var req domain.ClubJoinRequest
		if err := scanJoinRequest(rows, &req); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *joinRequestRepository) DeleteByClub(ctx context.Context, clubID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM club_join_requests WHERE target_club_id = $1`, clubID)
	return err
}

func requestStatusNames(statuses []domain.RequestStatus) []string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return names
}

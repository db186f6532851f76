package postgres

import (
	"context"
	"time"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/logger"
	"eventhub-backend/internal/repository"
)

type invitationRepository struct {
	db DBTX
}

func NewInvitationRepository(db DBTX) repository.InvitationRepository {
	return &invitationRepository{db: db}
}

const inviteColumns = `id, club_id, inviter_id, invitee_id, invitee_email, invite_code, status, created_at, expires_at, responded_at`

func scanInvite(row interface{ Scan(...any) error }, inv *domain.ClubInvite) error {
	return row.Scan(&inv.ID, &inv.ClubID, &inv.InviterID, &inv.InviteeID, &inv.InviteeEmail, &inv.InviteCode,
		&inv.Status, &inv.CreatedAt, &inv.ExpiresAt, &inv.RespondedAt)
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.ClubInvite) error {
	query := `INSERT INTO club_invites (club_id, inviter_id, invitee_id, invitee_email, invite_code, status, created_at, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, inv.ClubID, inv.InviterID, inv.InviteeID, inv.InviteeEmail,
		inv.InviteCode, inv.Status, inv.CreatedAt, inv.ExpiresAt).Scan(&inv.ID)
	return mapWriteError(err)
}

func (r *invitationRepository) GetByID(ctx context.Context, id int32) (*domain.ClubInvite, error) {
	return r.getOne(ctx, `SELECT `+inviteColumns+` FROM club_invites WHERE id = $1`, id)
}

func (r *invitationRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.ClubInvite, error) {
	return r.getOne(ctx, `SELECT `+inviteColumns+` FROM club_invites WHERE id = $1 FOR UPDATE`, id)
}

func (r *invitationRepository) GetByCode(ctx context.Context, code string) (*domain.ClubInvite, error) {
	return r.getOne(ctx, `SELECT `+inviteColumns+` FROM club_invites WHERE invite_code = $1`, code)
}

func (r *invitationRepository) GetByCodeForUpdate(ctx context.Context, code string) (*domain.ClubInvite, error) {
	return r.getOne(ctx, `SELECT `+inviteColumns+` FROM club_invites WHERE invite_code = $1 FOR UPDATE`, code)
}

func (r *invitationRepository) getOne(ctx context.Context, query string, arg any) (*domain.ClubInvite, error) {
	inv := &domain.ClubInvite{}
	if err := scanInvite(r.db.QueryRowContext(ctx, query, arg), inv); err != nil {
		return nil, mapReadError(err)
	}
	return inv, nil
}

func (r *invitationRepository) Transition(ctx context.Context, inv *domain.ClubInvite, from domain.InviteStatus) error {
	query := `UPDATE club_invites
	          SET status = $1, invitee_id = $2, invitee_email = $3, responded_at = $4
	          WHERE id = $5 AND status = $6`
	logger.DatabaseCall("TransitionInvite", query, "inviteID", inv.ID, "from", from, "to", inv.Status)
	res, err := r.db.ExecContext(ctx, query, inv.Status, inv.InviteeID, inv.InviteeEmail, inv.RespondedAt, inv.ID, from)
	if err != nil {
		logger.DatabaseResult("TransitionInvite", 0, err)
		return err
	}
	err = expectOneRow(res)
	logger.DatabaseResult("TransitionInvite", 1, err)
	return err
}

func (r *invitationRepository) ListByClub(ctx context.Context, clubID int32) ([]domain.ClubInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM club_invites WHERE club_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, clubID)
}

func (r *invitationRepository) ListByEmailAndStatus(ctx context.Context, email string, status domain.InviteStatus) ([]domain.ClubInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM club_invites WHERE invitee_email = $1 AND status = $2 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, email, status)
}

func (r *invitationRepository) list(ctx context.Context, query string, args ...any) ([]domain.ClubInvite, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []domain.ClubInvite
	for rows.Next() {
		var inv domain.ClubInvite
		if err := scanInvite(rows, &inv); err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (r *invitationRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE club_invites SET status = 'EXPIRED', responded_at = $1
	          WHERE status = 'PENDING' AND expires_at < $1`
	logger.DatabaseCall("ExpireStaleInvites", query)
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		logger.DatabaseResult("ExpireStaleInvites", 0, err)
		return 0, err
	}
	rows, err := res.RowsAffected()
	logger.DatabaseResult("ExpireStaleInvites", rows, err)
	return rows, err
}

func (r *invitationRepository) DeleteByClub(ctx context.Context, clubID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM club_invites WHERE club_id = $1`, clubID)
	return err
}

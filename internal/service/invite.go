package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventhub-backend/internal/clock"
	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/logger"
	"eventhub-backend/internal/repository"
)

const DefaultInviteTTL = 14 * 24 * time.Hour

type inviteService struct {
	store repository.Store
	clock clock.Clock
	email EmailService
	ttl   time.Duration
}

// NewInviteService wires the invite workflow. A non-positive ttl falls back to DefaultInviteTTL.
func NewInviteService(store repository.Store, clk clock.Clock, email EmailService, ttl time.Duration) InviteService {
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	return &inviteService{store: store, clock: clk, email: email, ttl: ttl}
}

func (s *inviteService) Create(ctx context.Context, inviter domain.Actor, in CreateInviteInput) (*domain.ClubInvite, error) {
	logger.EnterMethod("inviteService.Create", "inviterID", inviter.UserID, "clubID", in.ClubID)

	in.InviteeEmail = strings.ToLower(strings.TrimSpace(in.InviteeEmail))
	in.InviteCode = strings.TrimSpace(in.InviteCode)
	if in.InviteeEmail == "" {
		err := domain.NewValidationError("invitee email is required")
		logger.ExitMethodWithError("inviteService.Create", err, "inviterID", inviter.UserID)
		return nil, err
	}
	if err := validateInput(in); err != nil {
		logger.ExitMethodWithError("inviteService.Create", err, "inviterID", inviter.UserID)
		return nil, err
	}

	now := s.clock.Now()
	invite := &domain.ClubInvite{
		ClubID:       in.ClubID,
		InviterID:    inviter.UserID,
		InviteeEmail: in.InviteeEmail,
		InviteCode:   in.InviteCode,
		Status:       domain.InviteStatusPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if invite.InviteCode == "" {
		invite.InviteCode = uuid.NewString()
	}
	if in.ExpiresAt != nil {
		invite.ExpiresAt = *in.ExpiresAt
	}

	var club *domain.Club
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		club, err = repos.Clubs.GetByID(ctx, in.ClubID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("club", in.ClubID)
		}
		if err != nil {
			return err
		}
		allowed, err := canManageClub(ctx, repos, inviter, club)
		if err != nil {
			return err
		}
		if !allowed {
			return domain.NewForbiddenError("user %d may not invite members to club %d", inviter.UserID, club.ID)
		}
		return repos.Invitations.Create(ctx, invite)
	})
	if err != nil {
		err = translate("create invite", err)
		logger.ExitMethodWithError("inviteService.Create", err, "inviterID", inviter.UserID)
		return nil, err
	}

	// Delivery failures never undo a committed invite; the code stays valid and can be resent.
	if s.email != nil {
		if err := s.email.SendClubInvite(ctx, invite.InviteeEmail, club.Name, invite.InviteCode, invite.ExpiresAt); err != nil {
			logger.Warn("Failed to send invite email", "inviteID", invite.ID, "error", err)
		}
	}

	logger.Info("Invite created", "inviteID", invite.ID, "clubID", invite.ClubID)
	logger.ExitMethod("inviteService.Create", "inviteID", invite.ID)
	return invite, nil
}

func (s *inviteService) Accept(ctx context.Context, code string, actor domain.Actor) (*domain.ClubInvite, error) {
	return s.respond(ctx, "accept", code, actor, domain.InviteStatusAccepted)
}

func (s *inviteService) Decline(ctx context.Context, code string, actor domain.Actor) (*domain.ClubInvite, error) {
	return s.respond(ctx, "decline", code, actor, domain.InviteStatusDeclined)
}

// respond drives PENDING -> to for the invite addressed by code. A stale invite moves to EXPIRED
// instead and is returned without error.
func (s *inviteService) respond(ctx context.Context, op, code string, actor domain.Actor, to domain.InviteStatus) (*domain.ClubInvite, error) {
	method := "inviteService." + op
	logger.EnterMethod(method, "actorID", actor.UserID)

	var invite *domain.ClubInvite
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		invite, err = repos.Invitations.GetByCodeForUpdate(ctx, strings.TrimSpace(code))
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewNotFoundError("invite code not found")
		}
		if err != nil {
			return err
		}
		if invite.Status != domain.InviteStatusPending {
			return domain.NewConflictError(domain.ReasonInvalidTransition, "invite %d is %s, not PENDING", invite.ID, invite.Status)
		}

		now := s.clock.Now()
		if invite.IsExpiredAt(now) {
			return s.transition(ctx, repos, invite, domain.InviteStatusExpired, now)
		}
		if invite.InviteeID != nil && *invite.InviteeID != actor.UserID {
			return domain.NewForbiddenError("invite %d is not addressed to user %d", invite.ID, actor.UserID)
		}

		userID := actor.UserID
		invite.InviteeID = &userID
		if email := strings.TrimSpace(actor.Email); email != "" {
			invite.InviteeEmail = strings.ToLower(email)
		}
		if err := s.transition(ctx, repos, invite, to, now); err != nil {
			return err
		}
		if to == domain.InviteStatusAccepted {
			_, err = grantMembership(ctx, repos, invite.ClubID, actor.UserID, domain.MembershipRoleMember)
		}
		return err
	})
	if err != nil {
		err = translate(op+" invite", err)
		logger.ExitMethodWithError(method, err, "actorID", actor.UserID)
		return nil, err
	}

	logger.Info("Invite answered", "inviteID", invite.ID, "clubID", invite.ClubID, "status", invite.Status)
	logger.ExitMethod(method, "inviteID", invite.ID, "status", invite.Status)
	return invite, nil
}

func (s *inviteService) Expire(ctx context.Context, inviteID int32) (*domain.ClubInvite, error) {
	logger.EnterMethod("inviteService.Expire", "inviteID", inviteID)

	var invite *domain.ClubInvite
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		invite, err = repos.Invitations.GetByIDForUpdate(ctx, inviteID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("invite", inviteID)
		}
		if err != nil {
			return err
		}
		if invite.Status != domain.InviteStatusPending {
			return nil
		}
		return s.transition(ctx, repos, invite, domain.InviteStatusExpired, s.clock.Now())
	})
	if err != nil {
		err = translate("expire invite", err)
		logger.ExitMethodWithError("inviteService.Expire", err, "inviteID", inviteID)
		return nil, err
	}

	logger.ExitMethod("inviteService.Expire", "inviteID", inviteID, "status", invite.Status)
	return invite, nil
}

func (s *inviteService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.store.Repos().Invitations.ExpireStale(ctx, s.clock.Now())
	if err != nil {
		return 0, translate("sweep expired invites", err)
	}
	return n, nil
}

func (s *inviteService) transition(ctx context.Context, repos *repository.Repositories, invite *domain.ClubInvite, to domain.InviteStatus, now time.Time) error {
	from := invite.Status
	invite.Status = to
	invite.RespondedAt = &now
	return repos.Invitations.Transition(ctx, invite, from)
}

func (s *inviteService) GetByCode(ctx context.Context, code string) (*domain.ClubInvite, error) {
	invite, err := s.store.Repos().Invitations.GetByCode(ctx, strings.TrimSpace(code))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NewNotFoundError("invite code not found")
	}
	if err != nil {
		return nil, err
	}
	invite.Status = invite.EffectiveStatus(s.clock.Now())
	return invite, nil
}

func (s *inviteService) ListByClub(ctx context.Context, clubID int32) ([]domain.ClubInvite, error) {
	invites, err := s.store.Repos().Invitations.ListByClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for i := range invites {
		invites[i].Status = invites[i].EffectiveStatus(now)
	}
	return invites, nil
}

func (s *inviteService) ListPendingForEmail(ctx context.Context, email string) ([]domain.ClubInvite, error) {
	invites, err := s.store.Repos().Invitations.ListByEmailAndStatus(ctx, strings.ToLower(strings.TrimSpace(email)), domain.InviteStatusPending)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	pending := invites[:0]
	for _, inv := range invites {
		if !inv.IsExpiredAt(now) {
			pending = append(pending, inv)
		}
	}
	return pending, nil
}

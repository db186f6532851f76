package service

import (
	"context"
	"errors"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/logger"
	"eventhub-backend/internal/repository"
)

type membershipService struct {
	store repository.Store
}

func NewMembershipService(store repository.Store) MembershipService {
	return &membershipService{store: store}
}

func (s *membershipService) IsMember(ctx context.Context, clubID, userID int32) (bool, error) {
	return s.store.Repos().Memberships.Exists(ctx, clubID, userID)
}

func (s *membershipService) Get(ctx context.Context, clubID, userID int32) (*domain.ClubMembership, error) {
	m, err := s.store.Repos().Memberships.GetByClubAndUser(ctx, clubID, userID)
	return loadOrNotFound(m, err, "membership of user in club", [2]int32{userID, clubID})
}

func (s *membershipService) ListByClub(ctx context.Context, clubID int32) ([]domain.ClubMembership, error) {
	return s.store.Repos().Memberships.ListByClub(ctx, clubID)
}

func (s *membershipService) ListByUser(ctx context.Context, userID int32) ([]domain.ClubMembership, error) {
	return s.store.Repos().Memberships.ListByUser(ctx, userID)
}

func (s *membershipService) Remove(ctx context.Context, actor domain.Actor, membershipID int32) error {
	logger.EnterMethod("membershipService.Remove", "actorID", actor.UserID, "membershipID", membershipID)

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		m, err := repos.Memberships.GetByID(ctx, membershipID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("membership", membershipID)
		}
		if err != nil {
			return err
		}
		club, err := repos.Clubs.GetByID(ctx, m.ClubID)
		if err != nil {
			return err
		}
		allowed, err := canManageClub(ctx, repos, actor, club)
		if err != nil {
			return err
		}
		if !allowed {
			return domain.NewForbiddenError("user %d may not manage members of club %d", actor.UserID, club.ID)
		}
		if m.UserID == club.AdminID {
			return domain.NewForbiddenError("the club admin's membership cannot be removed")
		}
		return repos.Memberships.Delete(ctx, membershipID)
	})
	if err != nil {
		err = translate("remove membership", err)
		logger.ExitMethodWithError("membershipService.Remove", err, "membershipID", membershipID)
		return err
	}

	logger.ExitMethod("membershipService.Remove", "membershipID", membershipID)
	return nil
}

// canManageClub reports whether the actor is the club's admin owner, one of its officers, or a
// system admin.
func canManageClub(ctx context.Context, repos *repository.Repositories, actor domain.Actor, club *domain.Club) (bool, error) {
	if actor.IsAdmin() || club.AdminID == actor.UserID {
		return true, nil
	}
	m, err := repos.Memberships.GetByClubAndUser(ctx, club.ID, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.Role == domain.MembershipRoleOfficer, nil
}

// grantMembership records (club, user) unless it already exists. Reports whether a row was added.
func grantMembership(ctx context.Context, repos *repository.Repositories, clubID, userID int32, role domain.MembershipRole) (bool, error) {
	return repos.Memberships.Grant(ctx, &domain.ClubMembership{ClubID: clubID, UserID: userID, Role: role})
}

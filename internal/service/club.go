package service

import (
	"context"
	"errors"
	"strings"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/logger"
	"eventhub-backend/internal/repository"
)

type clubService struct {
	store repository.Store
}

func NewClubService(store repository.Store) ClubService {
	return &clubService{store: store}
}

func (s *clubService) Create(ctx context.Context, admin domain.Actor, name, description string, initialStatus domain.ClubStatus) (*domain.Club, error) {
	logger.EnterMethod("clubService.Create", "adminID", admin.UserID, "initialStatus", initialStatus)

	name = strings.TrimSpace(name)
	if name == "" {
		err := domain.NewValidationError("club name is required")
		logger.ExitMethodWithError("clubService.Create", err, "adminID", admin.UserID)
		return nil, err
	}
	status := domain.ClubStatusActive
	if initialStatus == domain.ClubStatusPending {
		status = domain.ClubStatusPending
	}
	club := &domain.Club{
		Name:        name,
		Description: strings.TrimSpace(description),
		AdminID:     admin.UserID,
		Status:      status,
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		return createClub(ctx, repos, club)
	})
	if err != nil {
		err = translate("create club", err)
		logger.ExitMethodWithError("clubService.Create", err, "adminID", admin.UserID)
		return nil, err
	}

	logger.Info("Club created", "clubID", club.ID, "adminID", club.AdminID, "status", club.Status)
	logger.ExitMethod("clubService.Create", "clubID", club.ID)
	return club, nil
}

// createClub inserts the club after checking the admin holds no other PENDING or ACTIVE club.
// The partial unique index on clubs backs the check against concurrent creators.
func createClub(ctx context.Context, repos *repository.Repositories, club *domain.Club) error {
	existing, err := repos.Clubs.FindActiveOrPendingByAdmin(ctx, club.AdminID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing != nil {
		return domain.NewConflictError(domain.ReasonAlreadyManagesClub,
			"user %d already manages club %d", club.AdminID, existing.ID)
	}
	return repos.Clubs.Create(ctx, club)
}

func (s *clubService) Get(ctx context.Context, clubID int32) (*domain.Club, error) {
	club, err := s.store.Repos().Clubs.GetByID(ctx, clubID)
	return loadOrNotFound(club, err, "club", clubID)
}

func (s *clubService) FindActiveOrPendingForAdmin(ctx context.Context, adminID int32) (*domain.Club, error) {
	club, err := s.store.Repos().Clubs.FindActiveOrPendingByAdmin(ctx, adminID)
	return loadOrNotFound(club, err, "club for admin", adminID)
}

func (s *clubService) HasActiveClub(ctx context.Context, adminID int32) (bool, error) {
	return s.store.Repos().Clubs.ExistsByAdminAndStatus(ctx, adminID, domain.ClubStatusActive)
}

func (s *clubService) ListByStatuses(ctx context.Context, statuses ...domain.ClubStatus) ([]domain.Club, error) {
	return s.store.Repos().Clubs.ListByStatuses(ctx, statuses)
}

func (s *clubService) SetStatus(ctx context.Context, clubID int32, status domain.ClubStatus) (*domain.Club, error) {
	logger.EnterMethod("clubService.SetStatus", "clubID", clubID, "status", status)
	if _, err := domain.ParseClubStatus(string(status)); err != nil {
		return nil, err
	}

	var club *domain.Club
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		club, err = repos.Clubs.GetByIDForUpdate(ctx, clubID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("club", clubID)
		}
		if err != nil {
			return err
		}
		if club.Status == status {
			return nil
		}
		if err := repos.Clubs.UpdateStatus(ctx, clubID, status); err != nil {
			return err
		}
		club.Status = status
		return nil
	})
	if err != nil {
		err = translate("set club status", err)
		logger.ExitMethodWithError("clubService.SetStatus", err, "clubID", clubID)
		return nil, err
	}

	logger.ExitMethod("clubService.SetStatus", "clubID", clubID, "status", club.Status)
	return club, nil
}

func (s *clubService) Delete(ctx context.Context, clubID int32) error {
	logger.EnterMethod("clubService.Delete", "clubID", clubID)

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		if _, err := repos.Clubs.GetByIDForUpdate(ctx, clubID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("club", clubID)
			}
			return err
		}
		// Dependents go first; every foreign key points at clubs or events.
		if err := repos.Registrations.DeleteByClub(ctx, clubID); err != nil {
			return err
		}
		if err := repos.Events.DeleteByClub(ctx, clubID); err != nil {
			return err
		}
		if err := repos.Invitations.DeleteByClub(ctx, clubID); err != nil {
			return err
		}
		if err := repos.JoinRequests.DeleteByClub(ctx, clubID); err != nil {
			return err
		}
		if err := repos.Memberships.DeleteByClub(ctx, clubID); err != nil {
			return err
		}
		return repos.Clubs.Delete(ctx, clubID)
	})
	if err != nil {
		err = translate("delete club", err)
		logger.ExitMethodWithError("clubService.Delete", err, "clubID", clubID)
		return err
	}

	logger.Info("Club deleted", "clubID", clubID)
	logger.ExitMethod("clubService.Delete", "clubID", clubID)
	return nil
}

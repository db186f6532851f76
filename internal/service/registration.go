package service

import (
	"context"
	"errors"
	"strings"

	"eventhub-backend/internal/clock"
	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/logger"
	"eventhub-backend/internal/repository"
)

type registrationService struct {
	store repository.Store
	clock clock.Clock
}

func NewRegistrationService(store repository.Store, clk clock.Clock) RegistrationService {
	return &registrationService{store: store, clock: clk}
}

func (s *registrationService) Register(ctx context.Context, user domain.Actor, eventID int32) (*domain.Registration, error) {
	logger.EnterMethod("registrationService.Register", "userID", user.UserID, "eventID", eventID)

	reg := &domain.Registration{UserID: user.UserID, EventID: eventID, RegisteredAt: s.clock.Now()}
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		// Every admission decision for an event serializes on its row lock.
		event, err := lockEvent(ctx, repos, eventID)
		if err != nil {
			return err
		}
		club, err := repos.Clubs.GetByID(ctx, event.ClubID)
		if err != nil {
			return err
		}
		if club.Status != domain.ClubStatusActive {
			return domain.NewClubInactiveError(club.ID)
		}

		existing, err := repos.Registrations.GetByUserAndEvent(ctx, user.UserID, eventID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if existing != nil && existing.Status != domain.RegistrationStatusCancelled {
			return domain.NewConflictError(domain.ReasonAlreadyRegistered, "user %d is already registered for event %d", user.UserID, eventID)
		}

		occupancy, err := repos.Registrations.CountActive(ctx, eventID)
		if err != nil {
			return err
		}
		if !event.HasRoom(occupancy) {
			return domain.NewConflictError(domain.ReasonCapacityExceeded, "event %d is at capacity (%d)", eventID, *event.Capacity)
		}

		if err := repos.Registrations.Register(ctx, reg); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return domain.NewConflictError(domain.ReasonAlreadyRegistered, "user %d is already registered for event %d", user.UserID, eventID)
			}
			return err
		}
		_, err = repos.Events.RefreshOccupancy(ctx, eventID)
		return err
	})
	if err != nil {
		err = translate("register for event", err)
		logger.ExitMethodWithError("registrationService.Register", err, "userID", user.UserID, "eventID", eventID)
		return nil, err
	}

	logger.Info("Registered for event", "registrationID", reg.ID, "userID", reg.UserID, "eventID", eventID)
	logger.ExitMethod("registrationService.Register", "registrationID", reg.ID)
	return reg, nil
}

func (s *registrationService) Cancel(ctx context.Context, user domain.Actor, eventID int32) (*domain.Registration, error) {
	logger.EnterMethod("registrationService.Cancel", "userID", user.UserID, "eventID", eventID)

	var reg *domain.Registration
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		if _, err := lockEvent(ctx, repos, eventID); err != nil {
			return err
		}
		var err error
		reg, err = repos.Registrations.GetByUserAndEvent(ctx, user.UserID, eventID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && reg.Status != domain.RegistrationStatusRegistered) {
			return domain.NewNotFoundError("user %d has no registration for event %d", user.UserID, eventID)
		}
		if err != nil {
			return err
		}

		now := s.clock.Now()
		reg.Status = domain.RegistrationStatusCancelled
		reg.CancelledAt = &now
		if err := repos.Registrations.Transition(ctx, reg, domain.RegistrationStatusRegistered); err != nil {
			return err
		}
		_, err = repos.Events.RefreshOccupancy(ctx, eventID)
		return err
	})
	if err != nil {
		err = translate("cancel registration", err)
		logger.ExitMethodWithError("registrationService.Cancel", err, "userID", user.UserID, "eventID", eventID)
		return nil, err
	}

	logger.Info("Registration cancelled", "registrationID", reg.ID, "eventID", eventID)
	logger.ExitMethod("registrationService.Cancel", "registrationID", reg.ID)
	return reg, nil
}

func lockEvent(ctx context.Context, repos *repository.Repositories, eventID int32) (*domain.Event, error) {
	event, err := repos.Events.GetByIDForUpdate(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("event", eventID)
	}
	return event, err
}

func (s *registrationService) Get(ctx context.Context, userID, eventID int32) (*domain.Registration, error) {
	reg, err := s.store.Repos().Registrations.GetByUserAndEvent(ctx, userID, eventID)
	return loadOrNotFound(reg, err, "registration", [2]int32{userID, eventID})
}

func (s *registrationService) ListByUser(ctx context.Context, userID int32) ([]domain.Registration, error) {
	return s.store.Repos().Registrations.ListByUser(ctx, userID)
}

func (s *registrationService) ListByEvent(ctx context.Context, eventID int32) ([]domain.Registration, error) {
	return s.store.Repos().Registrations.ListByEvent(ctx, eventID)
}

func (s *registrationService) CreateEvent(ctx context.Context, actor domain.Actor, in CreateEventInput) (*domain.Event, error) {
	logger.EnterMethod("registrationService.CreateEvent", "actorID", actor.UserID, "clubID", in.ClubID)

	if in.Capacity != nil && *in.Capacity <= 0 {
		err := domain.NewValidationError("capacity must be positive")
		logger.ExitMethodWithError("registrationService.CreateEvent", err, "clubID", in.ClubID)
		return nil, err
	}
	if err := validateInput(in); err != nil {
		logger.ExitMethodWithError("registrationService.CreateEvent", err, "clubID", in.ClubID)
		return nil, err
	}

	event := &domain.Event{
		ClubID:      in.ClubID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		EventDate:   in.EventDate,
		Capacity:    in.Capacity,
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		club, err := repos.Clubs.GetByID(ctx, in.ClubID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("club", in.ClubID)
		}
		if err != nil {
			return err
		}
		if err := authorizeClubManager(ctx, repos, actor, club); err != nil {
			return err
		}
		if club.Status != domain.ClubStatusActive {
			return domain.NewClubInactiveError(club.ID)
		}
		return repos.Events.Create(ctx, event)
	})
	if err != nil {
		err = translate("create event", err)
		logger.ExitMethodWithError("registrationService.CreateEvent", err, "clubID", in.ClubID)
		return nil, err
	}

	logger.Info("Event created", "eventID", event.ID, "clubID", event.ClubID)
	logger.ExitMethod("registrationService.CreateEvent", "eventID", event.ID)
	return event, nil
}

func (s *registrationService) UpdateCapacity(ctx context.Context, actor domain.Actor, eventID int32, capacity *int32) (*domain.Event, error) {
	logger.EnterMethod("registrationService.UpdateCapacity", "actorID", actor.UserID, "eventID", eventID)

	if capacity != nil && *capacity <= 0 {
		err := domain.NewValidationError("capacity must be positive")
		logger.ExitMethodWithError("registrationService.UpdateCapacity", err, "eventID", eventID)
		return nil, err
	}

	var event *domain.Event
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		event, err = lockEvent(ctx, repos, eventID)
		if err != nil {
			return err
		}
		club, err := repos.Clubs.GetByID(ctx, event.ClubID)
		if err != nil {
			return err
		}
		if err := authorizeClubManager(ctx, repos, actor, club); err != nil {
			return err
		}
		occupancy, err := repos.Registrations.CountActive(ctx, eventID)
		if err != nil {
			return err
		}
		if capacity != nil && *capacity < occupancy {
			return domain.NewValidationError("capacity %d is below the %d current registrations", *capacity, occupancy)
		}
		if err := repos.Events.UpdateCapacity(ctx, eventID, capacity); err != nil {
			return err
		}
		event.Capacity = capacity
		event.CurrentRegistrations = occupancy
		return nil
	})
	if err != nil {
		err = translate("update event capacity", err)
		logger.ExitMethodWithError("registrationService.UpdateCapacity", err, "eventID", eventID)
		return nil, err
	}

	logger.ExitMethod("registrationService.UpdateCapacity", "eventID", eventID)
	return event, nil
}

func (s *registrationService) ReconcileOccupancy(ctx context.Context) (int, error) {
	ids, err := s.store.Repos().Events.ListIDs(ctx)
	if err != nil {
		return 0, translate("list events", err)
	}

	corrected := 0
	for _, id := range ids {
		drifted := false
		err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
			drifted = false
			event, err := repos.Events.GetByIDForUpdate(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			count, err := repos.Events.RefreshOccupancy(ctx, id)
			if err != nil {
				return err
			}
			if count != event.CurrentRegistrations {
				logger.Warn("Event occupancy drift corrected", "eventID", id, "cached", event.CurrentRegistrations, "actual", count)
				drifted = true
			}
			return nil
		})
		if err != nil {
			return corrected, translate("reconcile event occupancy", err)
		}
		if drifted {
			corrected++
		}
	}
	return corrected, nil
}

func authorizeClubManager(ctx context.Context, repos *repository.Repositories, actor domain.Actor, club *domain.Club) error {
	allowed, err := canManageClub(ctx, repos, actor, club)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.NewForbiddenError("user %d may not manage events of club %d", actor.UserID, club.ID)
	}
	return nil
}

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

type joinRequestService struct {
	store repository.Store
	clock clock.Clock
}

func NewJoinRequestService(store repository.Store, clk clock.Clock) JoinRequestService {
	return &joinRequestService{store: store, clock: clk}
}

func (s *joinRequestService) Create(ctx context.Context, requester domain.Actor, in CreateJoinRequestInput) (*domain.ClubJoinRequest, error) {
	logger.EnterMethod("joinRequestService.Create", "requesterID", requester.UserID, "type", in.Type)

	if in.Type == domain.RequestTypeJoinClub && in.TargetClubID == 0 {
		err := domain.NewValidationError("target club is required for join requests")
		logger.ExitMethodWithError("joinRequestService.Create", err, "requesterID", requester.UserID)
		return nil, err
	}
	if err := validateInput(in); err != nil {
		logger.ExitMethodWithError("joinRequestService.Create", err, "requesterID", requester.UserID)
		return nil, err
	}

	req := &domain.ClubJoinRequest{
		RequesterID:          requester.UserID,
		Type:                 in.Type,
		Status:               domain.RequestStatusPending,
		RequestedName:        strings.TrimSpace(in.RequestedName),
		RequestedDescription: strings.TrimSpace(in.RequestedDescription),
		Message:              strings.TrimSpace(in.Message),
		CreatedAt:            s.clock.Now(),
	}
	if in.Type == domain.RequestTypeJoinClub {
		target := in.TargetClubID
		req.TargetClubID = &target
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		switch req.Type {
		case domain.RequestTypeJoinClub:
			if err := s.guardJoin(ctx, repos, req.RequesterID, *req.TargetClubID); err != nil {
				return err
			}
		case domain.RequestTypeCreateClub:
			if err := s.guardCreation(ctx, repos, req.RequesterID); err != nil {
				return err
			}
		}
		return repos.JoinRequests.Create(ctx, req)
	})
	if err != nil {
		err = translate("create join request", err)
		logger.ExitMethodWithError("joinRequestService.Create", err, "requesterID", requester.UserID)
		return nil, err
	}

	logger.Info("Join request created", "requestID", req.ID, "requesterID", req.RequesterID, "type", req.Type)
	logger.ExitMethod("joinRequestService.Create", "requestID", req.ID)
	return req, nil
}

func (s *joinRequestService) guardJoin(ctx context.Context, repos *repository.Repositories, requesterID, clubID int32) error {
	if _, err := repos.Clubs.GetByID(ctx, clubID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("club", clubID)
		}
		return err
	}
	member, err := repos.Memberships.Exists(ctx, clubID, requesterID)
	if err != nil {
		return err
	}
	if member {
		return domain.NewConflictError(domain.ReasonAlreadyMember, "user %d is already a member of club %d", requesterID, clubID)
	}
	pending, err := repos.JoinRequests.HasPendingJoin(ctx, requesterID, clubID)
	if err != nil {
		return err
	}
	if pending {
		return domain.NewConflictError(domain.ReasonDuplicatePendingRequest, "user %d already has a pending request for club %d", requesterID, clubID)
	}
	return nil
}

func (s *joinRequestService) guardCreation(ctx context.Context, repos *repository.Repositories, requesterID int32) error {
	pending, err := repos.JoinRequests.HasPendingCreation(ctx, requesterID)
	if err != nil {
		return err
	}
	if pending {
		return domain.NewConflictError(domain.ReasonDuplicatePendingRequest, "user %d already has a pending club creation request", requesterID)
	}
	club, err := repos.Clubs.FindActiveOrPendingByAdmin(ctx, requesterID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if club != nil {
		return domain.NewConflictError(domain.ReasonAlreadyManagesClub, "user %d already manages club %d", requesterID, club.ID)
	}
	return nil
}

func (s *joinRequestService) ApproveJoinRequest(ctx context.Context, requestID int32, reviewer domain.Actor) (*domain.ClubJoinRequest, error) {
	logger.EnterMethod("joinRequestService.ApproveJoinRequest", "requestID", requestID, "reviewerID", reviewer.UserID)

	var req *domain.ClubJoinRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		req, err = lockPendingRequest(ctx, repos, requestID)
		if err != nil {
			return err
		}
		if req.Type != domain.RequestTypeJoinClub {
			return domain.NewValidationError("request %d is not a join request", requestID)
		}
		if err := s.authorizeReview(ctx, repos, reviewer, req); err != nil {
			return err
		}
		if err := s.transition(ctx, repos, req, domain.RequestStatusApproved, &reviewer); err != nil {
			return err
		}
		_, err = grantMembership(ctx, repos, *req.TargetClubID, req.RequesterID, domain.MembershipRoleMember)
		return err
	})
	if err != nil {
		err = translate("approve join request", err)
		logger.ExitMethodWithError("joinRequestService.ApproveJoinRequest", err, "requestID", requestID)
		return nil, err
	}

	logger.Info("Join request approved", "requestID", req.ID, "clubID", *req.TargetClubID, "requesterID", req.RequesterID)
	logger.ExitMethod("joinRequestService.ApproveJoinRequest", "requestID", requestID)
	return req, nil
}

func (s *joinRequestService) ApproveClubCreation(ctx context.Context, requestID int32, reviewer domain.Actor, createdClubID int32) (*domain.ClubJoinRequest, error) {
	logger.EnterMethod("joinRequestService.ApproveClubCreation", "requestID", requestID, "clubID", createdClubID)

	if createdClubID == 0 {
		err := domain.NewValidationError("created club must be provided")
		logger.ExitMethodWithError("joinRequestService.ApproveClubCreation", err, "requestID", requestID)
		return nil, err
	}

	var req *domain.ClubJoinRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		req, err = s.lockCreationRequest(ctx, repos, requestID, reviewer)
		if err != nil {
			return err
		}
		club, err := repos.Clubs.GetByIDForUpdate(ctx, createdClubID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("club", createdClubID)
		}
		if err != nil {
			return err
		}
		if err := checkCreatedClub(req, club); err != nil {
			return err
		}
		return s.completeCreation(ctx, repos, req, club, reviewer)
	})
	if err != nil {
		err = translate("approve club creation", err)
		logger.ExitMethodWithError("joinRequestService.ApproveClubCreation", err, "requestID", requestID)
		return nil, err
	}

	logger.Info("Club creation approved", "requestID", req.ID, "clubID", createdClubID, "requesterID", req.RequesterID)
	logger.ExitMethod("joinRequestService.ApproveClubCreation", "requestID", requestID)
	return req, nil
}

func (s *joinRequestService) ApproveAndCreateClub(ctx context.Context, requestID int32, reviewer domain.Actor) (*domain.ClubJoinRequest, *domain.Club, error) {
	logger.EnterMethod("joinRequestService.ApproveAndCreateClub", "requestID", requestID, "reviewerID", reviewer.UserID)

	var (
		req  *domain.ClubJoinRequest
		club *domain.Club
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		req, err = s.lockCreationRequest(ctx, repos, requestID, reviewer)
		if err != nil {
			return err
		}
		if strings.TrimSpace(req.RequestedName) == "" {
			return domain.NewValidationError("request %d has no requested club name", requestID)
		}
		club = &domain.Club{
			Name:        req.RequestedName,
			Description: req.RequestedDescription,
			AdminID:     req.RequesterID,
			Status:      domain.ClubStatusActive,
		}
		if err := createClub(ctx, repos, club); err != nil {
			return err
		}
		return s.completeCreation(ctx, repos, req, club, reviewer)
	})
	if err != nil {
		err = translate("approve and create club", err)
		logger.ExitMethodWithError("joinRequestService.ApproveAndCreateClub", err, "requestID", requestID)
		return nil, nil, err
	}

	logger.Info("Club created from request", "requestID", req.ID, "clubID", club.ID, "adminID", club.AdminID)
	logger.ExitMethod("joinRequestService.ApproveAndCreateClub", "requestID", requestID, "clubID", club.ID)
	return req, club, nil
}

// lockCreationRequest loads a PENDING CREATE_CLUB request under lock for a system admin reviewer.
func (s *joinRequestService) lockCreationRequest(ctx context.Context, repos *repository.Repositories, requestID int32, reviewer domain.Actor) (*domain.ClubJoinRequest, error) {
	if !reviewer.IsAdmin() {
		return nil, domain.NewForbiddenError("only administrators may decide club creation requests")
	}
	req, err := lockPendingRequest(ctx, repos, requestID)
	if err != nil {
		return nil, err
	}
	if req.Type != domain.RequestTypeCreateClub {
		return nil, domain.NewValidationError("request %d is not a club creation request", requestID)
	}
	return req, nil
}

// checkCreatedClub accepts only the requester's own PENDING club. An ACTIVE club owned by the
// requester means the requester already manages a club.
func checkCreatedClub(req *domain.ClubJoinRequest, club *domain.Club) error {
	if club.AdminID != req.RequesterID {
		return domain.NewValidationError("club %d is not administered by requester %d", club.ID, req.RequesterID)
	}
	switch club.Status {
	case domain.ClubStatusPending:
		return nil
	case domain.ClubStatusActive:
		return domain.NewConflictError(domain.ReasonAlreadyManagesClub, "user %d already has an active club", club.AdminID)
	default:
		return domain.NewConflictError(domain.ReasonInvalidTransition, "club %d is %s, expected %s", club.ID, club.Status, domain.ClubStatusPending)
	}
}

// completeCreation binds the club to the request, activates it, promotes the requester and
// grants the OFFICER membership. The request row is already locked by the caller.
func (s *joinRequestService) completeCreation(ctx context.Context, repos *repository.Repositories, req *domain.ClubJoinRequest, club *domain.Club, reviewer domain.Actor) error {
	if club.Status != domain.ClubStatusActive {
		active, err := repos.Clubs.ExistsByAdminAndStatus(ctx, club.AdminID, domain.ClubStatusActive)
		if err != nil {
			return err
		}
		if active {
			return domain.NewConflictError(domain.ReasonAlreadyManagesClub, "user %d already has an active club", club.AdminID)
		}
		if err := repos.Clubs.UpdateStatus(ctx, club.ID, domain.ClubStatusActive); err != nil {
			return err
		}
		club.Status = domain.ClubStatusActive
	}

	clubID := club.ID
	req.TargetClubID = &clubID
	if err := s.transition(ctx, repos, req, domain.RequestStatusApproved, &reviewer); err != nil {
		return err
	}
	if _, err := repos.Users.PromoteToClubAdmin(ctx, req.RequesterID); err != nil {
		return err
	}
	_, err := grantMembership(ctx, repos, club.ID, req.RequesterID, domain.MembershipRoleOfficer)
	return err
}

func (s *joinRequestService) Reject(ctx context.Context, requestID int32, reviewer domain.Actor, message string) (*domain.ClubJoinRequest, error) {
	logger.EnterMethod("joinRequestService.Reject", "requestID", requestID, "reviewerID", reviewer.UserID)

	var req *domain.ClubJoinRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		req, err = lockPendingRequest(ctx, repos, requestID)
		if err != nil {
			return err
		}
		if err := s.authorizeReview(ctx, repos, reviewer, req); err != nil {
			return err
		}
		if msg := strings.TrimSpace(message); msg != "" {
			req.Message = msg
		}
		return s.transition(ctx, repos, req, domain.RequestStatusRejected, &reviewer)
	})
	if err != nil {
		err = translate("reject join request", err)
		logger.ExitMethodWithError("joinRequestService.Reject", err, "requestID", requestID)
		return nil, err
	}

	logger.ExitMethod("joinRequestService.Reject", "requestID", requestID)
	return req, nil
}

func (s *joinRequestService) Cancel(ctx context.Context, requestID int32, requester domain.Actor) (*domain.ClubJoinRequest, error) {
	logger.EnterMethod("joinRequestService.Cancel", "requestID", requestID, "requesterID", requester.UserID)

	var req *domain.ClubJoinRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		req, err = lockPendingRequest(ctx, repos, requestID)
		if err != nil {
			return err
		}
		if req.RequesterID != requester.UserID {
			return domain.NewForbiddenError("only the requester may cancel request %d", requestID)
		}
		return s.transition(ctx, repos, req, domain.RequestStatusCancelled, nil)
	})
	if err != nil {
		err = translate("cancel join request", err)
		logger.ExitMethodWithError("joinRequestService.Cancel", err, "requestID", requestID)
		return nil, err
	}

	logger.ExitMethod("joinRequestService.Cancel", "requestID", requestID)
	return req, nil
}

// lockPendingRequest loads the request FOR UPDATE and rejects any non-PENDING state.
func lockPendingRequest(ctx context.Context, repos *repository.Repositories, requestID int32) (*domain.ClubJoinRequest, error) {
	req, err := repos.JoinRequests.GetByIDForUpdate(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("join request", requestID)
	}
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RequestStatusPending {
		return nil, domain.NewConflictError(domain.ReasonInvalidTransition, "request %d is %s, not PENDING", requestID, req.Status)
	}
	return req, nil
}

// authorizeReview: CREATE_CLUB decisions belong to system admins; JOIN_CLUB decisions to anyone
// who can manage the target club.
func (s *joinRequestService) authorizeReview(ctx context.Context, repos *repository.Repositories, reviewer domain.Actor, req *domain.ClubJoinRequest) error {
	if req.Type == domain.RequestTypeCreateClub {
		if !reviewer.IsAdmin() {
			return domain.NewForbiddenError("only administrators may decide club creation requests")
		}
		return nil
	}
	club, err := repos.Clubs.GetByID(ctx, *req.TargetClubID)
	if err != nil {
		return err
	}
	allowed, err := canManageClub(ctx, repos, reviewer, club)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.NewForbiddenError("user %d may not review requests for club %d", reviewer.UserID, club.ID)
	}
	return nil
}

func (s *joinRequestService) transition(ctx context.Context, repos *repository.Repositories, req *domain.ClubJoinRequest, to domain.RequestStatus, reviewer *domain.Actor) error {
	now := s.clock.Now()
	from := req.Status
	req.Status = to
	req.ReviewedAt = &now
	if reviewer != nil {
		id := reviewer.UserID
		req.ReviewerID = &id
	}
	return repos.JoinRequests.Transition(ctx, req, from)
}

func (s *joinRequestService) Get(ctx context.Context, requestID int32) (*domain.ClubJoinRequest, error) {
	req, err := s.store.Repos().JoinRequests.GetByID(ctx, requestID)
	return loadOrNotFound(req, err, "join request", requestID)
}

func (s *joinRequestService) ListByRequester(ctx context.Context, requesterID int32) ([]domain.ClubJoinRequest, error) {
	return s.store.Repos().JoinRequests.ListByRequester(ctx, requesterID)
}

func (s *joinRequestService) ListByClub(ctx context.Context, clubID int32, statuses ...domain.RequestStatus) ([]domain.ClubJoinRequest, error) {
	return s.store.Repos().JoinRequests.ListByClub(ctx, clubID, statuses)
}

func (s *joinRequestService) ListByType(ctx context.Context, reqType domain.RequestType, statuses ...domain.RequestStatus) ([]domain.ClubJoinRequest, error) {
	return s.store.Repos().JoinRequests.ListByType(ctx, reqType, statuses)
}

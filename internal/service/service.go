package service

import (
	"context"
	"time"

	"eventhub-backend/internal/clock"
	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/repository"
)

type ClubService interface {
	Create(ctx context.Context, admin domain.Actor, name, description string, initialStatus domain.ClubStatus) (*domain.Club, error)
	Get(ctx context.Context, clubID int32) (*domain.Club, error)
	FindActiveOrPendingForAdmin(ctx context.Context, adminID int32) (*domain.Club, error)
	HasActiveClub(ctx context.Context, adminID int32) (bool, error)
	ListByStatuses(ctx context.Context, statuses ...domain.ClubStatus) ([]domain.Club, error)
	SetStatus(ctx context.Context, clubID int32, status domain.ClubStatus) (*domain.Club, error)
	Delete(ctx context.Context, clubID int32) error
}

type MembershipService interface {
	IsMember(ctx context.Context, clubID, userID int32) (bool, error)
	Get(ctx context.Context, clubID, userID int32) (*domain.ClubMembership, error)
	ListByClub(ctx context.Context, clubID int32) ([]domain.ClubMembership, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.ClubMembership, error)
	Remove(ctx context.Context, actor domain.Actor, membershipID int32) error
}

type CreateJoinRequestInput struct {
	Type                 domain.RequestType `validate:"required,oneof=CREATE_CLUB JOIN_CLUB"`
	TargetClubID         int32              `validate:"required_if=Type JOIN_CLUB"`
	RequestedName        string             `validate:"required_if=Type CREATE_CLUB,max=200"`
	RequestedDescription string             `validate:"max=2000"`
	Message              string             `validate:"max=2000"`
}

type JoinRequestService interface {
	Create(ctx context.Context, requester domain.Actor, in CreateJoinRequestInput) (*domain.ClubJoinRequest, error)
	ApproveJoinRequest(ctx context.Context, requestID int32, reviewer domain.Actor) (*domain.ClubJoinRequest, error)
	ApproveClubCreation(ctx context.Context, requestID int32, reviewer domain.Actor, createdClubID int32) (*domain.ClubJoinRequest, error)
	// ApproveAndCreateClub creates the requested club and approves the request in one unit.
	ApproveAndCreateClub(ctx context.Context, requestID int32, reviewer domain.Actor) (*domain.ClubJoinRequest, *domain.Club, error)
	Reject(ctx context.Context, requestID int32, reviewer domain.Actor, message string) (*domain.ClubJoinRequest, error)
	Cancel(ctx context.Context, requestID int32, requester domain.Actor) (*domain.ClubJoinRequest, error)
	Get(ctx context.Context, requestID int32) (*domain.ClubJoinRequest, error)
	ListByRequester(ctx context.Context, requesterID int32) ([]domain.ClubJoinRequest, error)
	ListByClub(ctx context.Context, clubID int32, statuses ...domain.RequestStatus) ([]domain.ClubJoinRequest, error)
	ListByType(ctx context.Context, reqType domain.RequestType, statuses ...domain.RequestStatus) ([]domain.ClubJoinRequest, error)
}

type CreateInviteInput struct {
	ClubID       int32  `validate:"required"`
	InviteeEmail string `validate:"required,email"`
	// InviteCode and ExpiresAt are optional; a random code and the configured TTL are used otherwise.
	InviteCode string `validate:"omitempty,max=64"`
	ExpiresAt  *time.Time
}

type InviteService interface {
	Create(ctx context.Context, inviter domain.Actor, in CreateInviteInput) (*domain.ClubInvite, error)
	Accept(ctx context.Context, code string, actor domain.Actor) (*domain.ClubInvite, error)
	Decline(ctx context.Context, code string, actor domain.Actor) (*domain.ClubInvite, error)
	Expire(ctx context.Context, inviteID int32) (*domain.ClubInvite, error)
	// SweepExpired bulk-expires stale PENDING invites and returns how many changed.
	SweepExpired(ctx context.Context) (int64, error)
	GetByCode(ctx context.Context, code string) (*domain.ClubInvite, error)
	ListByClub(ctx context.Context, clubID int32) ([]domain.ClubInvite, error)
	ListPendingForEmail(ctx context.Context, email string) ([]domain.ClubInvite, error)
}

type CreateEventInput struct {
	ClubID      int32     `validate:"required"`
	Title       string    `validate:"required,max=200"`
	Description string    `validate:"max=4000"`
	Location    string    `validate:"max=200"`
	EventDate   time.Time `validate:"required"`
	Capacity    *int32    `validate:"omitempty,gt=0"`
}

type RegistrationService interface {
	Register(ctx context.Context, user domain.Actor, eventID int32) (*domain.Registration, error)
	Cancel(ctx context.Context, user domain.Actor, eventID int32) (*domain.Registration, error)
	Get(ctx context.Context, userID, eventID int32) (*domain.Registration, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.Registration, error)
	ListByEvent(ctx context.Context, eventID int32) ([]domain.Registration, error)

	CreateEvent(ctx context.Context, actor domain.Actor, in CreateEventInput) (*domain.Event, error)
	UpdateCapacity(ctx context.Context, actor domain.Actor, eventID int32, capacity *int32) (*domain.Event, error)
	// ReconcileOccupancy recomputes every event's cached registration count from the rows.
	ReconcileOccupancy(ctx context.Context) (int, error)
}

type EmailService interface {
	SendClubInvite(ctx context.Context, email, clubName, inviteCode string, expiresAt time.Time) error
}

// Services bundles every core service over one store, the way the entrypoints wire them.
type Services struct {
	Clubs         ClubService
	Memberships   MembershipService
	JoinRequests  JoinRequestService
	Invites       InviteService
	Registrations RegistrationService
}

func NewServices(store repository.Store, clk clock.Clock, email EmailService, inviteTTL time.Duration) *Services {
	return &Services{
		Clubs:         NewClubService(store),
		Memberships:   NewMembershipService(store),
		JoinRequests:  NewJoinRequestService(store, clk),
		Invites:       NewInviteService(store, clk, email, inviteTTL),
		Registrations: NewRegistrationService(store, clk),
	}
}

package repository

import (
	"context"
	"errors"
	"time"

	"eventhub-backend/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup by key matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrConcurrentUpdate is returned when a conditional update affected zero rows
	// because the row no longer holds the expected state.
	ErrConcurrentUpdate = errors.New("row state changed concurrently")
	// ErrDuplicate wraps a unique-constraint violation.
	ErrDuplicate = errors.New("duplicate key")
	// ErrContention is returned once transient lock/serialization failures exhaust the retry budget.
	ErrContention = errors.New("storage contention")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	// PromoteToClubAdmin upgrades a STUDENT; it never demotes. Reports whether a row changed.
	PromoteToClubAdmin(ctx context.Context, id int32) (bool, error)
}

type ClubRepository interface {
	Create(ctx context.Context, club *domain.Club) error
	GetByID(ctx context.Context, id int32) (*domain.Club, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Club, error)
	FindActiveOrPendingByAdmin(ctx context.Context, adminID int32) (*domain.Club, error)
	ExistsByAdminAndStatus(ctx context.Context, adminID int32, status domain.ClubStatus) (bool, error)
	ListByStatuses(ctx context.Context, statuses []domain.ClubStatus) ([]domain.Club, error)
	UpdateStatus(ctx context.Context, id int32, status domain.ClubStatus) error
	Delete(ctx context.Context, id int32) error
}

type MembershipRepository interface {
	// Grant inserts the membership unless (club, user) already exists. Reports whether a row was inserted.
	Grant(ctx context.Context, m *domain.ClubMembership) (bool, error)
	Exists(ctx context.Context, clubID, userID int32) (bool, error)
	GetByID(ctx context.Context, id int32) (*domain.ClubMembership, error)
	GetByClubAndUser(ctx context.Context, clubID, userID int32) (*domain.ClubMembership, error)
	ListByClub(ctx context.Context, clubID int32) ([]domain.ClubMembership, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.ClubMembership, error)
	Delete(ctx context.Context, id int32) error
	DeleteByClub(ctx context.Context, clubID int32) error
}

type JoinRequestRepository interface {
	Create(ctx context.Context, req *domain.ClubJoinRequest) error
	GetByID(ctx context.Context, id int32) (*domain.ClubJoinRequest, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.ClubJoinRequest, error)
	HasPendingJoin(ctx context.Context, requesterID, clubID int32) (bool, error)
	HasPendingCreation(ctx context.Context, requesterID int32) (bool, error)
	// Transition writes status, reviewer, reviewed_at, message and target club only if the
	// stored status still equals from; otherwise ErrConcurrentUpdate.
	Transition(ctx context.Context, req *domain.ClubJoinRequest, from domain.RequestStatus) error
	ListByRequester(ctx context.Context, requesterID int32) ([]domain.ClubJoinRequest, error)
	ListByClub(ctx context.Context, clubID int32, statuses []domain.RequestStatus) ([]domain.ClubJoinRequest, error)
	ListByType(ctx context.Context, reqType domain.RequestType, statuses []domain.RequestStatus) ([]domain.ClubJoinRequest, error)
	DeleteByClub(ctx context.Context, clubID int32) error
}

type InvitationRepository interface {
	Create(ctx context.Context, invite *domain.ClubInvite) error
	GetByID(ctx context.Context, id int32) (*domain.ClubInvite, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.ClubInvite, error)
	GetByCode(ctx context.Context, code string) (*domain.ClubInvite, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*domain.ClubInvite, error)
	// Transition writes status, invitee and responded_at only if the stored status still equals from.
	Transition(ctx context.Context, invite *domain.ClubInvite, from domain.InviteStatus) error
	ListByClub(ctx context.Context, clubID int32) ([]domain.ClubInvite, error)
	ListByEmailAndStatus(ctx context.Context, email string, status domain.InviteStatus) ([]domain.ClubInvite, error)
	// ExpireStale flips every PENDING invite whose expires_at is before now to EXPIRED.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
	DeleteByClub(ctx context.Context, clubID int32) error
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id int32) (*domain.Event, error)
	// GetByIDForUpdate locks the event row; every admission decision for the event serializes on it.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Event, error)
	ListByClub(ctx context.Context, clubID int32) ([]domain.Event, error)
	UpdateCapacity(ctx context.Context, id int32, capacity *int32) error
	// RefreshOccupancy recomputes current_registrations from the registration rows and returns it.
	RefreshOccupancy(ctx context.Context, id int32) (int32, error)
	ListIDs(ctx context.Context) ([]int32, error)
	DeleteByClub(ctx context.Context, clubID int32) error
}

type RegistrationRepository interface {
	// Register inserts a REGISTERED row, reactivating a previously CANCELLED row for the same pair.
	Register(ctx context.Context, reg *domain.Registration) error
	GetByUserAndEvent(ctx context.Context, userID, eventID int32) (*domain.Registration, error)
	CountActive(ctx context.Context, eventID int32) (int32, error)
	Transition(ctx context.Context, reg *domain.Registration, from domain.RegistrationStatus) error
	ListByUser(ctx context.Context, userID int32) ([]domain.Registration, error)
	ListByEvent(ctx context.Context, eventID int32) ([]domain.Registration, error)
	DeleteByClub(ctx context.Context, clubID int32) error
}

// Repositories groups every repository bound to one connection or transaction.
type Repositories struct {
	Users         UserRepository
	Clubs         ClubRepository
	Memberships   MembershipRepository
	JoinRequests  JoinRequestRepository
	Invitations   InvitationRepository
	Events        EventRepository
	Registrations RegistrationRepository
}

// Store is the persistent store: plain repositories for reads, and WithinTx for atomic units.
type Store interface {
	Repos() *Repositories
	// WithinTx runs fn in one transaction, committing when fn returns nil. Transient contention
	// is retried a bounded number of times before ErrContention is returned.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error
}

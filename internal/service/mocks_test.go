package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/repository"
)

// fakeStore hands the same mock repositories to reads and to every transaction.
type fakeStore struct {
	repos *repository.Repositories
	txErr error
}

func (s *fakeStore) Repos() *repository.Repositories { return s.repos }

func (s *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	if s.txErr != nil {
		return s.txErr
	}
	return fn(ctx, s.repos)
}

type mocks struct {
	users         *MockUserRepo
	clubs         *MockClubRepo
	memberships   *MockMembershipRepo
	joinRequests  *MockJoinRequestRepo
	invitations   *MockInvitationRepo
	events        *MockEventRepo
	registrations *MockRegistrationRepo
}

func newMocks() (*mocks, *fakeStore) {
	m := &mocks{
		users:         new(MockUserRepo),
		clubs:         new(MockClubRepo),
		memberships:   new(MockMembershipRepo),
		joinRequests:  new(MockJoinRequestRepo),
		invitations:   new(MockInvitationRepo),
		events:        new(MockEventRepo),
		registrations: new(MockRegistrationRepo),
	}
	store := &fakeStore{repos: &repository.Repositories{
		Users:         m.users,
		Clubs:         m.clubs,
		Memberships:   m.memberships,
		JoinRequests:  m.joinRequests,
		Invitations:   m.invitations,
		Events:        m.events,
		Registrations: m.registrations,
	}}
	return m, store
}

type mockAsserter interface {
	AssertExpectations(t mock.TestingT) bool
}

func (m *mocks) assertAll(t mock.TestingT) {
	for _, r := range []mockAsserter{m.users, m.clubs, m.memberships, m.joinRequests, m.invitations, m.events, m.registrations} {
		r.AssertExpectations(t)
	}
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) PromoteToClubAdmin(ctx context.Context, id int32) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockClubRepo
type MockClubRepo struct {
	mock.Mock
}

func (m *MockClubRepo) Create(ctx context.Context, club *domain.Club) error {
	args := m.Called(ctx, club)
	return args.Error(0)
}
func (m *MockClubRepo) GetByID(ctx context.Context, id int32) (*domain.Club, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Club), args.Error(1)
}
func (m *MockClubRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Club, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Club), args.Error(1)
}
func (m *MockClubRepo) FindActiveOrPendingByAdmin(ctx context.Context, adminID int32) (*domain.Club, error) {
	args := m.Called(ctx, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Club), args.Error(1)
}
func (m *MockClubRepo) ExistsByAdminAndStatus(ctx context.Context, adminID int32, status domain.ClubStatus) (bool, error) {
	args := m.Called(ctx, adminID, status)
	return args.Bool(0), args.Error(1)
}
func (m *MockClubRepo) ListByStatuses(ctx context.Context, statuses []domain.ClubStatus) ([]domain.Club, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).([]domain.Club), args.Error(1)
}
func (m *MockClubRepo) UpdateStatus(ctx context.Context, id int32, status domain.ClubStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockClubRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMembershipRepo
type MockMembershipRepo struct {
	mock.Mock
}

func (m *MockMembershipRepo) Grant(ctx context.Context, membership *domain.ClubMembership) (bool, error) {
	args := m.Called(ctx, membership)
	return args.Bool(0), args.Error(1)
}
func (m *MockMembershipRepo) Exists(ctx context.Context, clubID, userID int32) (bool, error) {
	args := m.Called(ctx, clubID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockMembershipRepo) GetByID(ctx context.Context, id int32) (*domain.ClubMembership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClubMembership), args.Error(1)
}
func (m *MockMembershipRepo) GetByClubAndUser(ctx context.Context, clubID, userID int32) (*domain.ClubMembership, error) {
	args := m.Called(ctx, clubID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClubMembership), args.Error(1)
}
func (m *MockMembershipRepo) ListByClub(ctx context.Context, clubID int32) ([]domain.ClubMembership, error) {
	args := m.Called(ctx, clubID)
	return args.Get(0).([]domain.ClubMembership), args.Error(1)
}
func (m *MockMembershipRepo) ListByUser(ctx context.Context, userID int32) ([]domain.ClubMembership, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.ClubMembership), args.Error(1)
}
func (m *MockMembershipRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockMembershipRepo) DeleteByClub(ctx context.Context, clubID int32) error {
	args := m.Called(ctx, clubID)
	return args.Error(0)
}

// MockJoinRequestRepo
type MockJoinRequestRepo struct {
	mock.Mock
}

func (m *MockJoinRequestRepo) Create(ctx context.Context, req *domain.ClubJoinRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockJoinRequestRepo) GetByID(ctx context.Context, id int32) (*domain.ClubJoinRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClubJoinRequest), args.Error(1)
}
func (m *MockJoinRequestRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.ClubJoinRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClubJoinRequest), args.Error(1)
}
func (m *MockJoinRequestRepo) HasPendingJoin(ctx context.Context, requesterID, clubID int32) (bool, error) {
	args := m.Called(ctx, requesterID, clubID)
	return args.Bool(0), args.Error(1)
}
func (m *MockJoinRequestRepo) HasPendingCreation(ctx context.Context, requesterID int32) (bool, error) {
	args := m.Called(ctx, requesterID)
	return args.Bool(0), args.Error(1)
}
func (m *MockJoinRequestRepo) Transition(ctx context.Context, req *domain.ClubJoinRequest, from domain.RequestStatus) error {
	args := m.Called(ctx, req, from)
	return args.Error(0)
}
func (m *MockJoinRequestRepo) ListByRequester(ctx context.Context, requesterID int32) ([]domain.ClubJoinRequest, error) {
	args := m.Called(ctx, requesterID)
	return args.Get(0).([]domain.ClubJoinRequest), args.Error(1)
}
func (m *MockJoinRequestRepo) ListByClub(ctx context.Context, clubID int32, statuses []domain.RequestStatus) ([]domain.ClubJoinRequest, error) {
	args := m.Called(ctx, clubID, statuses)
	return args.Get(0).([]domain.ClubJoinRequest), args.Error(1)
}
func (m *MockJoinRequestRepo) ListByType(ctx context.Context, reqType domain.RequestType, statuses []domain.RequestStatus) ([]domain.ClubJoinRequest, error) {
	args := m.Called(ctx, reqType, statuses)
	return args.Get(0).([]domain.ClubJoinRequest), args.Error(1)
}
func (m *MockJoinRequestRepo) DeleteByClub(ctx context.Context, clubID int32) error {
	args := m.Called(ctx, clubID)
	return args.Error(0)
}

// MockInvitationRepo
type MockInvitationRepo struct {
	mock.Mock
}

func (m *MockInvitationRepo) Create(ctx context.Context, invite *domain.ClubInvite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}
func (m *MockInvitationRepo) GetByID(ctx context.Context, id int32) (*domain.ClubInvite, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClubInvite), args.Error(1)
}
func (m *MockInvitationRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.ClubInvite, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClubInvite), args.Error(1)
}
func (m *MockInvitationRepo) GetByCode(ctx context.Context, code string) (*domain.ClubInvite, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClubInvite), args.Error(1)
}
func (m *MockInvitationRepo) GetByCodeForUpdate(ctx context.Context, code string) (*domain.ClubInvite, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClubInvite), args.Error(1)
}
func (m *MockInvitationRepo) Transition(ctx context.Context, invite *domain.ClubInvite, from domain.InviteStatus) error {
	args := m.Called(ctx, invite, from)
	return args.Error(0)
}
func (m *MockInvitationRepo) ListByClub(ctx context.Context, clubID int32) ([]domain.ClubInvite, error) {
	args := m.Called(ctx, clubID)
	return args.Get(0).([]domain.ClubInvite), args.Error(1)
}
func (m *MockInvitationRepo) ListByEmailAndStatus(ctx context.Context, email string, status domain.InviteStatus) ([]domain.ClubInvite, error) {
	args := m.Called(ctx, email, status)
	return args.Get(0).([]domain.ClubInvite), args.Error(1)
}
func (m *MockInvitationRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockInvitationRepo) DeleteByClub(ctx context.Context, clubID int32) error {
	args := m.Called(ctx, clubID)
	return args.Error(0)
}

// MockEventRepo
type MockEventRepo struct {
	mock.Mock
}

func (m *MockEventRepo) Create(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *MockEventRepo) GetByID(ctx context.Context, id int32) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}
func (m *MockEventRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}
func (m *MockEventRepo) ListByClub(ctx context.Context, clubID int32) ([]domain.Event, error) {
	args := m.Called(ctx, clubID)
	return args.Get(0).([]domain.Event), args.Error(1)
}
func (m *MockEventRepo) UpdateCapacity(ctx context.Context, id int32, capacity *int32) error {
	args := m.Called(ctx, id, capacity)
	return args.Error(0)
}
func (m *MockEventRepo) RefreshOccupancy(ctx context.Context, id int32) (int32, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockEventRepo) ListIDs(ctx context.Context) ([]int32, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int32), args.Error(1)
}
func (m *MockEventRepo) DeleteByClub(ctx context.Context, clubID int32) error {
	args := m.Called(ctx, clubID)
	return args.Error(0)
}

// MockRegistrationRepo
type MockRegistrationRepo struct {
	mock.Mock
}

func (m *MockRegistrationRepo) Register(ctx context.Context, reg *domain.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}
func (m *MockRegistrationRepo) GetByUserAndEvent(ctx context.Context, userID, eventID int32) (*domain.Registration, error) {
	args := m.Called(ctx, userID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}
func (m *MockRegistrationRepo) CountActive(ctx context.Context, eventID int32) (int32, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockRegistrationRepo) Transition(ctx context.Context, reg *domain.Registration, from domain.RegistrationStatus) error {
	args := m.Called(ctx, reg, from)
	return args.Error(0)
}
func (m *MockRegistrationRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Registration, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Registration), args.Error(1)
}
func (m *MockRegistrationRepo) ListByEvent(ctx context.Context, eventID int32) ([]domain.Registration, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.Registration), args.Error(1)
}
func (m *MockRegistrationRepo) DeleteByClub(ctx context.Context, clubID int32) error {
	args := m.Called(ctx, clubID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendClubInvite(ctx context.Context, email, clubName, inviteCode string, expiresAt time.Time) error {
	args := m.Called(ctx, email, clubName, inviteCode, expiresAt)
	return args.Error(0)
}

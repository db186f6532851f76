package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eventhub-backend/internal/clock"
	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/repository"
	"eventhub-backend/internal/service"
)

func pendingInvite(code, email string, expiresAt time.Time) *domain.ClubInvite {
	return &domain.ClubInvite{
		ID: 4, ClubID: 1, InviterID: 9, InviteeEmail: email, InviteCode: code,
		Status: domain.InviteStatusPending, CreatedAt: testNow.Add(-24 * time.Hour), ExpiresAt: expiresAt,
	}
}

func TestInviteService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Blank email", func(t *testing.T) {
		_, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		_, err := svc.Create(ctx, owner, service.CreateInviteInput{ClubID: 1, InviteeEmail: "   "})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Malformed email", func(t *testing.T) {
		_, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		_, err := svc.Create(ctx, owner, service.CreateInviteInput{ClubID: 1, InviteeEmail: "not-an-address"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Defaults applied and email sent", func(t *testing.T) {
		m, store := newMocks()
		email := new(MockEmailService)
		svc := service.NewInviteService(store, clock.Fixed(testNow), email, 0)

		m.clubs.On("GetByID", mock.Anything, int32(1)).Return(activeClub(1, 9), nil)
		m.invitations.On("Create", mock.Anything, mock.AnythingOfType("*domain.ClubInvite")).
			Run(func(args mock.Arguments) { args.Get(1).(*domain.ClubInvite).ID = 4 }).
			Return(nil)
		email.On("SendClubInvite", mock.Anything, "bob@example.com", "Chess Club", mock.AnythingOfType("string"), testNow.Add(service.DefaultInviteTTL)).
			Return(nil)

		inv, err := svc.Create(ctx, owner, service.CreateInviteInput{ClubID: 1, InviteeEmail: "  Bob@Example.COM "})
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", inv.InviteeEmail)
		assert.Equal(t, domain.InviteStatusPending, inv.Status)
		assert.NotEmpty(t, inv.InviteCode)
		assert.Equal(t, testNow.Add(14*24*time.Hour), inv.ExpiresAt)
		m.assertAll(t)
		email.AssertExpectations(t)
	})

	t.Run("Supplied code kept and delivery failure tolerated", func(t *testing.T) {
		m, store := newMocks()
		email := new(MockEmailService)
		svc := service.NewInviteService(store, clock.Fixed(testNow), email, 0)
		expires := testNow.Add(48 * time.Hour)

		m.clubs.On("GetByID", mock.Anything, int32(1)).Return(activeClub(1, 9), nil)
		m.invitations.On("Create", mock.Anything, mock.Anything).Return(nil)
		email.On("SendClubInvite", mock.Anything, "bob@example.com", "Chess Club", "ABC123", expires).
			Return(errors.New("sendgrid unavailable"))

		inv, err := svc.Create(ctx, owner, service.CreateInviteInput{
			ClubID: 1, InviteeEmail: "bob@example.com", InviteCode: "ABC123", ExpiresAt: &expires,
		})
		require.NoError(t, err)
		assert.Equal(t, "ABC123", inv.InviteCode)
		assert.Equal(t, expires, inv.ExpiresAt)
	})

	t.Run("Plain student may not invite", func(t *testing.T) {
		m, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		m.clubs.On("GetByID", mock.Anything, int32(1)).Return(activeClub(1, 9), nil)
		m.memberships.On("GetByClubAndUser", mock.Anything, int32(1), int32(3)).Return(nil, repository.ErrNotFound)

		_, err := svc.Create(ctx, student, service.CreateInviteInput{ClubID: 1, InviteeEmail: "bob@example.com"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		m.invitations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestInviteService_Accept(t *testing.T) {
	ctx := context.Background()
	bob := domain.Actor{UserID: 7, Role: domain.UserRoleStudent, Email: "Bob@Example.com"}

	t.Run("Accepted and member granted", func(t *testing.T) {
		m, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		m.invitations.On("GetByCodeForUpdate", mock.Anything, "ABC123").
			Return(pendingInvite("ABC123", "bob@example.com", testNow.Add(time.Hour)), nil)
		m.invitations.On("Transition", mock.Anything, mock.Anything, domain.InviteStatusPending).Return(nil)
		m.memberships.On("Grant", mock.Anything, mock.MatchedBy(func(cm *domain.ClubMembership) bool {
			return cm.ClubID == 1 && cm.UserID == 7 && cm.Role == domain.MembershipRoleMember
		})).Return(true, nil)

		inv, err := svc.Accept(ctx, "ABC123", bob)
		require.NoError(t, err)
		assert.Equal(t, domain.InviteStatusAccepted, inv.Status)
		assert.Equal(t, int32(7), *inv.InviteeID)
		assert.Equal(t, "bob@example.com", inv.InviteeEmail)
		assert.Equal(t, testNow, *inv.RespondedAt)
		m.assertAll(t)
	})

	t.Run("Past expiry returns EXPIRED without membership", func(t *testing.T) {
		m, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		m.invitations.On("GetByCodeForUpdate", mock.Anything, "ABC123").
			Return(pendingInvite("ABC123", "bob@example.com", testNow.Add(-time.Minute)), nil)
		m.invitations.On("Transition", mock.Anything, mock.Anything, domain.InviteStatusPending).Return(nil)

		inv, err := svc.Accept(ctx, "ABC123", bob)
		require.NoError(t, err)
		assert.Equal(t, domain.InviteStatusExpired, inv.Status)
		assert.Nil(t, inv.InviteeID)
		m.memberships.AssertNotCalled(t, "Grant", mock.Anything, mock.Anything)
	})

	t.Run("Second accept", func(t *testing.T) {
		m, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		accepted := pendingInvite("ABC123", "bob@example.com", testNow.Add(time.Hour))
		accepted.Status = domain.InviteStatusAccepted
		m.invitations.On("GetByCodeForUpdate", mock.Anything, "ABC123").Return(accepted, nil)

		_, err := svc.Accept(ctx, "ABC123", bob)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		m.memberships.AssertNotCalled(t, "Grant", mock.Anything, mock.Anything)
	})

	t.Run("Addressed to another user", func(t *testing.T) {
		m, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		inv := pendingInvite("ABC123", "carol@example.com", testNow.Add(time.Hour))
		inv.InviteeID = int32Ptr(8)
		m.invitations.On("GetByCodeForUpdate", mock.Anything, "ABC123").Return(inv, nil)

		_, err := svc.Accept(ctx, "ABC123", bob)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Unknown code", func(t *testing.T) {
		m, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		m.invitations.On("GetByCodeForUpdate", mock.Anything, "NOPE").Return(nil, repository.ErrNotFound)

		_, err := svc.Accept(ctx, "NOPE", bob)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInviteService_DeclineAndExpire(t *testing.T) {
	ctx := context.Background()
	bob := domain.Actor{UserID: 7, Role: domain.UserRoleStudent}

	t.Run("Decline binds invitee", func(t *testing.T) {
		m, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		m.invitations.On("GetByCodeForUpdate", mock.Anything, "ABC123").
			Return(pendingInvite("ABC123", "bob@example.com", testNow.Add(time.Hour)), nil)
		m.invitations.On("Transition", mock.Anything, mock.Anything, domain.InviteStatusPending).Return(nil)

		inv, err := svc.Decline(ctx, "ABC123", bob)
		require.NoError(t, err)
		assert.Equal(t, domain.InviteStatusDeclined, inv.Status)
		assert.Equal(t, int32(7), *inv.InviteeID)
		assert.Equal(t, "bob@example.com", inv.InviteeEmail)
		m.memberships.AssertNotCalled(t, "Grant", mock.Anything, mock.Anything)
	})

	t.Run("Expire pending", func(t *testing.T) {
		m, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		m.invitations.On("GetByIDForUpdate", mock.Anything, int32(4)).
			Return(pendingInvite("ABC123", "bob@example.com", testNow.Add(time.Hour)), nil)
		m.invitations.On("Transition", mock.Anything, mock.Anything, domain.InviteStatusPending).Return(nil)

		inv, err := svc.Expire(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, domain.InviteStatusExpired, inv.Status)
	})

	t.Run("Expire terminal is a no-op", func(t *testing.T) {
		m, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		declined := pendingInvite("ABC123", "bob@example.com", testNow.Add(time.Hour))
		declined.Status = domain.InviteStatusDeclined
		m.invitations.On("GetByIDForUpdate", mock.Anything, int32(4)).Return(declined, nil)

		inv, err := svc.Expire(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, domain.InviteStatusDeclined, inv.Status)
		m.invitations.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Sweep", func(t *testing.T) {
		m, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		m.invitations.On("ExpireStale", mock.Anything, testNow).Return(int64(2), nil)

		n, err := svc.SweepExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}

func TestInviteService_Queries(t *testing.T) {
	ctx := context.Background()

	t.Run("Stale pending reads as expired", func(t *testing.T) {
		m, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		m.invitations.On("GetByCode", mock.Anything, "ABC123").
			Return(pendingInvite("ABC123", "bob@example.com", testNow.Add(-time.Hour)), nil)

		inv, err := svc.GetByCode(ctx, "ABC123")
		require.NoError(t, err)
		assert.Equal(t, domain.InviteStatusExpired, inv.Status)
	})

	t.Run("Pending for email drops stale invites", func(t *testing.T) {
		m, store := newMocks()
		svc := service.NewInviteService(store, clock.Fixed(testNow), nil, 0)

		fresh := *pendingInvite("A", "bob@example.com", testNow.Add(time.Hour))
		stale := *pendingInvite("B", "bob@example.com", testNow.Add(-time.Hour))
		m.invitations.On("ListByEmailAndStatus", mock.Anything, "bob@example.com", domain.InviteStatusPending).
			Return([]domain.ClubInvite{fresh, stale}, nil)

		invites, err := svc.ListPendingForEmail(ctx, "BOB@example.com")
		require.NoError(t, err)
		require.Len(t, invites, 1)
		assert.Equal(t, "A", invites[0].InviteCode)
	})
}

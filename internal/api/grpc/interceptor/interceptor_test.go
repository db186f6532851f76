package interceptor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	apigrpc "eventhub-backend/internal/api/grpc"
	"eventhub-backend/internal/api/grpc/interceptor"
	"eventhub-backend/internal/clock"
	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/security"
)

func newTokenManager() security.TokenManager {
	return security.NewTokenManager("0123456789abcdef0123456789abcdef", "eventhub", time.Hour,
		clock.Fixed(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)))
}

func TestAuthInterceptor_Unary(t *testing.T) {
	tm := newTokenManager()
	unary := interceptor.NewAuthInterceptor(tm).Unary()

	var seen domain.Actor
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		actor, err := apigrpc.ActorFromContext(ctx)
		if err != nil {
			return nil, err
		}
		seen = actor
		return "ok", nil
	}
	protected := &grpc.UnaryServerInfo{FullMethod: "/eventhub.v1.RegistrationService/Register"}

	t.Run("Valid bearer token injects actor", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(domain.Actor{UserID: 11, Role: domain.UserRoleStudent, Email: "u1@example.com"})
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))

		resp, err := unary(ctx, nil, protected, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
		assert.Equal(t, int32(11), seen.UserID)
		assert.Equal(t, domain.UserRoleStudent, seen.Role)
	})

	t.Run("Missing token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.MD{})
		_, err := unary(ctx, nil, protected, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Bad token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		_, err := unary(ctx, nil, protected, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Public method skips auth", func(t *testing.T) {
		public := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
		resp, err := unary(context.Background(), nil, public, func(ctx context.Context, req interface{}) (interface{}, error) {
			return "healthy", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "healthy", resp)
	})
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"Validation", domain.NewValidationError("bad"), codes.InvalidArgument},
		{"Not found", domain.NewNotFoundError("missing"), codes.NotFound},
		{"Forbidden", domain.NewForbiddenError("no"), codes.PermissionDenied},
		{"Club inactive", domain.NewClubInactiveError(1), codes.PermissionDenied},
		{"Capacity", domain.NewConflictError(domain.ReasonCapacityExceeded, "full"), codes.ResourceExhausted},
		{"Transition", domain.NewConflictError(domain.ReasonInvalidTransition, "done"), codes.FailedPrecondition},
		{"Contention", domain.NewConflictError(domain.ReasonContention, "busy"), codes.Aborted},
		{"Duplicate", domain.NewConflictError(domain.ReasonAlreadyMember, "dup"), codes.AlreadyExists},
		{"Wrapped domain error", fmt.Errorf("outer: %w", domain.NewNotFoundError("x")), codes.NotFound},
		{"Status passes through", status.Error(codes.Unauthenticated, "who"), codes.Unauthenticated},
		{"Deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"Unknown", errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(interceptor.ToStatus(tt.err)))
		})
	}
	assert.NoError(t, interceptor.ToStatus(nil))
}

func TestErrorUnary(t *testing.T) {
	unary := interceptor.ErrorUnary()
	info := &grpc.UnaryServerInfo{FullMethod: "/eventhub.v1.RegistrationService/Register"}

	_, err := unary(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, domain.NewConflictError(domain.ReasonAlreadyRegistered, "twice")
	})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	resp, err := unary(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

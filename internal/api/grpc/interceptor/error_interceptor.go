package interceptor

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/logger"
)

// ToStatus maps a service error onto a gRPC status. Errors that already carry a status pass
// through; unknown errors become Internal without leaking their text.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var derr *domain.Error
	if !errors.As(err, &derr) {
		if errors.Is(err, context.Canceled) {
			return status.Error(codes.Canceled, err.Error())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return status.Error(codes.DeadlineExceeded, err.Error())
		}
		return status.Error(codes.Internal, "internal error")
	}

	code := codes.Unknown
	switch derr.Kind {
	case domain.KindValidation:
		code = codes.InvalidArgument
	case domain.KindNotFound:
		code = codes.NotFound
	case domain.KindForbidden:
		code = codes.PermissionDenied
	case domain.KindConflict:
		switch derr.Reason {
		case domain.ReasonCapacityExceeded:
			code = codes.ResourceExhausted
		case domain.ReasonInvalidTransition:
			code = codes.FailedPrecondition
		case domain.ReasonContention:
			code = codes.Aborted
		default:
			code = codes.AlreadyExists
		}
	}
	return status.Error(code, derr.Error())
}

// ErrorUnary converts handler errors with ToStatus and logs unexpected failures.
func ErrorUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		st := ToStatus(err)
		if status.Code(st) == codes.Internal {
			logger.Error("Unhandled RPC error", "method", info.FullMethod, "error", err)
		}
		return resp, st
	}
}

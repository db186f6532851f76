package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"eventhub-backend/internal/domain"
	"eventhub-backend/internal/repository"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs the struct tags of an operation input and reports the first failure.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError("%s failed %q validation", fe.Field(), fe.Tag())
	}
	return domain.NewValidationError("%v", err)
}

// translate maps storage-layer errors onto the domain taxonomy. Errors that are already typed
// pass through; anything unrecognized is wrapped with the operation name.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return domain.NewNotFoundError("%s: not found", op)
	case errors.Is(err, repository.ErrConcurrentUpdate):
		return domain.NewConflictError(domain.ReasonInvalidTransition, "%s: state changed concurrently", op)
	case errors.Is(err, repository.ErrContention):
		return domain.NewConflictError(domain.ReasonContention, "%s: storage contention, retry later", op)
	case errors.Is(err, repository.ErrDuplicate):
		return duplicateError(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// duplicateError picks the reason from the constraint name carried in the message.
func duplicateError(op string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "clubs_one_live_club_per_admin"):
		return domain.NewConflictError(domain.ReasonAlreadyManagesClub, "%s: admin already manages a pending or active club", op)
	case strings.Contains(msg, "club_join_requests_one_pending"):
		return domain.NewConflictError(domain.ReasonDuplicatePendingRequest, "%s: a pending request already exists", op)
	case strings.Contains(msg, "club_memberships_club_user_key"):
		return domain.NewConflictError(domain.ReasonAlreadyMember, "%s: already a member", op)
	case strings.Contains(msg, "registrations_user_event_key"):
		return domain.NewConflictError(domain.ReasonAlreadyRegistered, "%s: already registered", op)
	}
	return domain.NewConflictError("", "%s: %v", op, err)
}

func notFound(kind string, id any) error {
	return domain.NewNotFoundError("%s %v not found", kind, id)
}

// loadOrNotFound converts a repository miss into a typed NotFound for the named entity.
func loadOrNotFound[T any](v *T, err error, kind string, id any) (*T, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(kind, id)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

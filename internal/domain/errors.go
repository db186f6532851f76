package domain

import "fmt"

type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindForbidden  ErrorKind = "FORBIDDEN"
	KindConflict   ErrorKind = "CONFLICT"
)

type ErrorReason string

const (
	ReasonAlreadyMember           ErrorReason = "ALREADY_MEMBER"
	ReasonDuplicatePendingRequest ErrorReason = "DUPLICATE_PENDING_REQUEST"
	ReasonAlreadyRegistered       ErrorReason = "ALREADY_REGISTERED"
	ReasonCapacityExceeded        ErrorReason = "CAPACITY_EXCEEDED"
	ReasonInvalidTransition       ErrorReason = "INVALID_TRANSITION"
	ReasonClubInactive            ErrorReason = "CLUB_INACTIVE"
	ReasonAlreadyManagesClub      ErrorReason = "ALREADY_MANAGES_CLUB"
	ReasonContention              ErrorReason = "CONTENTION"
)

// Error is the typed outcome every core operation surfaces to its caller.
type Error struct {
	Kind    ErrorKind
	Reason  ErrorReason
	Message string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches on kind, and on reason when the target carries one, so that
// errors.Is(err, ErrConflict) holds for every conflict.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrConflict   = &Error{Kind: KindConflict}

	ErrAlreadyMember           = &Error{Kind: KindConflict, Reason: ReasonAlreadyMember}
	ErrDuplicatePendingRequest = &Error{Kind: KindConflict, Reason: ReasonDuplicatePendingRequest}
	ErrAlreadyRegistered       = &Error{Kind: KindConflict, Reason: ReasonAlreadyRegistered}
	ErrCapacityExceeded        = &Error{Kind: KindConflict, Reason: ReasonCapacityExceeded}
	ErrInvalidTransition       = &Error{Kind: KindConflict, Reason: ReasonInvalidTransition}
	ErrAlreadyManagesClub      = &Error{Kind: KindConflict, Reason: ReasonAlreadyManagesClub}
	ErrContention              = &Error{Kind: KindConflict, Reason: ReasonContention}
	ErrClubInactive            = &Error{Kind: KindForbidden, Reason: ReasonClubInactive}
)

func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewForbiddenError(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(reason ErrorReason, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func NewClubInactiveError(clubID int32) *Error {
	return &Error{Kind: KindForbidden, Reason: ReasonClubInactive, Message: fmt.Sprintf("club %d is not accepting registrations", clubID)}
}

package domain

import (
	"strings"
	"time"
)

type UserRole string

const (
	UserRoleStudent   UserRole = "STUDENT"
	UserRoleClubAdmin UserRole = "CLUB_ADMIN"
	UserRoleAdmin     UserRole = "ADMIN"
)

// ParseUserRole validates a role name coming from outside the process (tokens, requests).
func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(strings.ToUpper(strings.TrimSpace(s))) {
	case UserRoleStudent:
		return UserRoleStudent, nil
	case UserRoleClubAdmin:
		return UserRoleClubAdmin, nil
	case UserRoleAdmin:
		return UserRoleAdmin, nil
	}
	return "", NewValidationError("invalid user role: %q", s)
}

type User struct {
	ID        int32     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	CreatedOn time.Time `json:"created_on"`
}

// Actor is the already-authenticated identity on whose behalf an operation runs.
type Actor struct {
	UserID int32
	Role   UserRole
	Email  string
}

func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}

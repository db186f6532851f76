package domain

import (
	"strings"
	"time"
)

type Event struct {
	ID          int32     `json:"id"`
	ClubID      int32     `json:"club_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	EventDate   time.Time `json:"event_date"`
	// Capacity is the admission ceiling; nil means unbounded.
	Capacity             *int32    `json:"capacity,omitempty"`
	CurrentRegistrations int32     `json:"current_registrations"`
	CreatedOn            time.Time `json:"created_on"`
}

// HasRoom reports whether another registration fits given the authoritative occupancy.
func (e *Event) HasRoom(occupancy int32) bool {
	return e.Capacity == nil || occupancy < *e.Capacity
}

type RegistrationStatus string

const (
	RegistrationStatusRegistered RegistrationStatus = "REGISTERED"
	RegistrationStatusAttended   RegistrationStatus = "ATTENDED"
	RegistrationStatusCancelled  RegistrationStatus = "CANCELLED"
)

func ParseRegistrationStatus(s string) (RegistrationStatus, error) {
	switch RegistrationStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case RegistrationStatusRegistered:
		return RegistrationStatusRegistered, nil
	case RegistrationStatusAttended:
		return RegistrationStatusAttended, nil
	case RegistrationStatusCancelled:
		return RegistrationStatusCancelled, nil
	}
	return "", NewValidationError("invalid registration status: %q", s)
}

type Registration struct {
	ID           int32              `json:"id"`
	UserID       int32              `json:"user_id"`
	EventID      int32              `json:"event_id"`
	Status       RegistrationStatus `json:"status"`
	RegisteredAt time.Time          `json:"registered_at"`
	CancelledAt  *time.Time         `json:"cancelled_at,omitempty"`
}

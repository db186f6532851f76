package domain

import (
	"strings"
	"time"
)

type RequestType string

const (
	RequestTypeCreateClub RequestType = "CREATE_CLUB"
	RequestTypeJoinClub   RequestType = "JOIN_CLUB"
)

func ParseRequestType(s string) (RequestType, error) {
	switch RequestType(strings.ToUpper(strings.TrimSpace(s))) {
	case RequestTypeCreateClub:
		return RequestTypeCreateClub, nil
	case RequestTypeJoinClub:
		return RequestTypeJoinClub, nil
	}
	return "", NewValidationError("invalid request type: %q", s)
}

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusApproved  RequestStatus = "APPROVED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case RequestStatusPending:
		return RequestStatusPending, nil
	case RequestStatusApproved:
		return RequestStatusApproved, nil
	case RequestStatusRejected:
		return RequestStatusRejected, nil
	case RequestStatusCancelled:
		return RequestStatusCancelled, nil
	}
	return "", NewValidationError("invalid request status: %q", s)
}

func (s RequestStatus) IsTerminal() bool {
	return s != RequestStatusPending
}

// ClubJoinRequest covers both self-service club creation and joining an existing club.
// TargetClubID is required for JOIN_CLUB and assigned on approval for CREATE_CLUB.
type ClubJoinRequest struct {
	ID                   int32         `json:"id"`
	RequesterID          int32         `json:"requester_id"`
	Type                 RequestType   `json:"type"`
	Status               RequestStatus `json:"status"`
	TargetClubID         *int32        `json:"target_club_id,omitempty"`
	RequestedName        string        `json:"requested_name,omitempty"`
	RequestedDescription string        `json:"requested_description,omitempty"`
	Message              string        `json:"message,omitempty"`
	ReviewerID           *int32        `json:"reviewer_id,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	ReviewedAt           *time.Time    `json:"reviewed_at,omitempty"`
}

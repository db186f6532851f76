package domain

import (
	"strings"
	"time"
)

type ClubStatus string

const (
	ClubStatusPending ClubStatus = "PENDING"
	ClubStatusActive  ClubStatus = "ACTIVE"
	ClubStatusRetired ClubStatus = "RETIRED"
)

func ParseClubStatus(s string) (ClubStatus, error) {
	switch ClubStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case ClubStatusPending:
		return ClubStatusPending, nil
	case ClubStatusActive:
		return ClubStatusActive, nil
	case ClubStatusRetired:
		return ClubStatusRetired, nil
	}
	return "", NewValidationError("invalid club status: %q", s)
}

// HoldsAdminSlot reports whether a club in this status counts against its admin's one-club limit.
func (s ClubStatus) HoldsAdminSlot() bool {
	return s == ClubStatusPending || s == ClubStatusActive
}

type Club struct {
	ID          int32      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	AdminID     int32      `json:"admin_id"`
	Status      ClubStatus `json:"status"`
	CreatedOn   time.Time  `json:"created_on"`
}

type MembershipRole string

const (
	MembershipRoleMember  MembershipRole = "MEMBER"
	MembershipRoleOfficer MembershipRole = "OFFICER"
)

func ParseMembershipRole(s string) (MembershipRole, error) {
	switch MembershipRole(strings.ToUpper(strings.TrimSpace(s))) {
	case MembershipRoleMember:
		return MembershipRoleMember, nil
	case MembershipRoleOfficer:
		return MembershipRoleOfficer, nil
	}
	return "", NewValidationError("invalid membership role: %q", s)
}

type ClubMembership struct {
	ID       int32          `json:"id"`
	ClubID   int32          `json:"club_id"`
	UserID   int32          `json:"user_id"`
	Role     MembershipRole `json:"role"`
	JoinedOn time.Time      `json:"joined_on"`
}

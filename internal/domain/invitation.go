package domain

import (
	"strings"
	"time"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "PENDING"
	InviteStatusAccepted InviteStatus = "ACCEPTED"
	InviteStatusDeclined InviteStatus = "DECLINED"
	InviteStatusExpired  InviteStatus = "EXPIRED"
)

func ParseInviteStatus(s string) (InviteStatus, error) {
	switch InviteStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case InviteStatusPending:
		return InviteStatusPending, nil
	case InviteStatusAccepted:
		return InviteStatusAccepted, nil
	case InviteStatusDeclined:
		return InviteStatusDeclined, nil
	case InviteStatusExpired:
		return InviteStatusExpired, nil
	}
	return "", NewValidationError("invalid invite status: %q", s)
}

type ClubInvite struct {
	ID           int32        `json:"id"`
	ClubID       int32        `json:"club_id"`
	InviterID    int32        `json:"inviter_id"`
	InviteeID    *int32       `json:"invitee_id,omitempty"`
	InviteeEmail string       `json:"invitee_email"`
	InviteCode   string       `json:"invite_code"`
	Status       InviteStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
	RespondedAt  *time.Time   `json:"responded_at,omitempty"`
}

// IsExpiredAt reports whether a still-pending invite has passed its expiry at now.
func (i *ClubInvite) IsExpiredAt(now time.Time) bool {
	return i.Status == InviteStatusPending && now.After(i.ExpiresAt)
}

// EffectiveStatus is the status a reader should observe: a stale PENDING invite reads as EXPIRED
// even before the sweep has rewritten the stored row.
func (i *ClubInvite) EffectiveStatus(now time.Time) InviteStatus {
	if i.IsExpiredAt(now) {
		return InviteStatusExpired
	}
	return i.Status
}

package domain

import "time"

// InvitationStatus moves forward only: PENDING → ACCEPTED or EXPIRED,
// both terminal.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "PENDING"
	InvitationStatusAccepted InvitationStatus = "ACCEPTED"
	InvitationStatusExpired  InvitationStatus = "EXPIRED"
)

// Invitation is the admin-issued ticket that turns into an account on
// acceptance. Token is a bearer secret and must never appear in logs.
type Invitation struct {
	ID           string
	Email        string
	InvitedBy    string
	RoleAssigned string
	Token        string
	ExpiresAt    time.Time
	Status       InvitationStatus
	CreatedAt    time.Time
}

// Expired reports whether the invitation's deadline has passed.
func (i Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Package mail delivers invitation notifications. Delivery is
// best-effort: invitation creation succeeds even when the message does
// not go out, because the admin can always re-read the token from the
// API response.
package mail

import (
	"context"
	"time"
)

// Invitation carries everything a delivery needs to render the message.
type Invitation struct {
	To        string
	Role      string
	Token     string
	ExpiresAt time.Time
}

// Mailer sends invitation messages.
type Mailer interface {
	SendInvitation(ctx context.Context, inv Invitation) error
}

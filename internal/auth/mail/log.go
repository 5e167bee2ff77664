package mail

import (
	"context"

	"github.com/crateworks/wmsauth/pkg/slogx"
)

type logMailer struct{}

// NewLog returns a Mailer that only logs that an invitation was issued.
// Used in development and tests; it never logs the token itself.
func NewLog() Mailer {
	return logMailer{}
}

func (logMailer) SendInvitation(ctx context.Context, inv Invitation) error {
	slogx.FromContext(ctx).Info("invitation issued",
		"to", inv.To,
		"role", inv.Role,
		"expires_at", inv.ExpiresAt,
	)
	return nil
}

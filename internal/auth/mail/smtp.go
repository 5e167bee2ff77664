package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig holds plain-auth SMTP settings. Auth is skipped when
// Username is empty, which covers local relays.
type SMTPConfig struct {
	Addr     string // host:port
	Username string
	Password string
	From     string
	BaseURL  string // public base for the accept link
}

type smtpMailer struct {
	cfg SMTPConfig
}

// NewSMTP returns a Mailer that delivers over SMTP with PLAIN auth.
func NewSMTP(cfg SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) SendInvitation(ctx context.Context, inv Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	host := m.cfg.Addr
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, host)
	}

	msg := buildInvitationMessage(m.cfg.From, m.cfg.BaseURL, inv)
	if err := smtp.SendMail(m.cfg.Addr, auth, m.cfg.From, []string{inv.To}, msg); err != nil {
		return fmt.Errorf("send invitation to %s: %w", inv.To, err)
	}
	return nil
}

func buildInvitationMessage(from, baseURL string, inv Invitation) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", inv.To)
	fmt.Fprintf(&b, "Subject: You have been invited\r\n")
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&b, "You have been invited to join as %s.\r\n\r\n", inv.Role)
	fmt.Fprintf(&b, "Accept your invitation:\r\n%s/accept-invitation?token=%s\r\n\r\n", baseURL, inv.Token)
	fmt.Fprintf(&b, "The invitation expires at %s.\r\n", inv.ExpiresAt.UTC().Format(time.RFC1123))
	return []byte(b.String())
}

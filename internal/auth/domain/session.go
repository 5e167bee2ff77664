package domain

import "time"

// Session is one device-bound login. While active it holds the SHA-256
// fingerprint of the exactly-one currently valid refresh token; the raw
// token is never stored.
type Session struct {
	ID               string
	UserID           string
	DeviceID         string
	RoleName         string // snapshot of the primary role at login
	RefreshTokenHash string
	CreatedAt        time.Time
	LastSeenAt       time.Time
	IsActive         bool
}

// IdleSince reports whether the session has been idle longer than the
// inactivity window as of now.
func (s Session) IdleSince(now time.Time, window time.Duration) bool {
	return now.Sub(s.LastSeenAt) > window
}

// Package jwtx is the token codec: it signs and verifies the compact
// bearer tokens the service hands out. Verification is a pure
// cryptographic check — whether the session behind a token is still
// alive is the session registry's business, not this package's.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators carried in the "typ" claim. A refresh token
// must never be accepted where an access token is expected, and vice
// versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ClaimsVersion is bumped whenever the claim layout changes shape, so a
// verifier can reject tokens minted under an incompatible layout instead
// of silently misreading renamed keys.
const ClaimsVersion = 1

// Default token TTLs. Overridable per-service via config.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultClockSkewLeeway absorbs small clock drift between the
	// issuing and verifying host.
	DefaultClockSkewLeeway = 30 * time.Second
)

// Claims is the exhaustively-typed claim set for both token kinds.
// Access tokens fill every field; refresh tokens carry only the session
// binding (sub, sid, device) plus the type discriminator.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType discriminates access from refresh tokens.
	TokenType string `json:"typ"`

	// Version is the claim layout version (ClaimsVersion at mint time).
	Version int `json:"ver"`

	// SID is the server-side session this token is bound to.
	SID string `json:"sid"`

	// DeviceID is the opaque client-supplied device identifier the
	// session was opened from.
	DeviceID string `json:"device_id"`

	// RoleIDs and RoleNames snapshot the user's roles at issuance.
	RoleIDs   []string `json:"role_ids,omitempty"`
	RoleNames []string `json:"role_names,omitempty"`

	// WarehouseID is set for operator-class users, ClientID for client
	// users. They let downstream scope resolution skip a profile lookup
	// on read-only paths; the resolver still re-checks the database.
	WarehouseID string `json:"warehouse_id,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
}

// AccessTokenInput is everything the issuer needs to mint an access token.
type AccessTokenInput struct {
	UserID      string
	SessionID   string
	DeviceID    string
	RoleIDs     []string
	RoleNames   []string
	WarehouseID string
	ClientID    string
}

// RefreshTokenInput is the minimal session binding a refresh token carries.
type RefreshTokenInput struct {
	UserID    string
	SessionID string
	DeviceID  string
}

package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("jwtx: invalid token")
	ErrWrongTokenType = errors.New("jwtx: wrong token type")
)

// Codec signs and verifies tokens with a shared HS256 secret. It is
// stateless and safe for concurrent use.
type Codec struct {
	secret []byte
	issuer string
	leeway time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// NewCodec builds a Codec. The secret must be non-empty; issuer is stamped
// into and enforced on every token.
func NewCodec(secret []byte, issuer string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}
	return &Codec{
		secret: secret,
		issuer: issuer,
		leeway: DefaultClockSkewLeeway,
		now:    time.Now,
	}, nil
}

// WithClock overrides the codec's time source. Tests only.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// IssueAccess mints a signed access token with the given TTL.
func (c *Codec) IssueAccess(in AccessTokenInput, ttl time.Duration) (string, error) {
	now := c.now().UTC()
	claims := Claims{
		RegisteredClaims: c.registered(in.UserID, now, ttl),
		TokenType:        TokenTypeAccess,
		Version:          ClaimsVersion,
		SID:              in.SessionID,
		DeviceID:         in.DeviceID,
		RoleIDs:          in.RoleIDs,
		RoleNames:        in.RoleNames,
		WarehouseID:      in.WarehouseID,
		ClientID:         in.ClientID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// IssueRefresh mints a signed refresh token. Refresh TTLs are expected to
// be much longer than access TTLs; the caller owns that policy.
func (c *Codec) IssueRefresh(in RefreshTokenInput, ttl time.Duration) (string, error) {
	now := c.now().UTC()
	claims := Claims{
		RegisteredClaims: c.registered(in.UserID, now, ttl),
		TokenType:        TokenTypeRefresh,
		Version:          ClaimsVersion,
		SID:              in.SessionID,
		DeviceID:         in.DeviceID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// VerifyAccess parses and validates an access token.
func (c *Codec) VerifyAccess(token string) (Claims, error) {
	return c.verify(token, TokenTypeAccess)
}

// VerifyRefresh parses and validates a refresh token.
func (c *Codec) VerifyRefresh(token string) (Claims, error) {
	return c.verify(token, TokenTypeRefresh)
}

// verify checks signature, structure, issuer, expiry (with leeway), claim
// version, and the type discriminator. It performs no I/O.
func (c *Codec) verify(token, wantType string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (any, error) {
			// Pin the algorithm so an attacker cannot downgrade to "none"
			// or swap in an asymmetric scheme.
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	if claims.Version != ClaimsVersion {
		return Claims{}, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return Claims{}, ErrWrongTokenType
	}
	if claims.Subject == "" || claims.SID == "" || claims.DeviceID == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

func (c *Codec) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        newJTI(),
	}
}

// newJTI returns a URL-safe random identifier for the "jti" claim.
func newJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

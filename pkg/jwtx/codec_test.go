package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/crateworks/wmsauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-do-not-use-in-prod")

func newCodec(t *testing.T) *jwtx.Codec {
	t.Helper()
	c, err := jwtx.NewCodec(testSecret, "wmsauth-test")
	require.NoError(t, err)
	return c
}

func accessInput() jwtx.AccessTokenInput {
	return jwtx.AccessTokenInput{
		UserID:      "01JD000000000000000000USER",
		SessionID:   "01JD0000000000000000000SID",
		DeviceID:    "device-a",
		RoleIDs:     []string{"01JD0000000000000000000ROL"},
		RoleNames:   []string{"OPERATOR"},
		WarehouseID: "01JD00000000000000000000WH",
	}
}

func TestNewCodecRejectsEmptySecret(t *testing.T) {
	t.Parallel()

	_, err := jwtx.NewCodec(nil, "issuer")
	require.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	c := newCodec(t)
	in := accessInput()

	token, err := c.IssueAccess(in, time.Minute)
	require.NoError(t, err)

	claims, err := c.VerifyAccess(token)
	require.NoError(t, err)

	// Every embedded claim survives the round trip.
	require.Equal(t, in.UserID, claims.Subject)
	require.Equal(t, in.SessionID, claims.SID)
	require.Equal(t, in.DeviceID, claims.DeviceID)
	require.Equal(t, in.RoleIDs, claims.RoleIDs)
	require.Equal(t, in.RoleNames, claims.RoleNames)
	require.Equal(t, in.WarehouseID, claims.WarehouseID)
	require.Empty(t, claims.ClientID)
	require.Equal(t, jwtx.TokenTypeAccess, claims.TokenType)
	require.Equal(t, jwtx.ClaimsVersion, claims.Version)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()

	c := newCodec(t)
	token, err := c.IssueRefresh(jwtx.RefreshTokenInput{
		UserID:    "u1",
		SessionID: "s1",
		DeviceID:  "d1",
	}, time.Hour)
	require.NoError(t, err)

	claims, err := c.VerifyRefresh(token)
	require.NoError(t, err)
	require.Equal(t, "s1", claims.SID)
	require.Equal(t, jwtx.TokenTypeRefresh, claims.TokenType)
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	t.Parallel()

	c := newCodec(t)

	access, err := c.IssueAccess(accessInput(), time.Minute)
	require.NoError(t, err)
	refresh, err := c.IssueRefresh(jwtx.RefreshTokenInput{
		UserID: "u1", SessionID: "s1", DeviceID: "d1",
	}, time.Hour)
	require.NoError(t, err)

	_, err = c.VerifyRefresh(access)
	require.ErrorIs(t, err, jwtx.ErrWrongTokenType)
	_, err = c.VerifyAccess(refresh)
	require.ErrorIs(t, err, jwtx.ErrWrongTokenType)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	t.Parallel()

	c := newCodec(t)
	token, err := c.IssueAccess(accessInput(), time.Minute)
	require.NoError(t, err)

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	payload[0] ^= 0x01
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = c.VerifyAccess(tampered)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	c := newCodec(t)
	other, err := jwtx.NewCodec([]byte("another-secret"), "wmsauth-test")
	require.NoError(t, err)

	token, err := c.IssueAccess(accessInput(), time.Minute)
	require.NoError(t, err)

	_, err = other.VerifyAccess(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newCodec(t).WithClock(func() time.Time { return issuedAt })

	token, err := c.IssueAccess(accessInput(), time.Minute)
	require.NoError(t, err)

	// Well past expiry plus leeway.
	c.WithClock(func() time.Time { return issuedAt.Add(time.Hour) })
	_, err = c.VerifyAccess(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	minty, err := jwtx.NewCodec(testSecret, "someone-else")
	require.NoError(t, err)
	token, err := minty.IssueAccess(accessInput(), time.Minute)
	require.NoError(t, err)

	_, err = newCodec(t).VerifyAccess(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	c := newCodec(t)
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := c.VerifyAccess(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	}
}

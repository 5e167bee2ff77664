package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crateworks/wmsauth/internal/auth/domain"
)

func TestAuthenticate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "login@example.com", domain.RoleAdmin)

	pair, err := e.Tokens.Authenticate(ctx, "login@example.com", "hunter2-secure", "device-a")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEmpty(t, pair.SessionID)

	claims, err := e.Codec.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, pair.SessionID, claims.SID)
	assert.Equal(t, "device-a", claims.DeviceID)
	assert.Contains(t, claims.RoleNames, domain.RoleAdmin)

	// Email lookup is case-insensitive.
	_, err = e.Tokens.Authenticate(ctx, "LOGIN@Example.COM", "hunter2-secure", "device-a")
	require.NoError(t, err)
}

func TestAuthenticateFailures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createUser(t, "fail@example.com", domain.RoleClient)

	_, err := e.Tokens.Authenticate(ctx, "fail@example.com", "wrong-password", "device-a")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email reads the same as a wrong password.
	_, err = e.Tokens.Authenticate(ctx, "ghost@example.com", "hunter2-secure", "device-a")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.Tokens.Authenticate(ctx, "fail@example.com", "hunter2-secure", "")
	assert.ErrorIs(t, err, ErrDeviceRequired)
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "off@example.com", domain.RoleClient)

	_, err := e.Users.Disable(ctx, user.ID)
	require.NoError(t, err)

	_, err = e.Tokens.Authenticate(ctx, "off@example.com", "hunter2-secure", "device-a")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthenticateDeviceConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createUser(t, "two@example.com", domain.RoleOperator)

	_, err := e.Tokens.Authenticate(ctx, "two@example.com", "hunter2-secure", "device-a")
	require.NoError(t, err)

	_, err = e.Tokens.Authenticate(ctx, "two@example.com", "hunter2-secure", "device-b")
	assert.ErrorIs(t, err, ErrDeviceConflict)
}

func TestAuthenticateSameDeviceInvalidatesOldRefresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createUser(t, "re@example.com", domain.RoleClient)

	first, err := e.Tokens.Authenticate(ctx, "re@example.com", "hunter2-secure", "device-a")
	require.NoError(t, err)

	second, err := e.Tokens.Authenticate(ctx, "re@example.com", "hunter2-secure", "device-a")
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	// The re-login overwrote the stored fingerprint, killing the first
	// refresh token — and via replay detection, the whole session.
	_, err = e.Tokens.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshReuse)
}

func TestRefreshRotation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createUser(t, "refresh@example.com", domain.RoleClient)

	pair, err := e.Tokens.Authenticate(ctx, "refresh@example.com", "hunter2-secure", "device-a")
	require.NoError(t, err)

	next, err := e.Tokens.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.SessionID, next.SessionID)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// Old refresh token is now a replay and revokes the session.
	_, err = e.Tokens.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshReuse)

	// The revocation also kills the latest token.
	_, err = e.Tokens.Refresh(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestRefreshRejectsGarbageAndAccessTokens(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createUser(t, "mix@example.com", domain.RoleClient)

	pair, err := e.Tokens.Authenticate(ctx, "mix@example.com", "hunter2-secure", "device-a")
	require.NoError(t, err)

	_, err = e.Tokens.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	// An access token is the wrong type even though the signature holds.
	_, err = e.Tokens.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestLogoutEndsSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "bye@example.com", domain.RoleClient)

	pair, err := e.Tokens.Authenticate(ctx, "bye@example.com", "hunter2-secure", "device-a")
	require.NoError(t, err)

	require.NoError(t, e.Tokens.Logout(ctx, pair.SessionID))

	assert.ErrorIs(t,
		e.Registry.ValidateOnRequest(ctx, pair.SessionID, user.ID, "device-a"),
		ErrSessionInvalid)

	_, err = e.Tokens.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestAccessClaimsCarryScopeHints(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "hint@example.com", domain.RoleOperator)
	w := e.createWarehouse(t, "North DC")
	e.attachOperatorProfile(t, user.ID, w.ID)

	pair, err := e.Tokens.Authenticate(ctx, "hint@example.com", "hunter2-secure", "device-a")
	require.NoError(t, err)

	claims, err := e.Codec.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, w.ID, claims.WarehouseID)
	assert.Empty(t, claims.ClientID)
}

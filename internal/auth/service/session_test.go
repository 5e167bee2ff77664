package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crateworks/wmsauth/internal/auth/domain"
)

func TestBeginSessionDeviceConcurrency(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "op@example.com", domain.RoleOperator)

	s1, err := e.Registry.BeginSession(ctx, user.ID, "device-a", domain.RoleOperator)
	require.NoError(t, err)
	assert.True(t, s1.IsActive)

	// A different device while device-a is live conflicts.
	_, err = e.Registry.BeginSession(ctx, user.ID, "device-b", domain.RoleOperator)
	assert.ErrorIs(t, err, ErrDeviceConflict)

	// The same device is reused: same session id, not a second row.
	s1again, err := e.Registry.BeginSession(ctx, user.ID, "device-a", domain.RoleOperator)
	require.NoError(t, err)
	assert.Equal(t, s1.ID, s1again.ID)

	// After ending the session, device-b may log in.
	require.NoError(t, e.Registry.EndSession(ctx, s1.ID, ReasonLogout))
	s2, err := e.Registry.BeginSession(ctx, user.ID, "device-b", domain.RoleOperator)
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID, s2.ID)
}

func TestBeginSessionSweepsIdleSessions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "idle@example.com", domain.RoleClient)

	s1, err := e.Registry.BeginSession(ctx, user.ID, "device-a", domain.RoleClient)
	require.NoError(t, err)

	// Idle past the window: the old session no longer blocks a new device.
	e.backdateSession(t, s1.ID, time.Now().UTC().Add(-DefaultInactivityWindow-time.Minute))

	s2, err := e.Registry.BeginSession(ctx, user.ID, "device-b", domain.RoleClient)
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID, s2.ID)

	old, err := e.Store.Sessions().GetByID(ctx, s1.ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive)
}

func TestRotateRefreshSwapsHash(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "rot@example.com", domain.RoleClient)

	sess, err := e.Registry.BeginSession(ctx, user.ID, "device-a", domain.RoleClient)
	require.NoError(t, err)
	require.NoError(t, e.Registry.BindRefresh(ctx, sess.ID, "hash-1"))

	rotated, err := e.Registry.RotateRefresh(ctx, sess.ID, user.ID, "device-a", "hash-1", "hash-2")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", rotated.RefreshTokenHash)

	// The old fingerprint is now a replay: session revoked.
	_, err = e.Registry.RotateRefresh(ctx, sess.ID, user.ID, "device-a", "hash-1", "hash-3")
	assert.ErrorIs(t, err, ErrRefreshReuse)

	row, err := e.Store.Sessions().GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, row.IsActive)

	// Even the current fingerprint is dead once the session is revoked.
	_, err = e.Registry.RotateRefresh(ctx, sess.ID, user.ID, "device-a", "hash-2", "hash-4")
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestRotateRefreshExpiresIdleSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "rotidle@example.com", domain.RoleClient)

	sess, err := e.Registry.BeginSession(ctx, user.ID, "device-a", domain.RoleClient)
	require.NoError(t, err)
	require.NoError(t, e.Registry.BindRefresh(ctx, sess.ID, "hash-1"))

	e.backdateSession(t, sess.ID, time.Now().UTC().Add(-DefaultInactivityWindow-time.Minute))

	_, err = e.Registry.RotateRefresh(ctx, sess.ID, user.ID, "device-a", "hash-1", "hash-2")
	assert.ErrorIs(t, err, ErrSessionInvalid)

	// The rejection flipped the row, not just the answer.
	row, err := e.Store.Sessions().GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, row.IsActive)
}

func TestRotateRefreshRejectsWrongBinding(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "bind@example.com", domain.RoleClient)
	other := e.createUser(t, "other@example.com", domain.RoleClient)

	sess, err := e.Registry.BeginSession(ctx, user.ID, "device-a", domain.RoleClient)
	require.NoError(t, err)
	require.NoError(t, e.Registry.BindRefresh(ctx, sess.ID, "hash-1"))

	_, err = e.Registry.RotateRefresh(ctx, sess.ID, other.ID, "device-a", "hash-1", "x")
	assert.ErrorIs(t, err, ErrSessionInvalid)

	_, err = e.Registry.RotateRefresh(ctx, sess.ID, user.ID, "device-b", "hash-1", "x")
	assert.ErrorIs(t, err, ErrSessionInvalid)

	// Neither mismatch counted as a replay: session still alive.
	row, err := e.Store.Sessions().GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, row.IsActive)
}

func TestValidateOnRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "val@example.com", domain.RoleClient)

	sess, err := e.Registry.BeginSession(ctx, user.ID, "device-a", domain.RoleClient)
	require.NoError(t, err)

	require.NoError(t, e.Registry.ValidateOnRequest(ctx, sess.ID, user.ID, "device-a"))

	assert.ErrorIs(t, e.Registry.ValidateOnRequest(ctx, sess.ID, user.ID, "device-b"), ErrSessionInvalid)
	assert.ErrorIs(t, e.Registry.ValidateOnRequest(ctx, sess.ID, "someone-else", "device-a"), ErrSessionInvalid)
	assert.ErrorIs(t, e.Registry.ValidateOnRequest(ctx, "missing-session", user.ID, "device-a"), ErrSessionInvalid)
}

func TestValidateOnRequestExpiresIdleSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "stale@example.com", domain.RoleClient)

	sess, err := e.Registry.BeginSession(ctx, user.ID, "device-a", domain.RoleClient)
	require.NoError(t, err)

	e.backdateSession(t, sess.ID, time.Now().UTC().Add(-DefaultInactivityWindow-time.Minute))

	assert.ErrorIs(t, e.Registry.ValidateOnRequest(ctx, sess.ID, user.ID, "device-a"), ErrSessionInvalid)

	// Detection flipped the row, not just the answer.
	row, err := e.Store.Sessions().GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, row.IsActive)
}

func TestValidateOnRequestBumpsLastSeen(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "bump@example.com", domain.RoleClient)

	sess, err := e.Registry.BeginSession(ctx, user.ID, "device-a", domain.RoleClient)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-10 * time.Minute)
	e.backdateSession(t, sess.ID, past)

	require.NoError(t, e.Registry.ValidateOnRequest(ctx, sess.ID, user.ID, "device-a"))

	row, err := e.Store.Sessions().GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, row.LastSeenAt.After(past))
}

func TestEndAllSessions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "all@example.com", domain.RoleClient)

	s1, err := e.Registry.BeginSession(ctx, user.ID, "device-a", domain.RoleClient)
	require.NoError(t, err)
	require.NoError(t, e.Registry.EndSession(ctx, s1.ID, ReasonLogout))
	_, err = e.Registry.BeginSession(ctx, user.ID, "device-b", domain.RoleClient)
	require.NoError(t, err)

	n, err := e.Registry.EndAllSessions(ctx, user.ID, ReasonDisable)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	active, err := e.Registry.ActiveSessions(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crateworks/wmsauth/internal/auth/domain"
)

func TestResolveScopeAdmin(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "admin@example.com", domain.RoleAdmin)

	scope, err := e.Scopes.Resolve(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeAdmin, scope.Kind)
	assert.True(t, scope.Unrestricted())
}

func TestResolveScopeAdminWinsOverOtherRoles(t *testing.T) {
	e := newEnv(t)
	// Admin who also holds an operator role but has no operator profile:
	// the admin arm resolves first, so no profile is required.
	user := e.createUser(t, "both@example.com", domain.RoleAdmin, domain.RoleOperator)

	scope, err := e.Scopes.Resolve(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeAdmin, scope.Kind)
}

func TestResolveScopeOperator(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "op@example.com", domain.RoleOperator)
	w := e.createWarehouse(t, "South DC")
	e.attachOperatorProfile(t, user.ID, w.ID)

	scope, err := e.Scopes.Resolve(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeWarehouse, scope.Kind)
	assert.Equal(t, w.ID, scope.BoundID)
}

func TestResolveScopeOperatorWithoutProfile(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "lost@example.com", domain.RoleInventoryManager)

	// Misprovisioned operator fails hard instead of widening to self.
	_, err := e.Scopes.Resolve(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrProfileMissing)
}

func TestResolveScopeClient(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "client@example.com", domain.RoleClient)
	record := e.attachClientRecord(t, user.ID, "Acme Ltd")

	scope, err := e.Scopes.Resolve(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeClient, scope.Kind)
	assert.Equal(t, record.ID, scope.BoundID)
}

func TestResolveScopeClientWithoutRecord(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "orphan@example.com", domain.RoleClient)

	_, err := e.Scopes.Resolve(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrProfileMissing)
}

func TestResolveScopeSelfFallback(t *testing.T) {
	e := newEnv(t)
	// Billing manager is neither admin, operator-class, nor client.
	user := e.createUser(t, "billing@example.com", domain.RoleBillingManager)

	scope, err := e.Scopes.Resolve(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeSelf, scope.Kind)
	assert.Equal(t, user.ID, scope.BoundID)
}

func TestResolveScopeDisabledUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "gone@example.com", domain.RoleAdmin)

	_, err := e.Users.Disable(ctx, user.ID)
	require.NoError(t, err)

	_, err = e.Scopes.Resolve(ctx, user.ID)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

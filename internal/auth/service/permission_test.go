package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crateworks/wmsauth/internal/auth/domain"
)

func TestGrantedCodesUnion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Two roles whose grants overlap on invoice.view / inventory.view.
	user := e.createUser(t, "multi@example.com", domain.RoleBillingManager, domain.RoleClient)

	codes, err := e.Perms.GrantedCodes(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"billing.invoice.create",
		"billing.invoice.approve",
		"invoice.view",
		"inventory.view",
	}, codes)
}

func TestAuthorize(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "authz@example.com", domain.RoleOperator)

	require.NoError(t, e.Perms.Authorize(ctx, user.ID, "inventory.view"))
	require.NoError(t, e.Perms.Authorize(ctx, user.ID, "inventory.view", "inventory.inward.create"))

	// Zero required codes is an account liveness check.
	require.NoError(t, e.Perms.Authorize(ctx, user.ID))

	// Missing one of the required codes denies the lot.
	err := e.Perms.Authorize(ctx, user.ID, "inventory.view", "billing.invoice.approve")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAuthorizeDisabledUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "dis@example.com", domain.RoleAdmin)

	_, err := e.Users.Disable(ctx, user.ID)
	require.NoError(t, err)

	// Disabled beats everything, even for a former admin.
	assert.ErrorIs(t, e.Perms.Authorize(ctx, user.ID, "inventory.view"), ErrAccountDisabled)
	assert.ErrorIs(t, e.Perms.Authorize(ctx, user.ID), ErrAccountDisabled)
}

func TestAuthorizeUnknownCodeIsCatalogDefect(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "corrupt@example.com", domain.RoleAdmin)

	err := e.Perms.Authorize(ctx, user.ID, "inventory.teleport")
	assert.ErrorIs(t, err, ErrCatalogCorrupt)
}

func TestAuthorizeUnknownUser(t *testing.T) {
	e := newEnv(t)
	err := e.Perms.Authorize(context.Background(), "no-such-user", "inventory.view")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRoleChangeTakesEffectNextCall(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "fresh@example.com", domain.RoleClient)

	err := e.Perms.Authorize(ctx, user.ID, "billing.invoice.create")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	role, err := e.Store.Roles().GetByName(ctx, domain.RoleBillingManager)
	require.NoError(t, err)
	require.NoError(t, e.Store.Users().AttachRole(ctx, user.ID, role.ID))

	// No cache to invalidate: the next call sees the new grant.
	require.NoError(t, e.Perms.Authorize(ctx, user.ID, "billing.invoice.create"))
}

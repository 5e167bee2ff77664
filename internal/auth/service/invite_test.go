package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crateworks/wmsauth/internal/auth/domain"
	"github.com/crateworks/wmsauth/internal/auth/mail"
)

func TestCreateInvitation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.createUser(t, "admin@example.com", domain.RoleAdmin)

	inv, err := e.Invites.Create(ctx, "  New@Example.COM ", domain.RoleOperator, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", inv.Email)
	assert.Equal(t, domain.InvitationStatusPending, inv.Status)
	assert.Len(t, inv.Token, 64) // 48 random bytes, base64url
	assert.WithinDuration(t, time.Now().Add(DefaultInviteTTL), inv.ExpiresAt, time.Minute)

	// Live pending invitation blocks a second one.
	_, err = e.Invites.Create(ctx, "new@example.com", domain.RoleOperator, admin.ID)
	assert.ErrorIs(t, err, ErrDuplicateInvite)

	// Unknown role is rejected before anything is written.
	_, err = e.Invites.Create(ctx, "other@example.com", "SUPERVISOR", admin.ID)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestCreateInvitationConflictsWithAccounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.createUser(t, "admin@example.com", domain.RoleAdmin)
	active := e.createUser(t, "active@example.com", domain.RoleClient)

	_, err := e.Invites.Create(ctx, active.Email, domain.RoleClient, admin.ID)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// DISABLED is terminal — no resurrection by invitation.
	disabled := e.createUser(t, "former@example.com", domain.RoleClient)
	_, err = e.Users.Disable(ctx, disabled.ID)
	require.NoError(t, err)

	_, err = e.Invites.Create(ctx, disabled.Email, domain.RoleClient, admin.ID)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

type failingMailer struct{}

func (failingMailer) SendInvitation(context.Context, mail.Invitation) error {
	return assert.AnError
}

func TestCreateInvitationSurfacesMailFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.createUser(t, "admin@example.com", domain.RoleAdmin)

	e.Invites.Mailer = failingMailer{}
	_, err := e.Invites.Create(ctx, "unreachable@example.com", domain.RoleClient, admin.ID)
	require.ErrorIs(t, err, assert.AnError)

	// The row still exists; the retry path conflicts until it expires.
	_, err = e.Store.Invitations().FindPendingByEmail(ctx, "unreachable@example.com")
	require.NoError(t, err)
}

func TestAcceptInvitationOperator(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.createUser(t, "admin@example.com", domain.RoleAdmin)
	w := e.createWarehouse(t, "East DC")

	inv, err := e.Invites.Create(ctx, "op@example.com", domain.RoleOperator, admin.ID)
	require.NoError(t, err)

	user, err := e.Invites.Accept(ctx, AcceptInput{
		Token:       inv.Token,
		Password:    "str0ng-passw0rd",
		FullName:    "Pat Operator",
		WarehouseID: w.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusActive, user.Status)
	assert.True(t, user.HasRole(domain.RoleOperator))

	profile, err := e.Store.Profiles().GetOperatorByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, profile.WarehouseID)

	// Redeemed means gone: a second redemption fails.
	_, err = e.Invites.Accept(ctx, AcceptInput{Token: inv.Token, Password: "x-pass-123"})
	assert.ErrorIs(t, err, ErrInviteNotFound)

	// And the new account can log in.
	_, err = e.Tokens.Authenticate(ctx, "op@example.com", "str0ng-passw0rd", "device-a")
	require.NoError(t, err)
}

func TestAcceptInvitationOperatorRequiresWarehouse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.createUser(t, "admin@example.com", domain.RoleAdmin)

	inv, err := e.Invites.Create(ctx, "op@example.com", domain.RoleInventoryManager, admin.ID)
	require.NoError(t, err)

	_, err = e.Invites.Accept(ctx, AcceptInput{Token: inv.Token, Password: "x-pass-123"})
	assert.ErrorIs(t, err, ErrWarehouseRequired)

	_, err = e.Invites.Accept(ctx, AcceptInput{
		Token: inv.Token, Password: "x-pass-123", WarehouseID: "no-such-warehouse",
	})
	assert.ErrorIs(t, err, ErrWarehouseNotFound)

	// Failed redemptions left the invitation PENDING.
	got, err := e.Store.Invitations().GetByToken(ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationStatusPending, got.Status)
}

func TestAcceptInvitationClient(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.createUser(t, "admin@example.com", domain.RoleAdmin)

	inv, err := e.Invites.Create(ctx, "buyer@example.com", domain.RoleClient, admin.ID)
	require.NoError(t, err)

	user, err := e.Invites.Accept(ctx, AcceptInput{
		Token:    inv.Token,
		Password: "cl1ent-pass",
		FullName: "Acme Ltd",
	})
	require.NoError(t, err)

	record, err := e.Store.Profiles().GetClientByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", record.Name)

	scope, err := e.Scopes.Resolve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeClient, scope.Kind)
	assert.Equal(t, record.ID, scope.BoundID)
}

func TestAcceptExpiredInvitation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.createUser(t, "admin@example.com", domain.RoleAdmin)

	e.Invites.TTL = time.Nanosecond
	inv, err := e.Invites.Create(ctx, "late@example.com", domain.RoleClient, admin.ID)
	require.NoError(t, err)

	_, err = e.Invites.Accept(ctx, AcceptInput{Token: inv.Token, Password: "x-pass-123"})
	assert.ErrorIs(t, err, ErrInviteExpired)

	// The failed redemption moved it to its terminal state.
	got, err := e.Store.Invitations().GetByToken(ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationStatusExpired, got.Status)

	// The address is now free for a fresh invitation.
	e.Invites.TTL = 0
	_, err = e.Invites.Create(ctx, "late@example.com", domain.RoleClient, admin.ID)
	require.NoError(t, err)
}

func TestAcceptUnknownToken(t *testing.T) {
	e := newEnv(t)

	_, err := e.Invites.Accept(context.Background(), AcceptInput{
		Token: "never-issued", Password: "x-pass-123",
	})
	assert.ErrorIs(t, err, ErrInviteNotFound)

	_, err = e.Invites.Accept(context.Background(), AcceptInput{Token: "whatever"})
	assert.ErrorIs(t, err, ErrPasswordRequired)
}

func TestListInvitations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.createUser(t, "admin@example.com", domain.RoleAdmin)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := e.Invites.Create(ctx, email, domain.RoleClient, admin.ID)
		require.NoError(t, err)
	}

	all, err := e.Invites.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := e.Invites.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

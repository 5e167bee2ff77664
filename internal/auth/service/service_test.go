package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crateworks/wmsauth/internal/auth/domain"
	"github.com/crateworks/wmsauth/internal/auth/mail"
	"github.com/crateworks/wmsauth/internal/auth/store"
	"github.com/crateworks/wmsauth/internal/auth/store/drivers/sqlite"
	"github.com/crateworks/wmsauth/pkg/cryptox"
	"github.com/crateworks/wmsauth/pkg/idx"
	"github.com/crateworks/wmsauth/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// env bundles a migrated, seeded store and every service wired the way
// the app wires them.
type env struct {
	Store    store.Store
	Registry *SessionRegistry
	Tokens   *TokenService
	Perms    *PermissionService
	Scopes   *ScopeService
	Invites  *InviteService
	Users    *UserService
	Codec    *jwtx.Codec
}

func newEnv(t *testing.T) *env {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	seeder := &Seeder{Store: s}
	require.NoError(t, seeder.Seed(context.Background()))

	codec, err := jwtx.NewCodec([]byte("0123456789abcdef0123456789abcdef"), "wmsauth-test")
	require.NoError(t, err)

	registry := &SessionRegistry{Store: s}
	return &env{
		Store:    s,
		Registry: registry,
		Tokens:   &TokenService{Codec: codec, Store: s, Registry: registry},
		Perms:    &PermissionService{Store: s},
		Scopes:   &ScopeService{Store: s},
		Invites:  &InviteService{Store: s, Mailer: mail.NewLog()},
		Users:    &UserService{Store: s},
		Codec:    codec,
	}
}

// createUser provisions an ACTIVE account holding the named roles, with
// password "hunter2-secure".
func (e *env) createUser(t *testing.T, email string, roleNames ...string) domain.User {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword("hunter2-secure")
	require.NoError(t, err)

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		FullName:     "Test User",
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.Store.Users().Create(ctx, user))

	for _, name := range roleNames {
		role, err := e.Store.Roles().GetByName(ctx, name)
		require.NoError(t, err)
		require.NoError(t, e.Store.Users().AttachRole(ctx, user.ID, role.ID))
	}

	full, err := e.Store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	return full
}

func (e *env) createWarehouse(t *testing.T, name string) domain.Warehouse {
	t.Helper()
	w := domain.Warehouse{ID: idx.New().String(), Name: name, CreatedAt: time.Now().UTC()}
	require.NoError(t, e.Store.Warehouses().Create(context.Background(), w))
	return w
}

func (e *env) attachOperatorProfile(t *testing.T, userID, warehouseID string) {
	t.Helper()
	require.NoError(t, e.Store.Profiles().CreateOperator(context.Background(), domain.OperatorProfile{
		ID:          idx.New().String(),
		UserID:      userID,
		WarehouseID: warehouseID,
		CreatedAt:   time.Now().UTC(),
	}))
}

func (e *env) attachClientRecord(t *testing.T, userID, name string) domain.Client {
	t.Helper()
	c := domain.Client{
		ID:        idx.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.Store.Profiles().CreateClient(context.Background(), c))
	return c
}

// backdateSession rewrites last_seen_at so inactivity paths can be
// exercised without a controllable clock.
func (e *env) backdateSession(t *testing.T, sessionID string, lastSeen time.Time) {
	t.Helper()
	require.NoError(t, e.Store.Sessions().TouchLastSeen(context.Background(), sessionID, lastSeen))
}

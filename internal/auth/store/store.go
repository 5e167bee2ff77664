package store

import (
	"context"
	"errors"
	"time"

	"github.com/crateworks/wmsauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it. Sub-repositories keep concerns tidy and make
// it obvious when someone is about to nest transactions.
type Store interface {
	Users() Users
	Roles() Roles
	Permissions() Permissions
	Sessions() Sessions
	Invitations() Invitations
	Profiles() Profiles
	Warehouses() Warehouses

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing on nil and rolling
	// back on error. Preferred over Tx for almost everything.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetByID returns a user with roles and their permissions loaded.
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByEmail is the login lookup; roles and permissions are loaded.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// Create inserts a new user (id provided by the app via ULID).
	Create(ctx context.Context, u domain.User) error

	// Activate sets the password hash, full name, and ACTIVE status in
	// one statement (invitation acceptance path).
	Activate(ctx context.Context, userID, passwordHash, fullName string) error

	// SetStatus updates the lifecycle status and bumps updated_at.
	SetStatus(ctx context.Context, userID string, status domain.UserStatus) error

	// AttachRole links a role to a user; a duplicate link is a no-op.
	AttachRole(ctx context.Context, userID, roleID string) error

	// List returns users ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]domain.User, error)

	// IsEmpty reports whether any user exists (bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	// GetByID returns a role with permissions loaded.
	GetByID(ctx context.Context, id string) (domain.Role, error)

	// GetByName returns a role with permissions loaded.
	GetByName(ctx context.Context, name string) (domain.Role, error)

	ListAll(ctx context.Context) ([]domain.Role, error)
	Create(ctx context.Context, r domain.Role) error

	// AttachPermission links a permission to a role; duplicates no-op.
	AttachPermission(ctx context.Context, roleID, permissionID string) error
}

type Permissions interface {
	GetByCode(ctx context.Context, code string) (domain.Permission, error)
	ListAll(ctx context.Context) ([]domain.Permission, error)
	Create(ctx context.Context, p domain.Permission) error
}

type Sessions interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)

	// ListActiveByUser returns active sessions only; it does NOT apply
	// the inactivity window — that is the registry's job.
	ListActiveByUser(ctx context.Context, userID string) ([]domain.Session, error)

	// FindActiveByUserDevice returns the active session for a
	// (user, device) pair, ErrNotFound when none.
	FindActiveByUserDevice(ctx context.Context, userID, deviceID string) (domain.Session, error)

	Create(ctx context.Context, s domain.Session) error

	// UpdateRefreshHash replaces the stored refresh fingerprint and
	// bumps last_seen_at in one statement.
	UpdateRefreshHash(ctx context.Context, sessionID, hash string, seenAt time.Time) error

	// TouchLastSeen is the hot-path best-effort activity bump.
	TouchLastSeen(ctx context.Context, sessionID string, seenAt time.Time) error

	// Deactivate flips is_active off for one session.
	Deactivate(ctx context.Context, sessionID string) error

	// DeactivateAllForUser flips every active session for the user and
	// returns how many were affected.
	DeactivateAllForUser(ctx context.Context, userID string) (int64, error)

	// DeactivateIdleForUser flags the user's active sessions whose
	// last_seen_at is before cutoff (lazy inactivity GC).
	DeactivateIdleForUser(ctx context.Context, userID string, cutoff time.Time) (int64, error)

	// DeleteInactiveBefore purges long-dead rows (housekeeping).
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Invitations interface {
	Create(ctx context.Context, inv domain.Invitation) error
	GetByToken(ctx context.Context, token string) (domain.Invitation, error)

	// FindPendingByEmail returns the PENDING invitation for an email,
	// ErrNotFound when none exists.
	FindPendingByEmail(ctx context.Context, email string) (domain.Invitation, error)

	// SetStatus performs the forward-only transition; it refuses to
	// touch rows that already left PENDING.
	SetStatus(ctx context.Context, id string, status domain.InvitationStatus) error

	List(ctx context.Context, limit, offset int) ([]domain.Invitation, error)

	// DeleteTerminalBefore purges old ACCEPTED/EXPIRED rows.
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Profiles interface {
	// GetOperatorByUserID returns ErrNotFound when the user has no
	// operator profile.
	GetOperatorByUserID(ctx context.Context, userID string) (domain.OperatorProfile, error)
	CreateOperator(ctx context.Context, p domain.OperatorProfile) error

	// GetClientByUserID returns ErrNotFound when the user has no client
	// record.
	GetClientByUserID(ctx context.Context, userID string) (domain.Client, error)
	CreateClient(ctx context.Context, c domain.Client) error
}

type Warehouses interface {
	GetByID(ctx context.Context, id string) (domain.Warehouse, error)
	Create(ctx context.Context, w domain.Warehouse) error
	ListAll(ctx context.Context) ([]domain.Warehouse, error)
}

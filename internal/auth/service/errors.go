package service

import "errors"

// Sentinel errors. The HTTP layer maps each to exactly one status code;
// services never touch HTTP concepts. Security decisions are terminal
// for the current request — nothing here is retried locally.
var (
	// Unauthorized
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrSessionInvalid     = errors.New("session_invalid")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrRefreshReuse       = errors.New("refresh_token_reused")

	// Forbidden
	ErrAccountDisabled  = errors.New("account_disabled")
	ErrPermissionDenied = errors.New("permission_denied")
	ErrProfileMissing   = errors.New("scope_profile_missing")

	// Conflict
	ErrDeviceConflict  = errors.New("concurrent_device_conflict")
	ErrDuplicateEmail  = errors.New("duplicate_email")
	ErrDuplicateInvite = errors.New("duplicate_invitation")

	// BadRequest
	ErrInviteNotFound    = errors.New("invitation_invalid")
	ErrInviteExpired     = errors.New("invitation_expired")
	ErrDeviceRequired    = errors.New("device_id_required")
	ErrWarehouseRequired = errors.New("warehouse_id_required")
	ErrPasswordRequired  = errors.New("password_required")

	// NotFound
	ErrUserNotFound      = errors.New("user_not_found")
	ErrRoleNotFound      = errors.New("role_not_found")
	ErrWarehouseNotFound = errors.New("warehouse_not_found")

	// Internal: the catalog references broke at runtime, which means the
	// deployment skipped or corrupted seeding. Never a user error.
	ErrCatalogCorrupt = errors.New("permission_catalog_corrupt")
)

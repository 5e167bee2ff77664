package http

import (
	"time"

	"github.com/crateworks/wmsauth/internal/auth/domain"
)

// Response payload shapes. Handlers never serialize domain structs
// directly — password hashes and refresh fingerprints must not be one
// forgotten tag away from the wire.

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
	SessionID    string `json:"session_id"`
}

func tokenResponse(p domain.TokenPair) tokenPayload {
	return tokenPayload{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    int64(p.ExpiresIn.Seconds()),
		SessionID:    p.SessionID,
	}
}

type userPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Status    string    `json:"status"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func userResponse(u domain.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Status:    string(u.Status),
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt,
	}
}

type sessionPayload struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id"`
	RoleName   string    `json:"role_name"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func sessionResponse(s domain.Session) sessionPayload {
	return sessionPayload{
		ID:         s.ID,
		DeviceID:   s.DeviceID,
		RoleName:   s.RoleName,
		CreatedAt:  s.CreatedAt,
		LastSeenAt: s.LastSeenAt,
	}
}

type invitationPayload struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	RoleAssigned string    `json:"role_assigned"`
	Token        string    `json:"token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// invitationResponse includes the bearer token only when asked: the
// create response carries it once, list responses never do.
func invitationResponse(inv domain.Invitation, includeToken bool) invitationPayload {
	out := invitationPayload{
		ID:           inv.ID,
		Email:        inv.Email,
		RoleAssigned: inv.RoleAssigned,
		ExpiresAt:    inv.ExpiresAt,
		Status:       string(inv.Status),
		CreatedAt:    inv.CreatedAt,
	}
	if includeToken {
		out.Token = inv.Token
	}
	return out
}

type warehousePayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func warehouseResponse(w domain.Warehouse) warehousePayload {
	return warehousePayload{ID: w.ID, Name: w.Name, CreatedAt: w.CreatedAt}
}

type permissionPayload struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type rolePayload struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Permissions []permissionPayload `json:"permissions"`
}

func roleResponse(role domain.Role) rolePayload {
	perms := make([]permissionPayload, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		perms = append(perms, permissionPayload{Code: p.Code, Description: p.Description})
	}
	return rolePayload{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: perms,
	}
}

package http

import (
	"net/http"

	"github.com/crateworks/wmsauth/internal/auth/service"
	"github.com/crateworks/wmsauth/pkg/httpx"
)

// MeHandler returns the caller's profile, granted permission codes, and
// resolved data scope in one round trip.
type MeHandler struct {
	UserService *service.UserService
	Permissions *service.PermissionService
	Scopes      *service.ScopeService
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.UserIDFromContext(ctx)

	user, err := h.UserService.GetByID(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	codes, err := h.Permissions.GrantedCodes(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	scope, err := h.Scopes.Resolve(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"user":        userResponse(user),
		"permissions": codes,
		"scope": map[string]string{
			"kind":     scope.Kind.String(),
			"bound_id": scope.BoundID,
		},
	})
}

// UserListHandler is the admin account directory.
type UserListHandler struct {
	UserService *service.UserService
}

func (h *UserListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	users, err := h.UserService.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]userPayload, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": out})
}

// UserDisableHandler permanently disables an account and reports how
// many live sessions died with it.
type UserDisableHandler struct {
	UserService *service.UserService
}

func (h *UserDisableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "user id is required")
		return
	}

	ended, err := h.UserService.Disable(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"sessions_ended": ended})
}

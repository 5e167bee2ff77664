package http

import (
	"net/http"

	"github.com/crateworks/wmsauth/internal/auth/store"
	"github.com/crateworks/wmsauth/pkg/httpx"
)

// RoleListHandler exposes the role catalog with per-role grants. Admin
// only — the catalog shape is exactly what permission-denial responses
// refuse to reveal.
type RoleListHandler struct {
	Store store.Store
}

func (h *RoleListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Store.Roles().ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]rolePayload, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponse(role))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"roles": out})
}

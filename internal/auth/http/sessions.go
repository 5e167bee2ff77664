package http

import (
	"net/http"

	"github.com/crateworks/wmsauth/internal/auth/service"
	"github.com/crateworks/wmsauth/pkg/httpx"
)

// SessionListHandler shows the caller their own live sessions.
type SessionListHandler struct {
	Registry *service.SessionRegistry
}

func (h *SessionListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.UserIDFromContext(ctx)

	sessions, err := h.Registry.ActiveSessions(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	current := httpx.SessionIDFromContext(ctx)
	out := make([]map[string]any, 0, len(sessions))
	for _, s := range sessions {
		payload := sessionResponse(s)
		out = append(out, map[string]any{
			"id":           payload.ID,
			"device_id":    payload.DeviceID,
			"role_name":    payload.RoleName,
			"created_at":   payload.CreatedAt,
			"last_seen_at": payload.LastSeenAt,
			"current":      s.ID == current,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

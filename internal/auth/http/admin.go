package http

import (
	"net/http"

	"github.com/crateworks/wmsauth/internal/auth/service"
	"github.com/crateworks/wmsauth/pkg/httpx"
)

// HousekeepingHandler runs the one-shot purge of dead sessions and
// terminal invitations.
type HousekeepingHandler struct {
	Housekeeping *service.HousekeepingService
}

func (h *HousekeepingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report, err := h.Housekeeping.Run(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, report)
}

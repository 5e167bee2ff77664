package http

import (
	"net/http"

	"github.com/crateworks/wmsauth/internal/auth/store"
	"github.com/crateworks/wmsauth/pkg/httpx"
)

// WarehouseListHandler exposes the warehouse catalog so admins can pick
// a warehouse id when inviting operator-class users.
type WarehouseListHandler struct {
	Store store.Store
}

func (h *WarehouseListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.Store.Warehouses().ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]warehousePayload, 0, len(warehouses))
	for _, wh := range warehouses {
		out = append(out, warehouseResponse(wh))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"warehouses": out})
}

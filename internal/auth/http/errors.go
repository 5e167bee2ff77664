package http

import (
	"errors"
	"net/http"

	"github.com/crateworks/wmsauth/internal/auth/service"
	"github.com/crateworks/wmsauth/pkg/httpx"
	"github.com/crateworks/wmsauth/pkg/slogx"
)

// writeServiceError maps service sentinels onto HTTP statuses in one
// place so no handler invents its own mapping. Anything unrecognized is
// a 500 with a generic body; the detail goes to the log only.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionInvalid),
		errors.Is(err, service.ErrInvalidRefresh),
		errors.Is(err, service.ErrRefreshReuse):
		writeBearerError(w, err.Error())

	case errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, service.ErrProfileMissing):
		// Deliberately generic: never enumerate codes or roles.
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "access denied")

	case errors.Is(err, service.ErrDeviceConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict", "an active session exists on another device")

	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrDuplicateInvite):
		httpx.WriteError(w, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, service.ErrInviteNotFound),
		errors.Is(err, service.ErrInviteExpired),
		errors.Is(err, service.ErrDeviceRequired),
		errors.Is(err, service.ErrWarehouseRequired),
		errors.Is(err, service.ErrPasswordRequired):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, service.ErrWarehouseNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", err.Error())

	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

// writeBearerError is the RFC 6750 shape for 401s.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}

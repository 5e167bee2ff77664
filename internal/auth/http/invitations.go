package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/crateworks/wmsauth/internal/auth/domain"
	"github.com/crateworks/wmsauth/internal/auth/service"
	"github.com/crateworks/wmsauth/pkg/httpx"
)

// InvitationCreateHandler mints an invitation for an email/role pair.
// Inviting a CLIENT and inviting staff are separate capabilities, so the
// permission check happens here, after the body names the role.
type InvitationCreateHandler struct {
	InviteService *service.InviteService
	Permissions   *service.PermissionService
}

type invitationCreateRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *InvitationCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req invitationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed json body")
		return
	}
	if req.Email == "" || req.Role == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and role are required")
		return
	}

	inviterID := httpx.UserIDFromContext(r.Context())

	required := "user.invite.operator"
	if req.Role == domain.RoleClient {
		required = "user.invite.client"
	}
	if err := h.Permissions.Authorize(r.Context(), inviterID, required); err != nil {
		writeServiceError(w, r, err)
		return
	}

	inv, err := h.InviteService.Create(r.Context(), req.Email, req.Role, inviterID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// The one and only time the raw token leaves the system over HTTP.
	httpx.WriteJSON(w, http.StatusCreated, invitationResponse(inv, true))
}

// InvitationListHandler is the admin view over the invitation ledger.
type InvitationListHandler struct {
	InviteService *service.InviteService
}

func (h *InvitationListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	invs, err := h.InviteService.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]invitationPayload, 0, len(invs))
	for _, inv := range invs {
		out = append(out, invitationResponse(inv, false))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"invitations": out})
}

// InvitationAcceptHandler redeems an invitation token into an account.
// Unauthenticated by design: the token is the credential.
type InvitationAcceptHandler struct {
	InviteService *service.InviteService
}

type invitationAcceptRequest struct {
	Token       string `json:"token"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	WarehouseID string `json:"warehouse_id,omitempty"`
}

func (h *InvitationAcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req invitationAcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed json body")
		return
	}
	if req.Token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	user, err := h.InviteService.Accept(r.Context(), service.AcceptInput{
		Token:       req.Token,
		Password:    req.Password,
		FullName:    req.FullName,
		WarehouseID: req.WarehouseID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userResponse(user))
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

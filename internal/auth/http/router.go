package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crateworks/wmsauth/internal/auth/service"
	"github.com/crateworks/wmsauth/internal/auth/store"
	"github.com/crateworks/wmsauth/internal/obs"
	"github.com/crateworks/wmsauth/pkg/httpx"
	"github.com/crateworks/wmsauth/pkg/jwtx"
	"github.com/crateworks/wmsauth/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	Codec        *jwtx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	Registry     *service.SessionRegistry
	TokenService *service.TokenService
	Permissions  *service.PermissionService
	Scopes       *service.ScopeService
	Invites      *service.InviteService
	Users        *service.UserService
	Housekeeping *service.HousekeepingService
}

func NewRouter(codec *jwtx.Codec, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		Codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Outermost first: request logging wraps instrumentation wraps routes.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		obs.Instrument,
	}

	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerInvitations()
	r.registerUsers()
	r.registerSessions()
	r.registerRoles()
	r.registerWarehouses()
	r.registerAdmin()
	r.registerSystem()
}

func (r *Router) registerAuth() {
	// Credential endpoints get the strict per-IP limit: they are the
	// brute-force surface.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(&LoginHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(&RefreshHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(&LogoutHandler{TokenService: r.TokenService},
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Redemption is public; the invitation token is the credential.
	r.Mux.Handle("POST /v1/auth/accept-invitation",
		httpx.Chain(&InvitationAcceptHandler{InviteService: r.Invites},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerInvitations() {
	// The required capability depends on who is being invited, so the
	// handler resolves it from the request body after authn.
	r.Mux.Handle("POST /v1/invitations",
		httpx.Chain(&InvitationCreateHandler{InviteService: r.Invites, Permissions: r.Permissions},
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/invitations",
		httpx.Chain(&InvitationListHandler{InviteService: r.Invites},
			r.authn(),
			r.requireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(&MeHandler{UserService: r.Users, Permissions: r.Permissions, Scopes: r.Scopes},
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /v1/users",
		httpx.Chain(&UserListHandler{UserService: r.Users},
			r.authn(),
			r.requireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/users/{id}/disable",
		httpx.Chain(&UserDisableHandler{UserService: r.Users},
			r.authn(),
			r.requireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSessions() {
	r.Mux.Handle("GET /v1/sessions",
		httpx.Chain(&SessionListHandler{Registry: r.Registry},
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerRoles() {
	r.Mux.Handle("GET /v1/roles",
		httpx.Chain(&RoleListHandler{Store: r.store},
			r.authn(),
			r.requireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerWarehouses() {
	r.Mux.Handle("GET /v1/warehouses",
		httpx.Chain(&WarehouseListHandler{Store: r.store},
			r.authn(),
			r.requireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	r.Mux.Handle("POST /v1/admin/housekeeping",
		httpx.Chain(&HousekeepingHandler{Housekeeping: r.Housekeeping},
			r.authn(),
			r.requireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Monitoring may poll these aggressively.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", obs.Handler())
}

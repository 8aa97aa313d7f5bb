package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gracechurch/portal/internal/portal/email"
	"github.com/gracechurch/portal/internal/portal/identity"
	"github.com/gracechurch/portal/internal/portal/metrics"
	"github.com/gracechurch/portal/internal/portal/service"
	"github.com/gracechurch/portal/internal/portal/store"
	"github.com/gracechurch/portal/pkg/httpx"
	"github.com/gracechurch/portal/pkg/slogx"

	_ "github.com/gracechurch/portal/api/portal" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	identity identity.Provider

	Registry     *service.Registry
	Registration *service.RegistrationService
	Invitations  *service.InvitationService
	Members      *service.MemberService
	Admin        *service.AdminResolver
	Gate         *service.Gate
	EmailMonitor *email.Monitor
	EmailLimiter *email.RateLimiter
}

func NewRouter(
	buildVersion string,
	st store.Store,
	idp identity.Provider,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		identity:     idp,
		logger:       logger,
	}

	// Request metrics read the matched pattern, so they sit next to the mux.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.HTTPMiddleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMe()
	r.registerInvites()
	r.registerMembers()
	r.registerEmail()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Church Portal API
//	@version		0.1.0
//	@description	Invitation-gated registration and administration for the church member portal.
//	@description
//	@description				Only invited email addresses can register. Administrative routes require a bearer token
//	@description				belonging to an administrator.
//
//	@contact.name				Grace Church Tech Team
//	@contact.url				https://github.com/gracechurch/portal
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token from the identity provider. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	register := &RegisterHandler{Registration: r.Registration}
	signIn := &SignInHandler{Registration: r.Registration, Admin: r.Admin}
	recovery := &RecoveryHandler{Registration: r.Registration}

	// Credential and email-triggering endpoints - strict rate limit by IP
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/signin",
		httpx.Chain(signIn,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/password-reset",
		httpx.Chain(http.HandlerFunc(recovery.HandleRequestReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/password-reset/complete",
		httpx.Chain(http.HandlerFunc(recovery.HandleCompleteReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Confirmation links are opened once per signup - moderate limit
	r.Mux.Handle("POST /v1/auth/confirm",
		httpx.Chain(http.HandlerFunc(recovery.HandleConfirmEmail),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerMe() {
	h := &MeHandler{Store: r.store, Admin: r.Admin}

	// Authenticated endpoint - lenient rate limit by user
	r.Mux.Handle("GET /v1/me",
		httpx.Chain(h,
			requireUser(r.Gate),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

// admin wraps h with the admin gate and a moderate per-user limit.
func (r *Router) admin(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h,
		requireAdmin(r.Gate),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{Invitations: r.Invitations, Registry: r.Registry}

	r.Mux.Handle("POST /v1/admin/invites", r.admin(h.HandleCreate))
	r.Mux.Handle("GET /v1/admin/invites", r.admin(h.HandleList))
	r.Mux.Handle("GET /v1/admin/invites/{email}", r.admin(h.HandleGet))
	r.Mux.Handle("DELETE /v1/admin/invites/{email}", r.admin(h.HandleDelete))
	r.Mux.Handle("POST /v1/admin/invites/{email}/reset", r.admin(h.HandleReset))
	r.Mux.Handle("POST /v1/admin/invites/{email}/resend", r.admin(h.HandleResend))
}

func (r *Router) registerMembers() {
	h := &MembersHandler{Members: r.Members}

	r.Mux.Handle("GET /v1/admin/members", r.admin(h.HandleList))
	r.Mux.Handle("DELETE /v1/admin/members/{id}", r.admin(h.HandleDelete))
}

func (r *Router) registerEmail() {
	h := &EmailHandler{Monitor: r.EmailMonitor, Limiter: r.EmailLimiter}

	r.Mux.Handle("GET /v1/admin/email/stats", r.admin(h.HandleStats))
	r.Mux.Handle("GET /v1/admin/email/logs", r.admin(h.HandleLogs))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.identity),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", metrics.Handler())

	// Only the local provider signs its own tokens
	if src, ok := r.identity.(jwksSource); ok {
		r.Mux.Handle("GET /.well-known/jwks.json",
			httpx.Chain(JWKSHandler(src),
				httpx.RateLimitByIP(httpx.PublicLimit),
			),
		)
	}
}

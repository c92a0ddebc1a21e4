package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/service"
	"github.com/crewplane/crewplane/internal/auth/staff"
	"github.com/crewplane/crewplane/internal/auth/store"
	"github.com/crewplane/crewplane/pkg/httpx"
	"github.com/crewplane/crewplane/pkg/jwtx"
	"github.com/crewplane/crewplane/pkg/slogx"

	_ "github.com/crewplane/crewplane/api/authcore" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	UserService        *service.UserService
	TenantService      *service.TenantService
	FreelancerService  *service.FreelancerService
	EntitlementService *service.EntitlementService
	ResolverService    *service.ResolverService
	MFAService         *service.MFAService
	StaffVerifier      staff.Verifier
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// gate builds the per-request admission pipeline from the wired services.
func (r *Router) gate() *Gate {
	return &Gate{
		Resolver:    r.ResolverService,
		Freelancers: r.FreelancerService,
		Users:       r.UserService,
		MFA:         r.MFAService,
		Staff:       r.StaffVerifier,
	}
}

func (r *Router) ApplyRoutes() {
	r.registerMe()
	r.registerMFA()
	r.registerEntitlementAdmin()
	r.registerRoster()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Crewplane Authorization Core API
//	@version		0.1.0
//	@description	Authorization and session-verification core for the Crewplane workforce-management platform.
//	@description
//	@description				Resolves tenant membership and entitlements for every authenticated request and
//	@description				enforces the MFA session-verification state machine. Session tokens are minted by
//	@description				the external identity provider and verified here against its published keys.
//
//	@contact.name				Crewplane Platform Team
//	@contact.url				https://github.com/crewplane/crewplane
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
//	@description				Identity-provider session JWT. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerMe() {
	gate := r.gate()
	h := &MeHandler{
		UserService: r.UserService,
		MFAService:  r.MFAService,
	}

	// GET /v1/me - identity and MFA state. Exempt from the MFA gate: the
	// client needs it to drive the verification flow itself.
	r.Mux.Handle("GET /v1/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// GET /v1/me/tenant - the gate's downstream contract, gated like any
	// product route.
	r.Mux.Handle("GET /v1/me/tenant",
		httpx.Chain(http.HandlerFunc(h.HandleTenant),
			httpx.AuthnMiddleware(r.verifier),
			gate.MFAGate(),
			gate.RequireTenant(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// GET /v1/me/entitlements - effective map for the active namespace.
	r.Mux.Handle("GET /v1/me/entitlements",
		httpx.Chain(http.HandlerFunc(h.HandleEntitlements),
			httpx.AuthnMiddleware(r.verifier),
			gate.MFAGate(),
			gate.RequireTenant(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerMFA() {
	gate := r.gate()
	h := &MFAHandler{
		MFAService:  r.MFAService,
		UserService: r.UserService,
	}

	// Bootstrap endpoints are exempt from the MFA gate: a caller must be
	// able to enroll and to answer the challenge while still unverified.

	// POST /v1/mfa/enroll - moderate rate limit by user
	r.Mux.Handle("POST /v1/mfa/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// POST /v1/mfa/activate - strict rate limit (code guessing)
	r.Mux.Handle("POST /v1/mfa/activate",
		httpx.Chain(http.HandlerFunc(h.HandleActivate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	// POST /v1/mfa/verify - strict rate limit (code guessing)
	r.Mux.Handle("POST /v1/mfa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	// POST /v1/mfa/disable - behind the MFA gate: a hijacked unverified
	// session must not be able to switch MFA off.
	r.Mux.Handle("POST /v1/mfa/disable",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			httpx.AuthnMiddleware(r.verifier),
			gate.MFAGate(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerEntitlementAdmin() {
	gate := r.gate()
	h := &EntitlementAdminHandler{
		EntitlementService: r.EntitlementService,
		TenantService:      r.TenantService,
		FreelancerService:  r.FreelancerService,
	}

	secured := func(next http.HandlerFunc) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			gate.MFAGate(),
			gate.RequireStaff(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/tenants/{id}/entitlements", secured(h.HandleList(domain.OwnerTenant)))
	r.Mux.Handle("PUT /v1/tenants/{id}/entitlements/{key}", secured(h.HandlePut(domain.OwnerTenant)))
	r.Mux.Handle("DELETE /v1/tenants/{id}/entitlements/{key}", secured(h.HandleDelete(domain.OwnerTenant)))

	r.Mux.Handle("GET /v1/freelancers/{id}/entitlements", secured(h.HandleList(domain.OwnerFreelancer)))
	r.Mux.Handle("PUT /v1/freelancers/{id}/entitlements/{key}", secured(h.HandlePut(domain.OwnerFreelancer)))
	r.Mux.Handle("DELETE /v1/freelancers/{id}/entitlements/{key}", secured(h.HandleDelete(domain.OwnerFreelancer)))
}

func (r *Router) registerRoster() {
	gate := r.gate()
	h := &RosterHandler{}

	r.Mux.Handle("GET /v1/roster/today",
		httpx.Chain(http.HandlerFunc(h.HandleToday),
			httpx.AuthnMiddleware(r.verifier),
			gate.MFAGate(),
			gate.RequireTenant(),
			gate.RequireEntitlements(domain.EntitlementRoster),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

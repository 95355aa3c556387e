package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tabgate/internal/auth/domain"
	"github.com/aussiebroadwan/tabgate/internal/auth/service"
	"github.com/aussiebroadwan/tabgate/internal/auth/store"
	"github.com/aussiebroadwan/tabgate/pkg/httpx"
	"github.com/aussiebroadwan/tabgate/pkg/jwtx"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"

	_ "github.com/aussiebroadwan/tabgate/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits groups the per-route-class limits.
type RateLimits struct {
	Login  httpx.RateLimitConfig // login and refresh, by IP (+ email)
	User   httpx.RateLimitConfig // authenticated routes, by user
	Public httpx.RateLimitConfig // health and csrf token, by IP
}

// DefaultRateLimits uses the httpx profiles, which honour RATELIMIT_* env vars.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Login:  httpx.LoginLimit,
		User:   httpx.UserLimit,
		Public: httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService   *service.AuthService
	UserService   *service.UserService
	Revocations   *service.RevocationService
	CSRF          *httpx.CSRF
	RefreshCookie *RefreshCookie
	Limits        RateLimits

	// ClientIP keys per-IP rate limits. Defaults to the direct peer address.
	ClientIP httpx.KeyExtractor
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       DefaultRateLimits(),
		ClientIP:     httpx.IPKeyExtractor,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every route. Services, CSRF and RefreshCookie must
// be set first.
func (r *Router) ApplyRoutes() {
	r.middlewares = append(r.middlewares, r.CSRF.Middleware())

	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Tabgate Authentication API
//	@version					0.1.0
//	@description				Session security core: email/password login, HS256 access tokens, rotating refresh tokens in an encrypted httpOnly cookie, revocation and CSRF protection.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tabgate
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
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) isAuth() httpx.Middleware {
	return httpx.AuthnMiddleware(r.verifier, r.Revocations)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{AuthService: r.AuthService, Cookie: r.RefreshCookie}
	refresh := &RefreshHandler{AuthService: r.AuthService, Cookie: r.RefreshCookie}
	logout := &LogoutHandler{AuthService: r.AuthService, Cookie: r.RefreshCookie}

	// Login is limited by IP + email to slow down credential stuffing.
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIPAndJSONField(r.Limits.Login, r.ClientIP, "email"),
		),
	)
	r.Mux.Handle("POST /auth/refresh-token",
		httpx.Chain(refresh,
			httpx.RateLimitByIP(r.Limits.Login, r.ClientIP),
		),
	)
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(logout,
			httpx.RateLimitByIP(r.Limits.Public, r.ClientIP),
		),
	)
	r.Mux.Handle("GET /csrf-token",
		httpx.Chain(CSRFTokenHandler(r.CSRF),
			httpx.RateLimitByIP(r.Limits.Public, r.ClientIP),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}
	admin := domain.RoleAdmin.String()

	r.Mux.Handle("GET /users/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.isAuth(),
			httpx.RateLimitByUser(r.Limits.User, r.ClientIP),
		),
	)
	r.Mux.Handle("POST /users/me/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			r.isAuth(),
			httpx.RateLimitByUser(r.Limits.Login, r.ClientIP),
		),
	)

	r.Mux.Handle("GET /users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.isAuth(),
			httpx.Authorize(admin),
			httpx.RateLimitByUser(r.Limits.User, r.ClientIP),
		),
	)
	r.Mux.Handle("POST /users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.isAuth(),
			httpx.Authorize(admin),
			httpx.RateLimitByUser(r.Limits.User, r.ClientIP),
		),
	)
	r.Mux.Handle("PUT /users/{id}/role",
		httpx.Chain(http.HandlerFunc(h.HandleChangeRole),
			r.isAuth(),
			httpx.Authorize(admin),
			httpx.RateLimitByUser(r.Limits.User, r.ClientIP),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Public, r.ClientIP),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Revocations),
			httpx.RateLimitByIP(r.Limits.Public, r.ClientIP),
		),
	)
}

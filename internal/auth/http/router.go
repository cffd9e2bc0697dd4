package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/devcrm/auth-service/internal/auth/rate"
	"github.com/devcrm/auth-service/internal/auth/service"
	"github.com/devcrm/auth-service/internal/auth/store"
	"github.com/devcrm/auth-service/pkg/httpx"
	"github.com/devcrm/auth-service/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	redis    redis.UniversalClient
	verifier httpx.AccessVerifier

	AuthService *service.AuthService
	Limiter     *rate.Limiter

	// RateLimitEnabled turns the per-endpoint limits off for local stacks.
	RateLimitEnabled bool
}

func NewRouter(
	verifier httpx.AccessVerifier,
	buildVersion string,
	st store.Store,
	rdb redis.UniversalClient,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		redis:        rdb,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService: r.AuthService,
		Limiter:     r.Limiter,
		Enabled:     r.RateLimitEnabled,
	}

	r.Mux.Handle("POST /v1/auth/register", http.HandlerFunc(h.HandleRegister))
	r.Mux.Handle("POST /v1/auth/resend-verification", http.HandlerFunc(h.HandleResendVerification))
	r.Mux.Handle("POST /v1/auth/verify-email", http.HandlerFunc(h.HandleVerifyEmail))
	r.Mux.Handle("POST /v1/auth/login", http.HandlerFunc(h.HandleLogin))
	r.Mux.Handle("POST /v1/auth/refresh", http.HandlerFunc(h.HandleRefresh))
	r.Mux.Handle("POST /v1/auth/logout", http.HandlerFunc(h.HandleLogout))
	r.Mux.Handle("POST /v1/auth/forgot-password", http.HandlerFunc(h.HandleForgotPassword))
	r.Mux.Handle("POST /v1/auth/reset-password", http.HandlerFunc(h.HandleResetPassword))

	// Authenticated profile endpoint.
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.redis))
}

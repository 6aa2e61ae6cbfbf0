package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"incometracker/internal/analytics"
	"incometracker/internal/i18n"
	applog "incometracker/internal/log"
	"incometracker/internal/metrics"
	"incometracker/internal/middleware/ratelimit"
	"incometracker/internal/middleware/security"
	"incometracker/internal/middleware/trace"
	"incometracker/internal/period"
	"incometracker/internal/services"
)

const (
	AppName = "Enhanced Income Tracker"
	Version = "2.0.0"
)

// Options holds the HTTP-facing settings.
type Options struct {
	CookieName      string
	CookieSecure    bool
	CORSOrigins     []string
	RateLimitPerMin int
	PerPage         int
	MaxPerPage      int
}

// Deps are the services behind the handlers. Ready reports whether the
// database is reachable; nil means always ready.
type Deps struct {
	Auth         *services.AuthService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Analytics    *analytics.Engine
	Resolver     *period.Resolver
	Catalog      *i18n.Catalog
	Logger       *applog.Logger
	Ready        func(ctx context.Context) error
	Now          func() time.Time
}

type Server struct {
	http.Server

	opts     Options
	auth     *services.AuthService
	cats     *services.CategoryService
	txs      *services.TransactionService
	engine   *analytics.Engine
	resolver *period.Resolver
	catalog  *i18n.Catalog
	ready    func(ctx context.Context) error
	now      func() time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
}

func NewServer(addr string, opts Options, deps Deps) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "session_token"
	}
	if opts.MaxPerPage <= 0 {
		opts.MaxPerPage = 100
	}
	if opts.PerPage <= 0 || opts.PerPage > opts.MaxPerPage {
		opts.PerPage = min(20, opts.MaxPerPage)
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	if deps.Resolver == nil {
		deps.Resolver = period.NewResolver()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &Server{
		opts:     opts,
		auth:     deps.Auth,
		cats:     deps.Categories,
		txs:      deps.Transactions,
		engine:   deps.Analytics,
		resolver: deps.Resolver,
		catalog:  deps.Catalog,
		ready:    deps.Ready,
		now:      deps.Now,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMin}),
		detector: security.NewDetector(),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(deps.Logger),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(logger *applog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(trace.NewMiddleware(logger, s.detector.ExtractClientIP).Middleware)
	r.Use(metrics.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware(s.detector.ExtractClientIP))
	r.Use(s.withCORS)
	r.Use(s.withLanguage)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeFailure(w, r, http.StatusNotFound, CodeNotFound, "common.not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeFailure(w, r, http.StatusMethodNotAllowed, CodeBadRequest, "common.invalid_request")
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			s.writeFailure(w, r, http.StatusTooManyRequests, CodeTooMany, "common.too_many_requests")
		}))

		r.Get("/health", s.handleAPIHealth)
		r.Get("/config", s.handleAPIConfig)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Group(func(r chi.Router) {
				r.Use(s.requireSession)
				r.Post("/logout", s.handleLogout)
				r.Get("/me", s.handleMe)
				r.Post("/change-password", s.handleChangePassword)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", s.handleListCategories)
				r.Post("/", s.handleCreateCategory)
				r.Get("/stats", s.handleCategoryStats)
				r.Get("/{id}", s.handleGetCategory)
				r.Put("/{id}", s.handleUpdateCategory)
				r.Delete("/{id}", s.handleDeleteCategory)
				r.Get("/{id}/transactions", s.handleCategoryTransactions)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", s.handleListTransactions)
				r.Post("/", s.handleCreateTransaction)
				r.Post("/bulk-delete", s.handleBulkDelete)
				r.Get("/{id}", s.handleGetTransaction)
				r.Put("/{id}", s.handleUpdateTransaction)
				r.Delete("/{id}", s.handleDeleteTransaction)
			})

			r.Get("/income", s.handleListTransactions)
			r.Post("/income", s.handleCreateIncome)

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/overview", s.handleOverview)
				r.Get("/trends", s.handleTrends)
				r.Get("/categories", s.handleCategoryAnalysis)
				r.Get("/categories-analysis", s.handleCategoryAnalysis)
				r.Get("/monthly-comparison", s.handleMonthlyComparison)
				r.Get("/export", s.handleExport)
			})
		})
	})

	return r
}

// Shutdown stops accepting requests and releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

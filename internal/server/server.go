// Package server exposes the dashboard over HTTP: the static shell, the
// derived-data API the charts consume, and the login/session endpoints.
package server

import (
	"embed"
	"io/fs"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/market-dashboard/internal/auth"
	"github.com/sells-group/market-dashboard/internal/model"
	"github.com/sells-group/market-dashboard/internal/view"
)

//go:embed assets
var assets embed.FS

// Options wires the server's collaborators.
type Options struct {
	Counties    []model.County
	Gate        *auth.Gate
	Credentials auth.Credentials
	Realm       string
	// ExcludedPaths bypass the transport gate (static assets, icons, probes).
	ExcludedPaths []string
	CORSOrigins   []string
}

// Server holds the dashboard handlers and the per-session view controllers.
type Server struct {
	counties []model.County
	gate     *auth.Gate

	mu          sync.Mutex
	controllers map[string]*view.Controller
}

// New creates a Server over an immutable dataset.
func New(counties []model.County, gate *auth.Gate) *Server {
	return &Server{
		counties:    counties,
		gate:        gate,
		controllers: make(map[string]*view.Controller),
	}
}

// Router assembles the chi router with the transport gate wrapped around
// everything except the configured exclusions.
func Router(opts Options) chi.Router {
	s := New(opts.Counties, opts.Gate)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Session-Token"},
	}))
	r.Use(auth.BasicAuth(opts.Credentials, opts.Realm, opts.ExcludedPaths))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/counties", s.handleListCounties)
		r.Get("/counties/{rank}", s.handleGetCounty)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/tiers", s.handleTierStats)
			r.Get("/opportunity", s.handleOpportunityStats)
			r.Get("/investment", s.handleInvestmentStats)
			r.Get("/summary", s.handleSummary)
		})

		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/session", s.handleSession)

		r.Route("/view", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/", s.handleViewSnapshot)
			r.Patch("/filters", s.handlePatchFilters)
			r.Post("/filters/clear", s.handleClearFilters)
			r.Put("/selection", s.handlePutSelection)
			r.Delete("/selection", s.handleDeleteSelection)
		})
	})

	static, err := fs.Sub(assets, "assets")
	if err != nil {
		// embed guarantees the subtree exists; a failure here is a build defect.
		panic(err)
	}
	fileServer := http.FileServer(http.FS(static))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, static, "index.html")
	})
	r.Get("/favicon.ico", fileServer.ServeHTTP)
	r.Handle("/assets/*", http.StripPrefix("/assets/", fileServer))

	return r
}

// requestLogger is a minimal zap access log.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
		)
	})
}

// controllerFor returns the view controller bound to a session token,
// creating it on first use.
func (s *Server) controllerFor(token string) *view.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.controllers[token]
	if !ok {
		c = view.NewController(s.counties)
		s.controllers[token] = c
	}
	return c
}

// dropController discards the view state of a logged-out session.
func (s *Server) dropController(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.controllers, token)
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/captiveadvisors/directory/internal/config"
	"github.com/captiveadvisors/directory/internal/store"
)

// Server exposes the directory over HTTP.
type Server struct {
	store store.Store
	cfg   config.ServerConfig
}

func NewServer(st store.Store, cfg config.ServerConfig) *Server {
	return &Server{store: st, cfg: cfg}
}

// Router builds the full route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/sitemap.xml", s.handleSitemap)

	r.Route("/api", func(r chi.Router) {
		r.Post("/admin/login", s.handleLogin)
		r.Post("/admin/logout", s.handleLogout)

		r.Mount("/advisors", s.advisorRoutes())
		r.Mount("/directory", s.directoryRoutes())
		r.Mount("/leads", s.leadRoutes())
		r.Mount("/blog", s.blogRoutes())
		r.Mount("/dealers", s.dealerRoutes())
		r.Mount("/vehicles", s.vehicleRoutes())
		r.Mount("/offers", s.offerRoutes())
		r.Post("/buy-codes/redeem", s.handleRedeemBuyCode)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

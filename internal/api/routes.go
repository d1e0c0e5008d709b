package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the console API routes.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Server-Identity", "campaign-intel-v1.0")
			next.ServeHTTP(w, req)
		})
	})

	// CORS with explicit origins; the console UI runs on a separate dev port
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analytics/resolve", h.ResolveQuery)

		r.Route("/experiments", func(r chi.Router) {
			r.Get("/", h.ListExperiments)
			r.Post("/", h.SubmitExperiment)
			r.Get("/{runID}", h.GetExperiment)
			r.Post("/{runID}/refresh", h.RefreshExperiment)
		})

		r.Get("/products", h.ListProducts)

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/generate", h.GenerateCampaign)
			r.Post("/preview", h.PreviewCampaign)
		})

		r.Route("/workflow", func(r chi.Router) {
			r.Get("/", h.GetWorkflow)
			r.Post("/advance", h.AdvanceWorkflow)
			r.Post("/reset", h.ResetWorkflow)
		})

		r.Get("/dashboard/kpis", h.GetDashboardKPIs)
	})

	return r
}

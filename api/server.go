/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address behind a proxy
  3. Logger:     Request logging through logrus
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. Metrics:    Prometheus counters per route (RouterOptions.EnableMetrics)
  6. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/data, /api/employees       Reads
  /api/add-*, update-*, delete-*  Mutations
  /api/export*                    Workbook downloads
  /api/reset, /api/scenarios/*    Dev only (RouterOptions.EnableDevRoutes)
  /healthz                        Liveness
  /metrics                        Prometheus (when enabled)
  /*                              Static files (frontend)

STATIC FILE SERVING:
  Serves the built frontend from RouterOptions.StaticDir when it exists.
  Falls back to index.html for client-side routing.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions controls the optional parts of the router.
type RouterOptions struct {
	AllowedOrigins  []string
	EnableDevRoutes bool
	EnableMetrics   bool
	StaticDir       string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: h.Log, NoColor: true}))
	r.Use(middleware.Recoverer)
	if opts.EnableMetrics {
		if h.Metrics == nil {
			h.Metrics = NewMetrics()
		}
		r.Use(h.Metrics.Middleware)
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:6050"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, OKResponse{OK: true})
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/data", h.GetYearData)
		r.Get("/employees", h.ListEmployees)

		// Employee routes
		r.Post("/add-employee", h.AddEmployee)
		r.Put("/update-employee", h.UpdateEmployee)
		r.Delete("/delete-employee/{id}", h.DeleteEmployee)

		// Leave routes
		r.Post("/add-leave", h.AddLeave)
		r.Put("/update-leave", h.UpdateLeave)
		r.Delete("/delete-leave/{id}", h.DeleteLeave)

		// Export routes
		r.Get("/export", h.ExportDetail)
		r.Get("/export-summary", h.ExportSummary)

		if opts.EnableDevRoutes {
			r.Post("/reset", h.ResetDatabase)
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.Post("/load", h.LoadScenario)
			})
		}
	})

	if opts.StaticDir != "" {
		if _, err := os.Stat(opts.StaticDir); err == nil {
			r.Get("/*", spaHandler(opts.StaticDir))
		}
	}

	return r
}

func spaHandler(staticDir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(staticDir))
	return func(w http.ResponseWriter, r *http.Request) {
		fullPath := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))

		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			// SPA routing: serve index.html
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	}
}

/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logging (logging.Middleware)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend
  5. Context:    Owner, locale and currency (middleware.go)

ROUTE GROUPS:
  /healthz              Liveness
  /api/fixed-costs/*    Fixed cost management
  /api/equipment/*      Equipment management
  /api/billable/*       Billable settings and metrics
  /api/calculate/*      Stateless calculators
  /api/preferences/*    Display state
  /api/i18n/*           Translations
  /api/scenarios/*      Demo datasets
  /*                    Static files (frontend)

STATIC FILE SERVING:
  Serves the built frontend from web/dist/ when present.
  Falls back to index.html for client-side routing.

SECURITY NOTE:
  No authentication middleware. The owner header is trusted as given.

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

	"github.com/warp/breakeven-engine/logging"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// CORSOrigins defaults to the local frontend dev servers.
	CORSOrigins []string
	Logger      *logging.Logger
	// StaticDir overrides the frontend build location.
	StaticDir string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = h.log
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", OwnerHeader},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(h.requestContext)

		r.Route("/fixed-costs", func(r chi.Router) {
			r.Get("/", h.ListFixedCosts)
			r.Post("/", h.CreateFixedCost)
			r.Post("/reorder", h.ReorderFixedCosts)
			r.Get("/{id}", h.GetFixedCost)
			r.Put("/{id}", h.UpdateFixedCost)
			r.Delete("/{id}", h.DeleteFixedCost)
		})

		r.Route("/equipment", func(r chi.Router) {
			r.Get("/", h.ListEquipment)
			r.Post("/", h.CreateEquipment)
			r.Post("/reorder", h.ReorderEquipment)
			r.Get("/{id}", h.GetEquipment)
			r.Put("/{id}", h.UpdateEquipment)
			r.Delete("/{id}", h.DeleteEquipment)
		})

		r.Get("/totals", h.Totals)

		r.Route("/billable", func(r chi.Router) {
			r.Get("/", h.GetBillable)
			r.Put("/", h.PutBillable)
			r.Post("/preview", h.PreviewBillable)
		})
		r.Get("/breakeven", h.GetBreakEven)
		r.Get("/hourly-cost", h.GetHourlyCost)

		r.Route("/calculate", func(r chi.Router) {
			r.Post("/metrics", h.CalculateMetrics)
			r.Post("/breakeven", h.CalculateBreakEven)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", h.GetPreferences)
			r.Put("/", h.UpdatePreferences)
			r.Post("/reset", h.ResetPreferences)
		})

		r.Route("/i18n", func(r chi.Router) {
			r.Get("/", h.ListLocales)
			r.Get("/lookup", h.LookupMessage)
			r.Get("/{locale}", h.GetMessages)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetData)
		})
	})

	// Serve static files
	// First try ./web/dist (development), then next to the executable
	staticDir := opts.StaticDir
	if staticDir == "" {
		staticDir = "./web/dist"
		if _, err := os.Stat(staticDir); os.IsNotExist(err) {
			exe, _ := os.Executable()
			staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
		}
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))

			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Break-even Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Break-even Engine API</h1>
<p>The frontend is not built. The JSON API is available:</p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/fixed-costs">/api/fixed-costs</a> - Fixed costs</li>
<li><a href="/api/equipment">/api/equipment</a> - Equipment</li>
<li><a href="/api/billable">/api/billable</a> - Billable time and rates</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}

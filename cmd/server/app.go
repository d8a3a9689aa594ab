package main

import (
	"context"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/DylanJC13/movil-2/internal/config"
	"github.com/DylanJC13/movil-2/internal/handlers"
	"github.com/DylanJC13/movil-2/internal/httpx"
	"github.com/DylanJC13/movil-2/internal/services"
)

// Deps are the services the HTTP surface is built from.
type Deps struct {
	Invoices       services.Invoices
	Catalog        *services.CatalogService
	Clients        *services.ClientService
	Courses        *services.CourseService
	Announcements  *services.AnnouncementService
	Ping           func(ctx context.Context) error
	AllowedOrigins []string
}

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	deps    Deps
	handler http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(deps Deps) *App {
	app := &App{
		mux:  http.NewServeMux(),
		deps: deps,
	}
	app.setupRoutes()
	app.handler = withRecover(withCORS(deps.AllowedOrigins, app.mux))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /healthz", a.healthz)

	ph := handlers.NewProductHandler(a.deps.Catalog)
	a.mux.HandleFunc("GET /products", ph.List)
	a.mux.HandleFunc("POST /products", ph.Create)
	a.mux.HandleFunc("GET /products/{id}", ph.View)
	a.mux.HandleFunc("GET /inventory", ph.Inventory)

	ch := handlers.NewClientHandler(a.deps.Clients)
	a.mux.HandleFunc("GET /clients", ch.List)
	a.mux.HandleFunc("POST /clients", ch.Create)

	ih := handlers.NewInvoiceHandler(a.deps.Invoices)
	a.mux.HandleFunc("GET /invoices", ih.List)
	a.mux.HandleFunc("POST /invoices", ih.Create)
	a.mux.HandleFunc("GET /invoices/{id}", ih.View)

	// ─────────────────────────────────────────────────────────────────────────
	// Course board
	// ─────────────────────────────────────────────────────────────────────────
	cb := handlers.NewCourseHandler(a.deps.Courses, a.deps.Announcements)
	a.mux.HandleFunc("GET /api/health", a.apiHealth)
	a.mux.HandleFunc("GET /api/courses", cb.List)
	a.mux.HandleFunc("POST /api/courses", cb.Create)
	a.mux.HandleFunc("GET /api/courses/{id}", cb.View)
	a.mux.HandleFunc("GET /api/announcements", cb.Announcements)

	a.mux.HandleFunc("/", a.notFound)
}

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Version   string `json:"version,omitempty"`
	Timestamp string `json:"timestamp"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (a *App) health(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, healthResponse{Status: "ok", Version: config.APIVersion, Timestamp: timestamp()})
}

// healthz also checks the database.
func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if a.deps.Ping != nil {
		if err := a.deps.Ping(r.Context()); err != nil {
			log.Printf("[HTTP] healthz: %v", err)
			httpx.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Version: config.APIVersion, Timestamp: timestamp()})
			return
		}
	}
	httpx.JSON(w, http.StatusOK, healthResponse{Status: "ok", Version: config.APIVersion, Timestamp: timestamp()})
}

func (a *App) apiHealth(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Message:   "API de soporte para Computación Móvil",
		Version:   config.APIVersion,
		Timestamp: timestamp(),
	})
}

func (a *App) notFound(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, http.StatusNotFound, "not_found", "route "+r.Method+" "+r.URL.Path+" not found", nil)
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[HTTP] panic on %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withCORS allows the configured browser origins; "*" allows any.
func withCORS(origins []string, next http.Handler) http.Handler {
	allowAny := slices.Contains(origins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAny || slices.Contains(origins, origin)) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", strings.Join([]string{"Content-Type", "X-Request-ID"}, ", "))
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

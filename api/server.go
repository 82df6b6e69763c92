/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to
  handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a separately hosted kiosk page
  5. Session:    Attaches the admin identity from the session cookie

ROUTE GROUPS:
  Kiosk routes (roster, status, mark-in/out) and the login/logout pair
  take no credential. Everything else sits behind RequireAdmin.

STATIC FALLBACK:
  The root path serves a minimal landing page listing the API. A real
  kiosk frontend replaces this; rendering is not this service's job.

SEE ALSO:
  - handlers.go: Handler implementations
  - auth/auth.go: Session middleware and admin gate
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/attendance-kiosk/auth"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(h.Gate.Middleware)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Session
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		// Kiosk (no credential)
		r.Post("/mark-in", h.MarkIn)
		r.Post("/mark-out", h.MarkOut)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Get("/{id}/status", h.GetStatus)

			// Admin
			r.With(auth.RequireAdmin).Post("/", h.CreateEmployee)
			r.With(auth.RequireAdmin).Get("/{id}/report", h.EmployeeReport)
		})

		// Admin reporting
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Get("/dashboard", h.Dashboard)
			r.Get("/records", h.ListRecords)
			r.Get("/export.csv", h.ExportCSV)
		})
	})

	// Landing page for the bare service.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Attendance Kiosk</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Attendance Kiosk API</h1>
<p>The kiosk frontend is served separately. Endpoints:</p>
<ul>
<li><a href="/api/employees">/api/employees</a> - Roster</li>
<li>/api/employees/{id}/status - Daily status</li>
<li>/api/mark-in, /api/mark-out - Clock in/out</li>
<li>/api/dashboard, /api/records, /api/export.csv - Admin (login required)</li>
</ul>
</body>
</html>`))
	})

	return r
}

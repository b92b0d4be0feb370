// Copyright 2026 The ParentRant Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/parentrant/parentrant/internal/admin"
	"github.com/parentrant/parentrant/internal/authz"
	"github.com/parentrant/parentrant/internal/devtools"
	"github.com/parentrant/parentrant/internal/forum"
	"github.com/parentrant/parentrant/internal/identity"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	forumService *forum.Service
	adminService *admin.Service
	devService   *devtools.Service
	gate         *authz.Gate
	resolver     identity.Resolver
	adminFS      fs.FS
	logger       *slog.Logger
}

// Deps holds the collaborators of a Handler.
type Deps struct {
	Forum    *forum.Service
	Admin    *admin.Service
	Dev      *devtools.Service
	Gate     *authz.Gate
	Resolver identity.Resolver
	// AdminFS holds the built admin dashboard (index.html and assets/).
	AdminFS fs.FS
	Logger  *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(d Deps) *Handler {
	if d.Resolver == nil {
		d.Resolver = identity.Anonymous
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Handler{
		forumService: d.Forum,
		adminService: d.Admin,
		devService:   d.Dev,
		gate:         d.Gate,
		resolver:     d.Resolver,
		adminFS:      d.AdminFS,
		logger:       d.Logger,
	}
}

// RouterConfig holds router level settings.
type RouterConfig struct {
	AllowedOrigins []string
	Timeout        time.Duration
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter, cfg RouterConfig) *chi.Mux {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))
	r.Use(CredentialsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		// Public forum
		r.Get("/posts", h.ListPosts)
		r.Post("/posts", h.CreatePost)
		r.Route("/posts/{postID}", func(r chi.Router) {
			r.Get("/", h.GetPost)
			r.Post("/like", h.LikePost)
			r.Get("/comments", h.ListComments)
			r.Post("/comments", h.CreateComment)
			r.Post("/reports", h.SubmitReport)
		})
		r.Get("/announcements", h.ActiveAnnouncements)

		// Admin session and privileged operations. Each operation asks the
		// gate itself; there is no route-level admin middleware.
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.AdminLogin)
			r.Post("/logout", h.AdminLogout)
			r.Get("/session", h.AdminSession)

			r.Delete("/posts/{postID}", h.AdminDeletePost)
			r.Get("/storage", h.AdminStorageFiles)
			r.Delete("/storage/{name}", h.AdminDeleteStorageFile)
			r.Get("/server-info", h.AdminServerInfo)
			r.Get("/reports", h.AdminReports)
			r.Patch("/reports/{reportID}", h.AdminUpdateReport)
			r.Get("/announcements", h.AdminAnnouncements)
			r.Post("/announcements", h.AdminCreateAnnouncement)
			r.Put("/announcements/{announcementID}", h.AdminUpdateAnnouncement)
			r.Delete("/announcements/{announcementID}", h.AdminDeleteAnnouncement)
			r.Get("/banned-ips", h.AdminBannedIPs)
			r.Post("/banned-ips", h.AdminBanIP)
			r.Delete("/banned-ips/{ip}", h.AdminUnbanIP)
		})

		// Development tools
		r.Route("/dev", func(r chi.Router) {
			r.Post("/bypass", h.DevSetBypass)
			r.Get("/info", h.DevInfo)
			r.Get("/health", h.DevHealth)
			r.Get("/tables", h.DevTableStats)
			r.Post("/cli", h.DevCLI)
		})
	})

	// Admin dashboard pages
	r.Handle("/admin/assets/*", http.StripPrefix("/admin", SPAHandler{StaticFS: h.adminFS}))
	r.Get("/admin/login", h.AdminLoginPage)
	r.Get("/admin", h.AdminDashboardPage)
	r.Get("/admin/*", h.AdminDashboardPage)

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "parentrant",
	})
}

// Helper functions

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

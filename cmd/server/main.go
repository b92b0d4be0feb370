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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parentrant/parentrant/internal/admin"
	"github.com/parentrant/parentrant/internal/audit"
	"github.com/parentrant/parentrant/internal/authz"
	"github.com/parentrant/parentrant/internal/config"
	"github.com/parentrant/parentrant/internal/devtools"
	"github.com/parentrant/parentrant/internal/forum"
	"github.com/parentrant/parentrant/internal/identity"
	"github.com/parentrant/parentrant/internal/observability/logger"
	"github.com/parentrant/parentrant/internal/observability/metrics"
	"github.com/parentrant/parentrant/internal/observability/tracing"
	"github.com/parentrant/parentrant/internal/session"
	"github.com/parentrant/parentrant/internal/storage"
	"github.com/parentrant/parentrant/internal/store/postgres"
	transportHTTP "github.com/parentrant/parentrant/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting parentrant server", logger.Environment(cfg.Environment.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Environment.String(),
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
		tracer, _ = tracing.New(ctx, tracing.Config{})
	}
	defer tracer.Shutdown(context.Background())

	// Initialize meter
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled:     cfg.Observability.OTELEnabled,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
		meter = metrics.Noop()
	}

	// Application config: a missing or broken file leaves the whitelist and
	// the admin password empty, so nobody can log in.
	appCfg, err := config.LoadAppConfig(cfg.Admin.AppConfigPath)
	if err != nil {
		slog.Error("failed to load app config; admin login disabled",
			logger.String("path", cfg.Admin.AppConfigPath),
			logger.Error(err),
		)
		appCfg = config.EmptyAppConfig()
	}

	// Initialize database
	db, err := postgres.New(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize repositories
	repos := forum.Repositories{
		Posts:         postgres.NewPostRepository(db),
		Comments:      postgres.NewCommentRepository(db),
		Reports:       postgres.NewReportRepository(db),
		Announcements: postgres.NewAnnouncementRepository(db),
		Bans:          postgres.NewBanRepository(db),
	}
	files := storage.NewClient(cfg.Storage.URL, cfg.Storage.ServiceRoleKey, cfg.Storage.Bucket, nil)

	// Admin gate
	whitelist := authz.NewWhitelist(appCfg.AdminEmails())
	bypass := session.NewBypass(whitelist, appCfg.Security.AdminPassword, cfg.Environment.IsProduction())
	resolver := newResolver(cfg.Identity)
	policy := authz.NewRelaxationPolicy(cfg.Environment, cfg.Admin.DevRelaxation)
	if policy.Relaxed() {
		slog.Warn("admin gate relaxed: every caller is granted admin access", logger.Environment(cfg.Environment.String()))
	}
	gate := authz.NewAdminGate(policy, bypass, resolver, whitelist,
		authz.WithLogger(slog.Default()),
		authz.WithMeter(meter),
		authz.WithTracer(tracer.GetTracer()),
	)
	slog.Info("admin gate ready", logger.Component("authz"), slog.Int("whitelist_size", whitelist.Len()))

	// Initialize services
	auditLogger := audit.NewSlogLogger()
	forumService := forum.NewService(repos, slog.Default(), meter)
	adminService := admin.NewService(admin.Options{
		Gate:        gate,
		Bypass:      bypass,
		Repos:       repos,
		Files:       files,
		AuditLogger: auditLogger,
		Logger:      slog.Default(),
		Meter:       meter,
		Environment: cfg.Environment,
		DeployEnv:   cfg.Admin.DeployEnv,
	})
	devService := devtools.NewService(devtools.Options{
		Environment:   cfg.Environment,
		AppConfig:     appCfg,
		AppConfigPath: cfg.Admin.AppConfigPath,
		DB:            db,
		Stats:         postgres.NewStatsRepository(db),
		Bucket:        files,
	})

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(transportHTTP.Deps{
		Forum:    forumService,
		Admin:    adminService,
		Dev:      devService,
		Gate:     gate,
		Resolver: resolver,
		AdminFS:  os.DirFS(cfg.Admin.StaticDir),
		Logger:   slog.Default(),
	})

	rateLimiter := transportHTTP.NewRateLimiter(ctx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	router := transportHTTP.NewRouter(handler, rateLimiter, transportHTTP.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

// newResolver picks the session resolver: the provider's user endpoint when
// a project URL is configured, local token verification otherwise.
func newResolver(cfg config.IdentityConfig) identity.Resolver {
	if cfg.URL != "" {
		return identity.NewGoTrueClient(cfg.URL, cfg.AnonKey,
			identity.WithCookieName(cfg.CookieName),
			identity.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		)
	}
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = identity.DefaultCookieName(cfg.URL)
	}
	return identity.NewTokenVerifier(cfg.JWTSecret, cookieName)
}

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

// Package admin implements the privileged moderation operations. Every
// operation asks the admin gate first and has no side effect when denied.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/parentrant/parentrant/internal/audit"
	"github.com/parentrant/parentrant/internal/authz"
	"github.com/parentrant/parentrant/internal/config"
	"github.com/parentrant/parentrant/internal/forum"
	"github.com/parentrant/parentrant/internal/identity"
	"github.com/parentrant/parentrant/internal/observability/logger"
	"github.com/parentrant/parentrant/internal/observability/metrics"
	"github.com/parentrant/parentrant/internal/session"
	"github.com/parentrant/parentrant/internal/storage"
)

// Result messages
const (
	MsgUnauthorized     = "Unauthorized"
	MsgOperationFailed  = "Operation failed"
	MsgAlreadyBanned    = "该 IP 已经被封禁"
	MsgLoginSucceeded   = "登录成功"
	MsgLoggedOut        = "已退出登录"
	MsgInvalidArguments = "Invalid arguments"
)

// Result is the outcome of an admin operation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func succeed(msg string, data any) Result {
	return Result{Success: true, Message: msg, Data: data}
}

func fail(msg string) Result {
	return Result{Success: false, Message: msg}
}

// Gate decides admin access.
type Gate interface {
	Evaluate(ctx context.Context, creds identity.Credentials) authz.Decision
}

// Bypass issues and revokes the bypass session.
type Bypass interface {
	Login(w http.ResponseWriter, email, password string) error
	Logout(w http.ResponseWriter)
}

// FileStore is the post image bucket.
type FileStore interface {
	List(ctx context.Context) ([]storage.File, error)
	Delete(ctx context.Context, name string) error
}

// ServerInfo describes the running server.
type ServerInfo struct {
	GoVersion   string `json:"goVersion"`
	Platform    string `json:"platform"`
	Environment string `json:"env"`
	DeployEnv   string `json:"deployEnv"`
	Timezone    string `json:"timezone"`
}

// Service provides the admin operations
type Service struct {
	gate      Gate
	bypass    Bypass
	repos     forum.Repositories
	files     FileStore
	audit     audit.Logger
	logger    *slog.Logger
	env       config.Environment
	deployEnv string
	logins    metric.Int64Counter
}

// Options holds the collaborators of a Service.
type Options struct {
	Gate        Gate
	Bypass      Bypass
	Repos       forum.Repositories
	Files       FileStore
	AuditLogger audit.Logger
	Logger      *slog.Logger
	Meter       *metrics.Meter
	Environment config.Environment
	DeployEnv   string
}

// NewService creates a new admin service
func NewService(opts Options) *Service {
	if opts.AuditLogger == nil {
		opts.AuditLogger = audit.NopLogger{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Meter == nil {
		opts.Meter = metrics.Noop()
	}
	return &Service{
		gate:      opts.Gate,
		bypass:    opts.Bypass,
		repos:     opts.Repos,
		files:     opts.Files,
		audit:     opts.AuditLogger,
		logger:    opts.Logger,
		env:       opts.Environment,
		deployEnv: opts.DeployEnv,
		logins:    opts.Meter.MustCounter(metrics.AdminLogins, "Admin bypass logins by outcome"),
	}
}

// authorize runs the gate over the credentials in ctx. It returns the
// acting identity id, empty for bypass or relaxed access.
func (s *Service) authorize(ctx context.Context, op string) (string, bool) {
	creds := identity.CredentialsFromContext(ctx)
	d := s.gate.Evaluate(ctx, creds)
	if !d.Granted {
		s.audit.Log(ctx, audit.Event{
			Type:     audit.TypeAccessDenied,
			Resource: op,
			Metadata: map[string]any{"authorizer": d.Authorizer},
		})
		return "", false
	}
	if d.Identity != nil {
		return d.Identity.ID, true
	}
	return "", true
}

func (s *Service) failure(ctx context.Context, op string, err error) Result {
	s.logger.ErrorContext(ctx, "admin operation failed",
		logger.Component("admin"),
		logger.Operation(op),
		logger.Error(err),
	)
	return fail(MsgOperationFailed)
}

// Login issues the bypass session when email and password match the
// configuration. Failures share one generic message.
func (s *Service) Login(ctx context.Context, w http.ResponseWriter, email, password string) Result {
	err := s.bypass.Login(w, email, password)
	if err != nil {
		s.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "failed")))
		s.audit.Log(ctx, audit.Event{
			Type:     audit.TypeAdminLoginFailed,
			Resource: "admin_session",
			Metadata: map[string]any{"email": email},
		})
		if errors.Is(err, session.ErrMissingCredentials) {
			return fail(session.ErrMissingCredentials.Error())
		}
		return fail(session.ErrInvalidCredentials.Error())
	}

	s.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "success")))
	s.audit.Log(ctx, audit.Event{
		Type:     audit.TypeAdminLoginSuccess,
		Resource: "admin_session",
		Metadata: map[string]any{"email": email},
	})
	return succeed(MsgLoginSucceeded, nil)
}

// Logout revokes the bypass session. It always succeeds.
func (s *Service) Logout(ctx context.Context, w http.ResponseWriter) Result {
	s.bypass.Logout(w)
	s.audit.Log(ctx, audit.Event{Type: audit.TypeAdminLogout, Resource: "admin_session"})
	return succeed(MsgLoggedOut, nil)
}

// DeletePost removes a post and its comments and reports.
func (s *Service) DeletePost(ctx context.Context, id string) Result {
	actor, granted := s.authorize(ctx, "delete_post")
	if !granted {
		return fail(MsgUnauthorized)
	}
	if !forum.ValidID(id) {
		return fail(forum.ErrPostNotFound.Error())
	}

	if err := s.repos.Posts.Delete(ctx, id); err != nil {
		if errors.Is(err, forum.ErrPostNotFound) {
			return fail(err.Error())
		}
		return s.failure(ctx, "delete_post", err)
	}

	s.audit.Log(ctx, audit.Event{Type: audit.TypePostDeleted, ActorID: actor, Resource: id})
	return succeed("Post deleted successfully", nil)
}

// StorageFiles lists the newest files of the image bucket.
func (s *Service) StorageFiles(ctx context.Context) Result {
	if _, granted := s.authorize(ctx, "list_storage_files"); !granted {
		return Result{Message: MsgUnauthorized, Data: []storage.File{}}
	}

	files, err := s.files.List(ctx)
	if err != nil {
		r := s.failure(ctx, "list_storage_files", err)
		r.Data = []storage.File{}
		return r
	}
	return succeed("", files)
}

// DeleteStorageFile removes a file from the image bucket.
func (s *Service) DeleteStorageFile(ctx context.Context, name string) Result {
	actor, granted := s.authorize(ctx, "delete_storage_file")
	if !granted {
		return fail(MsgUnauthorized)
	}

	if err := s.files.Delete(ctx, name); err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return fail(err.Error())
		}
		return s.failure(ctx, "delete_storage_file", err)
	}

	s.audit.Log(ctx, audit.Event{Type: audit.TypeFileDeleted, ActorID: actor, Resource: name})
	return succeed("File deleted successfully", nil)
}

// ServerInfo describes the runtime environment of the server.
func (s *Service) ServerInfo(ctx context.Context) Result {
	if _, granted := s.authorize(ctx, "server_info"); !granted {
		return fail(MsgUnauthorized)
	}

	return succeed("", ServerInfo{
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		Environment: s.env.String(),
		DeployEnv:   s.deployEnv,
		Timezone:    time.Local.String(),
	})
}

// Reports lists every report with its post, newest first.
func (s *Service) Reports(ctx context.Context) Result {
	if _, granted := s.authorize(ctx, "list_reports"); !granted {
		return Result{Message: MsgUnauthorized, Data: []*forum.Report{}}
	}

	reports, err := s.repos.Reports.List(ctx)
	if err != nil {
		r := s.failure(ctx, "list_reports", err)
		r.Data = []*forum.Report{}
		return r
	}
	return succeed("", reports)
}

// UpdateReportStatus resolves or dismisses a report.
func (s *Service) UpdateReportStatus(ctx context.Context, id string, status forum.ReportStatus) Result {
	actor, granted := s.authorize(ctx, "update_report")
	if !granted {
		return fail(MsgUnauthorized)
	}
	if !forum.ValidID(id) {
		return fail(forum.ErrReportNotFound.Error())
	}
	if status != forum.ReportResolved && status != forum.ReportDismissed {
		return fail(MsgInvalidArguments)
	}

	if err := s.repos.Reports.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, forum.ErrReportNotFound) {
			return fail(err.Error())
		}
		return s.failure(ctx, "update_report", err)
	}

	s.audit.Log(ctx, audit.Event{
		Type:     audit.TypeReportUpdated,
		ActorID:  actor,
		Resource: id,
		Metadata: map[string]any{"status": string(status)},
	})
	return succeed("Report updated", nil)
}

// Announcements lists every announcement, newest first.
func (s *Service) Announcements(ctx context.Context) Result {
	if _, granted := s.authorize(ctx, "list_announcements"); !granted {
		return Result{Message: MsgUnauthorized, Data: []*forum.Announcement{}}
	}

	items, err := s.repos.Announcements.List(ctx, false)
	if err != nil {
		r := s.failure(ctx, "list_announcements", err)
		r.Data = []*forum.Announcement{}
		return r
	}
	return succeed("", items)
}

// CreateAnnouncement publishes a new announcement.
func (s *Service) CreateAnnouncement(ctx context.Context, content string, active bool) Result {
	actor, granted := s.authorize(ctx, "create_announcement")
	if !granted {
		return fail(MsgUnauthorized)
	}
	if strings.TrimSpace(content) == "" {
		return fail(MsgInvalidArguments)
	}

	now := time.Now()
	a := &forum.Announcement{
		ID:        uuid.NewString(),
		Content:   content,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repos.Announcements.Create(ctx, a); err != nil {
		return s.failure(ctx, "create_announcement", err)
	}

	s.audit.Log(ctx, audit.Event{Type: audit.TypeAnnouncementCreated, ActorID: actor, Resource: a.ID})
	return succeed("Announcement created", a)
}

// UpdateAnnouncement changes the content and visibility of an announcement.
func (s *Service) UpdateAnnouncement(ctx context.Context, id, content string, active bool) Result {
	actor, granted := s.authorize(ctx, "update_announcement")
	if !granted {
		return fail(MsgUnauthorized)
	}
	if !forum.ValidID(id) || strings.TrimSpace(content) == "" {
		return fail(MsgInvalidArguments)
	}

	a := &forum.Announcement{ID: id, Content: content, IsActive: active, UpdatedAt: time.Now()}
	if err := s.repos.Announcements.Update(ctx, a); err != nil {
		if errors.Is(err, forum.ErrAnnouncementNotFound) {
			return fail(err.Error())
		}
		return s.failure(ctx, "update_announcement", err)
	}

	s.audit.Log(ctx, audit.Event{
		Type:     audit.TypeAnnouncementUpdated,
		ActorID:  actor,
		Resource: id,
		Metadata: map[string]any{"is_active": active},
	})
	return succeed("Announcement updated", nil)
}

// DeleteAnnouncement removes an announcement.
func (s *Service) DeleteAnnouncement(ctx context.Context, id string) Result {
	actor, granted := s.authorize(ctx, "delete_announcement")
	if !granted {
		return fail(MsgUnauthorized)
	}
	if !forum.ValidID(id) {
		return fail(forum.ErrAnnouncementNotFound.Error())
	}

	if err := s.repos.Announcements.Delete(ctx, id); err != nil {
		if errors.Is(err, forum.ErrAnnouncementNotFound) {
			return fail(err.Error())
		}
		return s.failure(ctx, "delete_announcement", err)
	}

	s.audit.Log(ctx, audit.Event{Type: audit.TypeAnnouncementDeleted, ActorID: actor, Resource: id})
	return succeed("Announcement deleted", nil)
}

// BannedIPs lists banned addresses, newest first.
func (s *Service) BannedIPs(ctx context.Context) Result {
	if _, granted := s.authorize(ctx, "list_banned_ips"); !granted {
		return Result{Message: MsgUnauthorized, Data: []*forum.BannedIP{}}
	}

	bans, err := s.repos.Bans.List(ctx)
	if err != nil {
		r := s.failure(ctx, "list_banned_ips", err)
		r.Data = []*forum.BannedIP{}
		return r
	}
	return succeed("", bans)
}

// BanIP bans an address from posting.
func (s *Service) BanIP(ctx context.Context, ip, reason string) Result {
	actor, granted := s.authorize(ctx, "ban_ip")
	if !granted {
		return fail(MsgUnauthorized)
	}
	if net.ParseIP(ip) == nil {
		return fail(MsgInvalidArguments)
	}

	ban := &forum.BannedIP{
		ID:        uuid.NewString(),
		IPAddress: ip,
		Reason:    reason,
		BannedBy:  actor,
		BannedAt:  time.Now(),
	}
	if err := s.repos.Bans.Ban(ctx, ban); err != nil {
		if errors.Is(err, forum.ErrAlreadyBanned) {
			return fail(MsgAlreadyBanned)
		}
		return s.failure(ctx, "ban_ip", err)
	}

	s.audit.Log(ctx, audit.Event{
		Type:      audit.TypeIPBanned,
		ActorID:   actor,
		Resource:  ip,
		IPAddress: ip,
		Metadata:  map[string]any{"reason": reason},
	})
	return succeed("IP 已封禁", nil)
}

// UnbanIP lifts the ban of an address.
func (s *Service) UnbanIP(ctx context.Context, ip string) Result {
	actor, granted := s.authorize(ctx, "unban_ip")
	if !granted {
		return fail(MsgUnauthorized)
	}
	if ip == "" {
		return fail(MsgInvalidArguments)
	}

	if err := s.repos.Bans.Unban(ctx, ip); err != nil {
		if errors.Is(err, forum.ErrBanNotFound) {
			return fail(err.Error())
		}
		return s.failure(ctx, "unban_ip", err)
	}

	s.audit.Log(ctx, audit.Event{Type: audit.TypeIPUnbanned, ActorID: actor, Resource: ip, IPAddress: ip})
	return succeed("IP 已解封", nil)
}

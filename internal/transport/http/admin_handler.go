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
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parentrant/parentrant/internal/admin"
	"github.com/parentrant/parentrant/internal/forum"
	"github.com/parentrant/parentrant/internal/identity"
)

// LoginRequest represents an admin login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLogin issues the admin bypass session.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondResult(w, h.adminService.Login(r.Context(), w, req.Email, req.Password))
}

// AdminLogout revokes the admin bypass session.
func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	respondResult(w, h.adminService.Logout(r.Context(), w))
}

// AdminSession reports whether the caller currently passes the admin gate.
func (h *Handler) AdminSession(w http.ResponseWriter, r *http.Request) {
	d := h.gate.Evaluate(r.Context(), identity.CredentialsFromContext(r.Context()))
	resp := map[string]any{"granted": d.Granted}
	if d.Granted && d.Identity != nil {
		resp["email"] = d.Identity.Email
	}
	respondJSON(w, http.StatusOK, resp)
}

// AdminDeletePost deletes a post.
func (h *Handler) AdminDeletePost(w http.ResponseWriter, r *http.Request) {
	respondResult(w, h.adminService.DeletePost(r.Context(), chi.URLParam(r, "postID")))
}

// AdminStorageFiles lists uploaded files.
func (h *Handler) AdminStorageFiles(w http.ResponseWriter, r *http.Request) {
	respondResult(w, h.adminService.StorageFiles(r.Context()))
}

// AdminDeleteStorageFile deletes an uploaded file.
func (h *Handler) AdminDeleteStorageFile(w http.ResponseWriter, r *http.Request) {
	respondResult(w, h.adminService.DeleteStorageFile(r.Context(), chi.URLParam(r, "name")))
}

// AdminServerInfo returns runtime information.
func (h *Handler) AdminServerInfo(w http.ResponseWriter, r *http.Request) {
	respondResult(w, h.adminService.ServerInfo(r.Context()))
}

// AdminReports lists reports with their posts.
func (h *Handler) AdminReports(w http.ResponseWriter, r *http.Request) {
	respondResult(w, h.adminService.Reports(r.Context()))
}

type reportStatusRequest struct {
	Status forum.ReportStatus `json:"status"`
}

// AdminUpdateReport resolves or dismisses a report.
func (h *Handler) AdminUpdateReport(w http.ResponseWriter, r *http.Request) {
	var req reportStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondResult(w, h.adminService.UpdateReportStatus(r.Context(), chi.URLParam(r, "reportID"), req.Status))
}

// AdminAnnouncements lists all announcements.
func (h *Handler) AdminAnnouncements(w http.ResponseWriter, r *http.Request) {
	respondResult(w, h.adminService.Announcements(r.Context()))
}

type announcementRequest struct {
	Content  string `json:"content"`
	IsActive *bool  `json:"is_active"`
}

func (req announcementRequest) active() bool {
	return req.IsActive == nil || *req.IsActive
}

// AdminCreateAnnouncement creates an announcement.
func (h *Handler) AdminCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondResult(w, h.adminService.CreateAnnouncement(r.Context(), req.Content, req.active()))
}

// AdminUpdateAnnouncement updates an announcement.
func (h *Handler) AdminUpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondResult(w, h.adminService.UpdateAnnouncement(r.Context(), chi.URLParam(r, "announcementID"), req.Content, req.active()))
}

// AdminDeleteAnnouncement deletes an announcement.
func (h *Handler) AdminDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	respondResult(w, h.adminService.DeleteAnnouncement(r.Context(), chi.URLParam(r, "announcementID")))
}

// AdminBannedIPs lists banned addresses.
func (h *Handler) AdminBannedIPs(w http.ResponseWriter, r *http.Request) {
	respondResult(w, h.adminService.BannedIPs(r.Context()))
}

type banRequest struct {
	IPAddress string `json:"ip_address"`
	Reason    string `json:"reason"`
}

// AdminBanIP bans an address from posting.
func (h *Handler) AdminBanIP(w http.ResponseWriter, r *http.Request) {
	var req banRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondResult(w, h.adminService.BanIP(r.Context(), req.IPAddress, req.Reason))
}

// AdminUnbanIP lifts a ban.
func (h *Handler) AdminUnbanIP(w http.ResponseWriter, r *http.Request) {
	respondResult(w, h.adminService.UnbanIP(r.Context(), chi.URLParam(r, "ip")))
}

// AdminLoginPage serves the login page, or sends callers who already pass
// the gate to the dashboard.
func (h *Handler) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.gate.Evaluate(r.Context(), identity.CredentialsFromContext(r.Context())).Granted {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	h.serveDashboard(w, r)
}

// AdminDashboardPage serves the dashboard to callers who pass the gate.
func (h *Handler) AdminDashboardPage(w http.ResponseWriter, r *http.Request) {
	if !h.gate.Evaluate(r.Context(), identity.CredentialsFromContext(r.Context())).Granted {
		http.Redirect(w, r, "/admin/login", http.StatusFound)
		return
	}
	h.serveDashboard(w, r)
}

func (h *Handler) serveDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	http.StripPrefix("/admin", SPAHandler{StaticFS: h.adminFS}).ServeHTTP(w, r)
}

// respondResult writes an action result. Denied calls map to 401 and
// storage failures to 500; other failures are caller errors.
func respondResult(w http.ResponseWriter, res admin.Result) {
	status := http.StatusOK
	switch {
	case res.Success:
	case res.Message == admin.MsgUnauthorized:
		status = http.StatusUnauthorized
	case res.Message == admin.MsgOperationFailed:
		status = http.StatusInternalServerError
	default:
		status = http.StatusBadRequest
	}
	respondJSON(w, status, res)
}

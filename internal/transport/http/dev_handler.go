package http

import (
	"net/http"

	"github.com/parentrant/parentrant/internal/devtools"
	"github.com/parentrant/parentrant/internal/identity"
)

func (h *Handler) requestInfo(r *http.Request) devtools.RequestInfo {
	return devtools.RequestInfo{
		Credentials: identity.CredentialsFromContext(r.Context()),
		ClientIP:    getIPAddress(r),
		UserAgent:   r.UserAgent(),
	}
}

func (h *Handler) respondDev(w http.ResponseWriter, res devtools.Result) {
	status := http.StatusOK
	if !h.devService.Enabled() {
		status = http.StatusForbidden
	}
	respondJSON(w, status, res)
}

type bypassRequest struct {
	Enabled bool `json:"enabled"`
}

// DevSetBypass toggles the development ban bypass cookie.
func (h *Handler) DevSetBypass(w http.ResponseWriter, r *http.Request) {
	var req bypassRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondDev(w, h.devService.SetBanBypass(w, req.Enabled))
}

// DevInfo returns server diagnostics.
func (h *Handler) DevInfo(w http.ResponseWriter, r *http.Request) {
	h.respondDev(w, h.devService.Info(r.Context(), h.requestInfo(r)))
}

// DevHealth runs the dependency health checks.
func (h *Handler) DevHealth(w http.ResponseWriter, r *http.Request) {
	h.respondDev(w, h.devService.Health(r.Context()))
}

// DevTableStats returns row counts of the forum tables.
func (h *Handler) DevTableStats(w http.ResponseWriter, r *http.Request) {
	h.respondDev(w, h.devService.TableStats(r.Context()))
}

type cliRequest struct {
	Command string `json:"command"`
}

// DevCLI runs one dev console command.
func (h *Handler) DevCLI(w http.ResponseWriter, r *http.Request) {
	var req cliRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondDev(w, h.devService.Run(r.Context(), req.Command, h.requestInfo(r)))
}

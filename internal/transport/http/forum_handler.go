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
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parentrant/parentrant/internal/forum"
	"github.com/parentrant/parentrant/internal/identity"
	"github.com/parentrant/parentrant/internal/observability/logger"
)

// ListPosts lists posts with optional category, search and sort.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := forum.ListFilter{
		Category: forum.Category(q.Get("category")),
		Query:    q.Get("q"),
		Sort:     forum.Sort(q.Get("sort")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	posts, err := h.forumService.ListPosts(r.Context(), filter)
	if err != nil {
		h.respondForumError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// CreatePost publishes a post.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req forum.PostInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	creds := identity.CredentialsFromContext(r.Context())
	author := forum.Author{
		IPAddress:    getIPAddress(r),
		SkipBanCheck: h.devService != nil && h.devService.HasBanBypass(creds),
	}
	// The author id is informational; a provider failure still lets the post through.
	if id, err := h.resolver.Resolve(r.Context(), creds); err == nil && id != nil {
		author.UserID = id.ID
	}

	post, err := h.forumService.CreatePost(r.Context(), req, author)
	if err != nil {
		h.respondForumError(w, r, err)
		return
	}
	post.IPAddress = ""
	respondJSON(w, http.StatusCreated, post)
}

// GetPost returns a post with its comments.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, comments, err := h.forumService.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		h.respondForumError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"post":     post,
		"comments": comments,
	})
}

// LikePost increments a post's like counter.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	likes, err := h.forumService.LikePost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		h.respondForumError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

// ListComments lists a post's comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.forumService.ListComments(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		h.respondForumError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// CreateComment adds a comment to a post.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req forum.CommentInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.forumService.CreateComment(r.Context(), chi.URLParam(r, "postID"), req)
	if err != nil {
		h.respondForumError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

type reportRequest struct {
	Reason string `json:"reason"`
}

// SubmitReport flags a post for moderation.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.forumService.SubmitReport(r.Context(), chi.URLParam(r, "postID"), req.Reason)
	if err != nil {
		h.respondForumError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, report)
}

// ActiveAnnouncements lists the contents of active announcements.
func (h *Handler) ActiveAnnouncements(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"announcements": h.forumService.ActiveAnnouncements(r.Context()),
	})
}

func (h *Handler) respondForumError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *forum.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, forum.ErrBanned):
		respondError(w, http.StatusForbidden, forum.BannedMessage)
	case errors.Is(err, forum.ErrPostNotFound):
		respondError(w, http.StatusNotFound, "post not found")
	default:
		h.logger.ErrorContext(r.Context(), "forum request failed",
			logger.Path(r.URL.Path),
			logger.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

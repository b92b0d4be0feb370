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

package forum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/parentrant/parentrant/internal/observability/logger"
	"github.com/parentrant/parentrant/internal/observability/metrics"
)

// BannedMessage is shown to banned addresses that try to post.
const BannedMessage = "哎呀，您的小黑屋套餐还没到期呢，暂时不能发言哦~"

// Author describes who is posting.
type Author struct {
	IPAddress string
	UserID    string
	// SkipBanCheck is set by the development-only ban bypass.
	SkipBanCheck bool
}

// Service provides the public forum operations
type Service struct {
	repos  Repositories
	logger *slog.Logger
	now    func() time.Time

	postsCreated metric.Int64Counter
	bannedTries  metric.Int64Counter
}

// NewService creates a new forum service
func NewService(repos Repositories, log *slog.Logger, meter *metrics.Meter) *Service {
	if log == nil {
		log = slog.Default()
	}
	if meter == nil {
		meter = metrics.Noop()
	}
	return &Service{
		repos:        repos,
		logger:       log,
		now:          time.Now,
		postsCreated: meter.MustCounter(metrics.PostsCreated, "Posts created by category"),
		bannedTries:  meter.MustCounter(metrics.BannedPostTries, "Posts rejected because the address is banned"),
	}
}

// CreatePost validates and stores a new post.
func (s *Service) CreatePost(ctx context.Context, in PostInput, author Author) (*Post, error) {
	if err := validatePost(in); err != nil {
		return nil, err
	}

	ip := author.IPAddress
	if ip != "" && ip != "unknown" && !author.SkipBanCheck {
		banned, err := s.repos.Bans.IsBanned(ctx, ip)
		if err != nil {
			return nil, fmt.Errorf("failed to check ban list: %w", err)
		}
		if banned {
			s.bannedTries.Add(ctx, 1)
			s.logger.InfoContext(ctx, "banned address tried to post", logger.IPAddress(ip))
			return nil, ErrBanned
		}
	}

	post := &Post{
		ID:        uuid.NewString(),
		Content:   in.Content,
		Nickname:  orDefault(in.Nickname, DefaultPostNickname),
		Color:     orDefault(in.Color, DefaultColor),
		Category:  Category(orDefault(in.Category, string(CategoryOther))),
		ImageURL:  in.ImageURL,
		UserID:    author.UserID,
		IPAddress: ip,
		CreatedAt: s.now(),
	}

	if err := s.repos.Posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.postsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("category", string(post.Category))))
	return post, nil
}

// ListPosts lists posts matching filter.
func (s *Service) ListPosts(ctx context.Context, filter ListFilter) ([]*Post, error) {
	f, err := filter.normalize()
	if err != nil {
		return nil, err
	}
	posts, err := s.repos.Posts.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	for _, p := range posts {
		p.IPAddress = ""
	}
	return posts, nil
}

// GetPost retrieves a post and its comments.
func (s *Service) GetPost(ctx context.Context, id string) (*Post, []*Comment, error) {
	if !ValidID(id) {
		return nil, nil, ErrPostNotFound
	}
	post, err := s.repos.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	post.IPAddress = ""

	comments, err := s.repos.Comments.ListByPost(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list comments: %w", err)
	}
	post.CommentCount = len(comments)
	return post, comments, nil
}

// LikePost adds a like and returns the new like count.
func (s *Service) LikePost(ctx context.Context, id string) (int, error) {
	if !ValidID(id) {
		return 0, ErrPostNotFound
	}
	return s.repos.Posts.IncrementLikes(ctx, id)
}

// ListComments lists the comments of a post, oldest first.
func (s *Service) ListComments(ctx context.Context, postID string) ([]*Comment, error) {
	if !ValidID(postID) {
		return nil, ErrPostNotFound
	}
	return s.repos.Comments.ListByPost(ctx, postID)
}

// CreateComment validates and stores a comment on a post.
func (s *Service) CreateComment(ctx context.Context, postID string, in CommentInput) (*Comment, error) {
	if !ValidID(postID) {
		return nil, ErrPostNotFound
	}
	if err := validateComment(in); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		Content:   in.Content,
		Nickname:  orDefault(in.Nickname, DefaultCommentNickname),
		CreatedAt: s.now(),
	}
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// SubmitReport flags a post for moderation.
func (s *Service) SubmitReport(ctx context.Context, postID, reason string) (*Report, error) {
	if !ValidID(postID) {
		return nil, ErrPostNotFound
	}
	if reason == "" {
		return nil, invalid("请填写举报原因")
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return nil, invalid("举报原因太长了")
	}

	report := &Report{
		ID:        uuid.NewString(),
		PostID:    postID,
		Reason:    reason,
		Status:    ReportPending,
		CreatedAt: s.now(),
	}
	if err := s.repos.Reports.Create(ctx, report); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return report, nil
}

// ActiveAnnouncements returns the contents of active announcements, newest
// first. Failures are logged and yield an empty list.
func (s *Service) ActiveAnnouncements(ctx context.Context) []string {
	items, err := s.repos.Announcements.List(ctx, true)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list announcements", logger.Error(err))
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.Content)
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

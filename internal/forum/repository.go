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

import "context"

// PostRepository persists posts.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, filter ListFilter) ([]*Post, error)
	Delete(ctx context.Context, id string) error
	// IncrementLikes atomically adds one like and returns the new count.
	IncrementLikes(ctx context.Context, id string) (int, error)
}

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	ListByPost(ctx context.Context, postID string) ([]*Comment, error)
}

// ReportRepository persists reports.
type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	// List returns every report with its post, newest first.
	List(ctx context.Context) ([]*Report, error)
	UpdateStatus(ctx context.Context, id string, status ReportStatus) error
}

// AnnouncementRepository persists announcements.
type AnnouncementRepository interface {
	Create(ctx context.Context, a *Announcement) error
	Update(ctx context.Context, a *Announcement) error
	Delete(ctx context.Context, id string) error
	// List returns announcements newest first, optionally only active ones.
	List(ctx context.Context, activeOnly bool) ([]*Announcement, error)
}

// BanRepository persists the IP ban list.
type BanRepository interface {
	IsBanned(ctx context.Context, ip string) (bool, error)
	// Ban returns ErrAlreadyBanned when the address is already listed.
	Ban(ctx context.Context, ban *BannedIP) error
	Unban(ctx context.Context, ip string) error
	// List returns bans newest first.
	List(ctx context.Context) ([]*BannedIP, error)
}

// Repositories groups the forum repositories.
type Repositories struct {
	Posts         PostRepository
	Comments      CommentRepository
	Reports       ReportRepository
	Announcements AnnouncementRepository
	Bans          BanRepository
}

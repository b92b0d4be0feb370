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

// Package forum holds the public side of ParentRant: anonymous posts,
// comments, reports, announcements and the IP ban list.
package forum

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrValidation           = errors.New("validation failed")
	ErrPostNotFound         = errors.New("post not found")
	ErrReportNotFound       = errors.New("report not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrAlreadyBanned        = errors.New("ip address already banned")
	ErrBanNotFound          = errors.New("ip address not banned")
	ErrBanned               = errors.New("ip address banned")
)

// ValidationError is a user-facing input error. It matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// Category classifies a post.
type Category string

const (
	CategoryHomework     Category = "homework"
	CategorySchool       Category = "school"
	CategoryRelationship Category = "relationship"
	CategoryFunny        Category = "funny"
	CategoryTeacher      Category = "teacher"
	CategoryParent       Category = "parent"
	CategoryStudent      Category = "student"
	CategoryOther        Category = "other"
)

// CategoryLabels maps every category to its display label.
var CategoryLabels = map[Category]string{
	CategoryHomework:     "作业辅导",
	CategorySchool:       "吐槽学校",
	CategoryRelationship: "亲子关系",
	CategoryFunny:        "搞笑日常",
	CategoryTeacher:      "吐槽老师",
	CategoryParent:       "吐槽家长",
	CategoryStudent:      "吐槽学生",
	CategoryOther:        "其他吐槽",
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := CategoryLabels[c]
	return ok
}

// Post is an anonymous rant.
type Post struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Nickname     string    `json:"nickname"`
	Color        string    `json:"color"`
	Category     Category  `json:"category"`
	ImageURL     string    `json:"image_url,omitempty"`
	Likes        int       `json:"likes"`
	CommentCount int       `json:"comment_count"`
	UserID       string    `json:"-"`
	IPAddress    string    `json:"ip_address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Comment is a reply to a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Content   string    `json:"content"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report flags a post for moderation.
type Report struct {
	ID        string       `json:"id"`
	PostID    string       `json:"post_id"`
	Reason    string       `json:"reason"`
	Status    ReportStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	Post      *Post        `json:"post,omitempty"`
}

// Announcement is a site-wide banner message.
type Announcement struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BannedIP is an address that may not post.
type BannedIP struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ip_address"`
	Reason    string    `json:"reason"`
	BannedBy  string    `json:"banned_by,omitempty"`
	BannedAt  time.Time `json:"banned_at"`
}

// Sort orders post listings.
type Sort string

const (
	SortLatest  Sort = "latest"
	SortHottest Sort = "hottest"
)

// ListFilter selects and pages posts.
type ListFilter struct {
	Category Category
	Query    string
	Sort     Sort
	Limit    int
	Offset   int
}

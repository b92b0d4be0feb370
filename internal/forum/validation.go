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
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Input limits, in characters.
const (
	MaxPostLength     = 10000
	MaxCommentLength  = 2000
	MaxNicknameLength = 50
	MaxReasonLength   = 500
	MaxColorLength    = 32

	DefaultPostNickname    = "匿名家长"
	DefaultCommentNickname = "匿名"
	DefaultColor           = "blue"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

var tagPattern = regexp.MustCompile(`<[^>]*>?`)

// StripTags removes HTML tags from s.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// ValidID reports whether id is a well-formed UUID.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

// PostInput is the user-supplied part of a new post.
type PostInput struct {
	Content  string `json:"content"`
	Nickname string `json:"nickname"`
	Category string `json:"category"`
	Color    string `json:"color"`
	ImageURL string `json:"image_url"`
}

func validatePost(in PostInput) error {
	if strings.TrimSpace(in.Content) == "" {
		return invalid("写点啥啊？空气没法吐槽！")
	}
	if strings.TrimSpace(StripTags(in.Content)) == "" && !strings.Contains(in.Content, "<img") && in.ImageURL == "" {
		return invalid("不能只发空行，说点人话！")
	}
	if utf8.RuneCountInString(in.Content) > MaxPostLength {
		return invalid("太长不看！你也太能唠叨了吧？请控制在 1万字以内。")
	}
	if utf8.RuneCountInString(in.Nickname) > MaxNicknameLength {
		return invalid("江湖代号太长了，简短点才霸气！")
	}
	if in.Category != "" && !Category(in.Category).Valid() {
		return invalid("没有这个吐槽分类")
	}
	if utf8.RuneCountInString(in.Color) > MaxColorLength {
		return invalid("颜色格式不对")
	}
	return nil
}

// CommentInput is the user-supplied part of a new comment.
type CommentInput struct {
	Content  string `json:"content"`
	Nickname string `json:"nickname"`
}

func validateComment(in CommentInput) error {
	if strings.TrimSpace(in.Content) == "" {
		return invalid("说点啥啊？哑语是没法交流的！")
	}
	if strings.TrimSpace(StripTags(in.Content)) == "" {
		return invalid("别光发表情包或者空行，打两个字呗！")
	}
	if utf8.RuneCountInString(in.Content) > MaxCommentLength {
		return invalid("评论区不是写作文的地方，精简点！")
	}
	if utf8.RuneCountInString(in.Nickname) > MaxNicknameLength {
		return invalid("名字太长了，你是来写小说的吗？")
	}
	return nil
}

// normalize applies defaults and bounds to a listing filter.
func (f ListFilter) normalize() (ListFilter, error) {
	if f.Category == "all" {
		f.Category = ""
	}
	if f.Category != "" && !f.Category.Valid() {
		return f, invalid("没有这个吐槽分类")
	}
	switch f.Sort {
	case "":
		f.Sort = SortLatest
	case SortLatest, SortHottest:
	default:
		return f, invalid("不支持的排序方式")
	}
	f.Query = strings.TrimSpace(f.Query)
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f, nil
}

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

package postgres

import (
	"context"
	"fmt"

	"github.com/parentrant/parentrant/internal/forum"
)

// CommentRepository implements forum.CommentRepository
type CommentRepository struct {
	db *DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, c *forum.Comment) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO comments (id, post_id, content, nickname, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.PostID, c.Content, c.Nickname, c.CreatedAt)
	if err != nil {
		if hasCode(err, codeForeignKeyViolation) {
			return forum.ErrPostNotFound
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListByPost lists the comments of a post, oldest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*forum.Comment, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, post_id, content, nickname, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []*forum.Comment{}
	for rows.Next() {
		var c forum.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.Nickname, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

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
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/parentrant/parentrant/internal/forum"
)

// PostRepository implements forum.PostRepository
type PostRepository struct {
	db *DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `
	p.id, p.content, p.nickname, p.color, p.category, COALESCE(p.image_url, ''),
	p.likes, COALESCE(p.user_id::text, ''), COALESCE(p.ip_address, ''), p.created_at,
	(SELECT count(*) FROM comments c WHERE c.post_id = p.id)`

func scanPost(row pgx.Row) (*forum.Post, error) {
	var p forum.Post
	err := row.Scan(
		&p.ID, &p.Content, &p.Nickname, &p.Color, &p.Category, &p.ImageURL,
		&p.Likes, &p.UserID, &p.IPAddress, &p.CreatedAt, &p.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, p *forum.Post) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO posts (id, content, nickname, color, category, image_url, user_id, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, '')::uuid, NULLIF($8, ''), $9)
	`,
		p.ID, p.Content, p.Nickname, p.Color, string(p.Category), p.ImageURL,
		p.UserID, p.IPAddress, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*forum.Post, error) {
	p, err := scanPost(r.db.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, forum.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return p, nil
}

// List lists posts matching the filter
func (r *PostRepository) List(ctx context.Context, f forum.ListFilter) ([]*forum.Post, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, string(f.Category))
		where = append(where, fmt.Sprintf("p.category = $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+escapeLike(f.Query)+"%")
		where = append(where, fmt.Sprintf("p.content ILIKE $%d", len(args)))
	}

	query := `SELECT ` + postColumns + ` FROM posts p`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Sort == forum.SortHottest {
		query += " ORDER BY p.likes DESC, p.created_at DESC"
	} else {
		query += " ORDER BY p.created_at DESC"
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []*forum.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Delete deletes a post; comments and reports cascade
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return forum.ErrPostNotFound
	}
	return nil
}

// IncrementLikes atomically adds one like
func (r *PostRepository) IncrementLikes(ctx context.Context, id string) (int, error) {
	var likes int
	err := r.db.pool.QueryRow(ctx, `
		UPDATE posts SET likes = likes + 1 WHERE id = $1 RETURNING likes
	`, id).Scan(&likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, forum.ErrPostNotFound
		}
		return 0, fmt.Errorf("failed to like post: %w", err)
	}
	return likes, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

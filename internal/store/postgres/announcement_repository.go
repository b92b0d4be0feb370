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

// AnnouncementRepository implements forum.AnnouncementRepository
type AnnouncementRepository struct {
	db *DB
}

// NewAnnouncementRepository creates a new announcement repository
func NewAnnouncementRepository(db *DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create creates a new announcement
func (r *AnnouncementRepository) Create(ctx context.Context, a *forum.Announcement) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO announcements (id, content, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.Content, a.IsActive, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

// Update updates content and visibility
func (r *AnnouncementRepository) Update(ctx context.Context, a *forum.Announcement) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE announcements SET content = $2, is_active = $3, updated_at = $4
		WHERE id = $1
	`, a.ID, a.Content, a.IsActive, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return forum.ErrAnnouncementNotFound
	}
	return nil
}

// Delete deletes an announcement
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return forum.ErrAnnouncementNotFound
	}
	return nil
}

// List lists announcements, newest first
func (r *AnnouncementRepository) List(ctx context.Context, activeOnly bool) ([]*forum.Announcement, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, content, is_active, created_at, updated_at
		FROM announcements
		WHERE NOT $1 OR is_active
		ORDER BY created_at DESC
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	items := []*forum.Announcement{}
	for rows.Next() {
		var a forum.Announcement
		if err := rows.Scan(&a.ID, &a.Content, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

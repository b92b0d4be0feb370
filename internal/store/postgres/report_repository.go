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

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/parentrant/parentrant/internal/forum"
)

// ReportRepository implements forum.ReportRepository
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create creates a new report
func (r *ReportRepository) Create(ctx context.Context, rep *forum.Report) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO reports (id, post_id, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rep.ID, rep.PostID, rep.Reason, string(rep.Status), rep.CreatedAt)
	if err != nil {
		if hasCode(err, codeForeignKeyViolation) {
			return forum.ErrPostNotFound
		}
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// List lists every report with its post, newest first
func (r *ReportRepository) List(ctx context.Context) ([]*forum.Report, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT r.id, r.post_id, r.reason, r.status, r.created_at,
		       p.id, p.content, p.nickname, p.color, p.category, p.image_url,
		       p.likes, p.ip_address, p.created_at
		FROM reports r
		LEFT JOIN posts p ON p.id = r.post_id
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []*forum.Report{}
	for rows.Next() {
		var (
			rep                                               forum.Report
			postID, content, nickname, color, category, image pgtype.Text
			ip                                                pgtype.Text
			likes                                             pgtype.Int4
			createdAt                                         pgtype.Timestamptz
		)
		if err := rows.Scan(
			&rep.ID, &rep.PostID, &rep.Reason, &rep.Status, &rep.CreatedAt,
			&postID, &content, &nickname, &color, &category, &image,
			&likes, &ip, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if postID.Valid {
			rep.Post = &forum.Post{
				ID:        postID.String,
				Content:   content.String,
				Nickname:  nickname.String,
				Color:     color.String,
				Category:  forum.Category(category.String),
				ImageURL:  image.String,
				Likes:     int(likes.Int32),
				IPAddress: ip.String,
				CreatedAt: createdAt.Time,
			}
		}
		reports = append(reports, &rep)
	}
	return reports, rows.Err()
}

// UpdateStatus changes the status of a report
func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, status forum.ReportStatus) error {
	result, err := r.db.pool.Exec(ctx, `UPDATE reports SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return forum.ErrReportNotFound
	}
	return nil
}

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

// BanRepository implements forum.BanRepository
type BanRepository struct {
	db *DB
}

// NewBanRepository creates a new ban repository
func NewBanRepository(db *DB) *BanRepository {
	return &BanRepository{db: db}
}

// IsBanned checks whether an address is banned
func (r *BanRepository) IsBanned(ctx context.Context, ip string) (bool, error) {
	var banned bool
	err := r.db.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM banned_ips WHERE ip_address = $1)
	`, ip).Scan(&banned)
	if err != nil {
		return false, fmt.Errorf("failed to check ban: %w", err)
	}
	return banned, nil
}

// Ban adds an address to the ban list
func (r *BanRepository) Ban(ctx context.Context, b *forum.BannedIP) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO banned_ips (id, ip_address, reason, banned_by, banned_at)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5)
	`, b.ID, b.IPAddress, b.Reason, b.BannedBy, b.BannedAt)
	if err != nil {
		if hasCode(err, codeUniqueViolation) {
			return forum.ErrAlreadyBanned
		}
		return fmt.Errorf("failed to ban ip: %w", err)
	}
	return nil
}

// Unban removes an address from the ban list
func (r *BanRepository) Unban(ctx context.Context, ip string) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM banned_ips WHERE ip_address = $1`, ip)
	if err != nil {
		return fmt.Errorf("failed to unban ip: %w", err)
	}
	if result.RowsAffected() == 0 {
		return forum.ErrBanNotFound
	}
	return nil
}

// List lists bans, newest first
func (r *BanRepository) List(ctx context.Context) ([]*forum.BannedIP, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, ip_address, COALESCE(reason, ''), COALESCE(banned_by::text, ''), banned_at
		FROM banned_ips
		ORDER BY banned_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list banned ips: %w", err)
	}
	defer rows.Close()

	bans := []*forum.BannedIP{}
	for rows.Next() {
		var b forum.BannedIP
		if err := rows.Scan(&b.ID, &b.IPAddress, &b.Reason, &b.BannedBy, &b.BannedAt); err != nil {
			return nil, fmt.Errorf("failed to scan banned ip: %w", err)
		}
		bans = append(bans, &b)
	}
	return bans, rows.Err()
}

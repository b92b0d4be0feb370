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

	"github.com/jackc/pgx/v5"
)

// StatTables are the tables whose row counts are reported.
var StatTables = []string{"posts", "reports", "announcements", "banned_ips", "comments"}

// TableCount is the row count of one table.
type TableCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// StatsRepository reads table statistics
type StatsRepository struct {
	db *DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// TableCounts returns the row count of every table in StatTables.
func (r *StatsRepository) TableCounts(ctx context.Context) ([]TableCount, error) {
	batch := &pgx.Batch{}
	for _, table := range StatTables {
		batch.Queue("SELECT count(*) FROM " + pgx.Identifier{table}.Sanitize())
	}

	results := r.db.pool.SendBatch(ctx, batch)
	defer results.Close()

	counts := make([]TableCount, 0, len(StatTables))
	for _, table := range StatTables {
		var n int64
		if err := results.QueryRow().Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts = append(counts, TableCount{Name: table, Count: n})
	}
	return counts, nil
}

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

//go:build integration
// +build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parentrant/parentrant/internal/forum"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	cfg := Config{
		Host:         envOr("DB_HOST", "localhost"),
		Port:         envOr("DB_PORT", "5432"),
		User:         envOr("DB_USER", "parentrant"),
		Password:     envOr("DB_PASSWORD", "parentrant_dev_password"),
		Database:     envOr("DB_NAME", "parentrant"),
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 1,
	}

	ctx := context.Background()
	db, err := New(ctx, cfg)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to database: %v", err)
	}
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx, InitialSchema))
	return db
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newPost(content string) *forum.Post {
	return &forum.Post{
		ID:        uuid.NewString(),
		Content:   content,
		Nickname:  forum.DefaultPostNickname,
		Color:     forum.DefaultColor,
		Category:  forum.CategoryOther,
		IPAddress: "10.0.0.1",
		CreatedAt: time.Now(),
	}
}

// TestPurpose: Validates that a duplicate ban is reported as ErrAlreadyBanned via the unique constraint.
// Scope: Database Integration Test
// Security: Abuse prevention bookkeeping
// Expected: The second ban of the same address returns forum.ErrAlreadyBanned; unban removes it.
// Test Case ID: DB-01
func TestBanRepository_Duplicate(t *testing.T) {
	db := openTestDB(t)
	repo := NewBanRepository(db)
	ctx := context.Background()
	ip := "203.0.113." + uuid.NewString()[:3]

	ban := &forum.BannedIP{ID: uuid.NewString(), IPAddress: ip, Reason: "spam", BannedAt: time.Now()}
	require.NoError(t, repo.Ban(ctx, ban))
	t.Cleanup(func() { _ = repo.Unban(ctx, ip) })

	dup := &forum.BannedIP{ID: uuid.NewString(), IPAddress: ip, BannedAt: time.Now()}
	assert.ErrorIs(t, repo.Ban(ctx, dup), forum.ErrAlreadyBanned)

	banned, err := repo.IsBanned(ctx, ip)
	require.NoError(t, err)
	assert.True(t, banned)

	require.NoError(t, repo.Unban(ctx, ip))
	assert.ErrorIs(t, repo.Unban(ctx, ip), forum.ErrBanNotFound)
}

func TestPostRepository_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)
	reports := NewReportRepository(db)
	ctx := context.Background()

	p := newPost("integration 100% _literal_ " + uuid.NewString())
	require.NoError(t, posts.Create(ctx, p))

	require.NoError(t, comments.Create(ctx, &forum.Comment{
		ID: uuid.NewString(), PostID: p.ID, Content: "同感", Nickname: "匿名", CreatedAt: time.Now(),
	}))
	assert.ErrorIs(t, comments.Create(ctx, &forum.Comment{
		ID: uuid.NewString(), PostID: uuid.NewString(), Content: "x", Nickname: "匿名", CreatedAt: time.Now(),
	}), forum.ErrPostNotFound)

	got, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentCount)

	likes, err := posts.IncrementLikes(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	found, err := posts.List(ctx, forum.ListFilter{Query: "100% _literal_", Sort: forum.SortLatest, Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, found)
	assert.Equal(t, p.ID, found[0].ID)

	rep := &forum.Report{ID: uuid.NewString(), PostID: p.ID, Reason: "spam", Status: forum.ReportPending, CreatedAt: time.Now()}
	require.NoError(t, reports.Create(ctx, rep))
	require.NoError(t, reports.UpdateStatus(ctx, rep.ID, forum.ReportResolved))

	require.NoError(t, posts.Delete(ctx, p.ID))
	assert.ErrorIs(t, posts.Delete(ctx, p.ID), forum.ErrPostNotFound)
	_, err = posts.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, forum.ErrPostNotFound)
	assert.ErrorIs(t, reports.UpdateStatus(ctx, rep.ID, forum.ReportDismissed), forum.ErrReportNotFound)
}

func TestStatsRepository_TableCounts(t *testing.T) {
	db := openTestDB(t)
	counts, err := NewStatsRepository(db).TableCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, len(StatTables))
	for i, c := range counts {
		assert.Equal(t, StatTables[i], c.Name)
		assert.GreaterOrEqual(t, c.Count, int64(0))
	}
}

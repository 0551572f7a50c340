// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aischii/mangaWebsite/internal/core/content"
	"github.com/Aischii/mangaWebsite/internal/core/library"
	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/migration"
)

// openTestPool connects to TEST_DATABASE_URL and applies the migrations.
// Tests using it are skipped when the variable is unset.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	migrations, err := filepath.Abs(filepath.Join("..", "..", "..", "data", "migrations"))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, migration.NewRunner(dsn, migrations, logger).Up())

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// seededRows tracks what one test inserted so counts ignore other data.
type seededRows struct {
	pool   *pgxpool.Pool
	userID int64
}

func (s *seededRows) exec(t *testing.T, query string, args ...any) int64 {
	t.Helper()
	var id int64
	require.NoError(t, s.pool.QueryRow(context.Background(), query+" RETURNING id", args...).Scan(&id))
	return id
}

func (s *seededRows) comment(t *testing.T, targetType string, targetID int64, parentID *int64) int64 {
	t.Helper()
	return s.exec(t, `INSERT INTO comments (user_id, target_type, target_id, parent_id, body) VALUES ($1, $2, $3, $4, 'text')`,
		s.userID, targetType, targetID, parentID)
}

func (s *seededRows) react(t *testing.T, userID int64, targetType string, targetID int64) {
	t.Helper()
	_, err := s.pool.Exec(context.Background(),
		`INSERT INTO reactions (user_id, target_type, target_id, emoji) VALUES ($1, $2, $3, '👍')`,
		userID, targetType, targetID)
	require.NoError(t, err)
}

func (s *seededRows) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, s.pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func (s *seededRows) commentsOn(t *testing.T, targetType string, targetID int64) int {
	return s.count(t, `SELECT COUNT(*) FROM comments WHERE target_type = $1 AND target_id = $2`, targetType, targetID)
}

func (s *seededRows) reactionsOn(t *testing.T, targetType string, targetID int64) int {
	return s.count(t, `SELECT COUNT(*) FROM reactions WHERE target_type = $1 AND target_id = $2`, targetType, targetID)
}

/*
TestPostgresRepository_DeleteMangaCascade verifies deleting a manga leaves no
chapter, bookmark, progress, comment or reaction behind, and touches nothing else.
*/
func TestPostgresRepository_DeleteMangaCascade(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repository := content.NewRepository(pool)

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	seed := &seededRows{pool: pool}
	seed.userID = seed.exec(t, `INSERT INTO users (username, password_hash) VALUES ($1, 'x')`, "del"+suffix[len(suffix)-12:])
	other := seed.exec(t, `INSERT INTO users (username, password_hash) VALUES ($1, 'x')`, "oth"+suffix[len(suffix)-12:])
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id IN ($1, $2)`, seed.userID, other)
	})

	doomed := &library.Manga{Title: "Doomed", Slug: "doomed-" + suffix}
	require.NoError(t, repository.CreateManga(ctx, doomed))
	kept := &library.Manga{Title: "Kept", Slug: "kept-" + suffix}
	require.NoError(t, repository.CreateManga(ctx, kept))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM manga WHERE id = $1`, kept.ID)
	})

	chapter := &library.Chapter{MangaID: doomed.ID, Title: "One", Slug: "one", Pages: []string{"doomed/one/001.jpg"}, Volume: "1"}
	require.NoError(t, repository.CreateChapter(ctx, chapter))
	keptChapter := &library.Chapter{MangaID: kept.ID, Title: "One", Slug: "one", Pages: []string{}, Volume: "1"}
	require.NoError(t, repository.CreateChapter(ctx, keptChapter))

	_, err := pool.Exec(ctx, `INSERT INTO bookmarks (user_id, manga_id) VALUES ($1, $2)`, seed.userID, doomed.ID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO reading_progress (user_id, manga_id, chapter_id) VALUES ($1, $2, $3)`, seed.userID, doomed.ID, chapter.ID)
	require.NoError(t, err)

	mangaComment := seed.comment(t, "manga", doomed.ID, nil)
	reply := seed.comment(t, "manga", doomed.ID, &mangaComment)
	chapterComment := seed.comment(t, "chapter", chapter.ID, nil)
	aboutComment := seed.comment(t, "comment", mangaComment, nil)
	keptComment := seed.comment(t, "manga", kept.ID, nil)

	for _, userID := range []int64{seed.userID, other} {
		seed.react(t, userID, "manga", doomed.ID)
		seed.react(t, userID, "chapter", chapter.ID)
		seed.react(t, userID, "comment", mangaComment)
		seed.react(t, userID, "comment", reply)
		seed.react(t, userID, "comment", chapterComment)
		seed.react(t, userID, "comment", aboutComment)
		seed.react(t, userID, "manga", kept.ID)
		seed.react(t, userID, "comment", keptComment)
	}

	require.NoError(t, repository.DeleteManga(ctx, doomed.ID))

	assert.Zero(t, seed.count(t, `SELECT COUNT(*) FROM chapters WHERE manga_id = $1`, doomed.ID))
	assert.Zero(t, seed.count(t, `SELECT COUNT(*) FROM bookmarks WHERE manga_id = $1`, doomed.ID))
	assert.Zero(t, seed.count(t, `SELECT COUNT(*) FROM reading_progress WHERE manga_id = $1`, doomed.ID))
	assert.Zero(t, seed.count(t, `SELECT COUNT(*) FROM comments WHERE id = ANY($1)`,
		[]int64{mangaComment, reply, chapterComment, aboutComment}))

	assert.Zero(t, seed.reactionsOn(t, "manga", doomed.ID))
	assert.Zero(t, seed.reactionsOn(t, "chapter", chapter.ID))
	for _, id := range []int64{mangaComment, reply, chapterComment, aboutComment} {
		assert.Zero(t, seed.reactionsOn(t, "comment", id), "reactions on comment %d", id)
	}

	assert.Equal(t, 1, seed.commentsOn(t, "manga", kept.ID))
	assert.Equal(t, 2, seed.reactionsOn(t, "manga", kept.ID))
	assert.Equal(t, 2, seed.reactionsOn(t, "comment", keptComment))
	assert.Equal(t, 1, seed.count(t, `SELECT COUNT(*) FROM chapters WHERE manga_id = $1`, kept.ID))

	assert.True(t, apperr.IsNotFound(repository.DeleteManga(ctx, doomed.ID)))
}

/*
TestPostgresRepository_DeleteChapterCascade verifies a chapter delete removes
only that chapter's comments and reactions.
*/
func TestPostgresRepository_DeleteChapterCascade(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repository := content.NewRepository(pool)

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	seed := &seededRows{pool: pool}
	seed.userID = seed.exec(t, `INSERT INTO users (username, password_hash) VALUES ($1, 'x')`, "chp"+suffix[len(suffix)-12:])
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, seed.userID)
	})

	manga := &library.Manga{Title: "Series", Slug: "series-" + suffix}
	require.NoError(t, repository.CreateManga(ctx, manga))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM manga WHERE id = $1`, manga.ID)
	})

	first := &library.Chapter{MangaID: manga.ID, Title: "One", Slug: "one", Pages: []string{}, Volume: "1"}
	require.NoError(t, repository.CreateChapter(ctx, first))
	second := &library.Chapter{MangaID: manga.ID, Title: "Two", Slug: "two", Pages: []string{}, Volume: "1"}
	require.NoError(t, repository.CreateChapter(ctx, second))

	doomedComment := seed.comment(t, "chapter", first.ID, nil)
	keptComment := seed.comment(t, "chapter", second.ID, nil)
	mangaComment := seed.comment(t, "manga", manga.ID, nil)
	seed.react(t, seed.userID, "chapter", first.ID)
	seed.react(t, seed.userID, "comment", doomedComment)
	seed.react(t, seed.userID, "chapter", second.ID)

	require.NoError(t, repository.DeleteChapter(ctx, first.ID))

	assert.Zero(t, seed.commentsOn(t, "chapter", first.ID))
	assert.Zero(t, seed.reactionsOn(t, "chapter", first.ID))
	assert.Zero(t, seed.reactionsOn(t, "comment", doomedComment))

	assert.Equal(t, 1, seed.commentsOn(t, "chapter", second.ID))
	assert.Equal(t, 1, seed.reactionsOn(t, "chapter", second.ID))
	assert.Equal(t, 1, seed.count(t, `SELECT COUNT(*) FROM comments WHERE id IN ($1, $2)`, keptComment, mangaComment))
}

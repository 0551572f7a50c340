// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aischii/mangaWebsite/internal/core/library"
)

func newCache(t *testing.T, next library.Repository) (*library.CachedRepository, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return library.NewCachedRepository(next, client, time.Minute, logger), server
}

/*
TestCachedRepository_ReadThrough verifies repeated reads hit Redis, not the store.
*/
func TestCachedRepository_ReadThrough(t *testing.T) {
	catalog := seedCatalog()
	cache, _ := newCache(t, catalog)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		list, err := cache.ListManga(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 23)

		counts, err := cache.ChapterCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, counts[1])

		chapters, err := cache.ListChapters(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, chapters, 4)
	}

	assert.Equal(t, 1, catalog.calls["ListManga"])
	assert.Equal(t, 1, catalog.calls["ChapterCounts"])
	assert.Equal(t, 1, catalog.calls["ListChapters"])
}

/*
TestCachedRepository_Invalidate verifies a mutation makes the next read reload.
*/
func TestCachedRepository_Invalidate(t *testing.T) {
	catalog := seedCatalog()
	cache, _ := newCache(t, catalog)
	ctx := context.Background()

	manga, err := cache.FindMangaBySlug(ctx, "title-01")
	require.NoError(t, err)
	assert.Equal(t, "Title 01", manga.Title)
	_, err = cache.ListManga(ctx)
	require.NoError(t, err)

	catalog.manga[0].Title = "Renamed"
	cache.Invalidate(ctx, 1, "title-01")

	manga, err = cache.FindMangaBySlug(ctx, "title-01")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", manga.Title)

	list, err := cache.ListManga(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", list[0].Title)

	assert.Equal(t, 2, catalog.calls["FindMangaBySlug"])
	assert.Equal(t, 2, catalog.calls["ListManga"])
}

// interleavedCatalog runs during once after loading a row and before the cache stores it.
type interleavedCatalog struct {
	*memoryCatalog
	during func()
}

func (c *interleavedCatalog) interleave() {
	if c.during != nil {
		during := c.during
		c.during = nil
		during()
	}
}

func (c *interleavedCatalog) FindMangaBySlug(ctx context.Context, slug string) (*library.Manga, error) {
	manga, err := c.memoryCatalog.FindMangaBySlug(ctx, slug)
	c.interleave()
	return manga, err
}

func (c *interleavedCatalog) ListChapters(ctx context.Context, mangaID int64) ([]library.Chapter, error) {
	chapters, err := c.memoryCatalog.ListChapters(ctx, mangaID)
	c.interleave()
	return chapters, err
}

/*
TestCachedRepository_StaleFillAfterInvalidate verifies a read that loaded the
old row before a mutation cannot serve it after the mutation is invalidated.
*/
func TestCachedRepository_StaleFillAfterInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("manga_by_slug", func(t *testing.T) {
		catalog := &interleavedCatalog{memoryCatalog: seedCatalog()}
		cache, _ := newCache(t, catalog)
		catalog.during = func() {
			catalog.manga[0].Title = "Renamed"
			cache.Invalidate(ctx, 1, "title-01")
		}

		stale, err := cache.FindMangaBySlug(ctx, "title-01")
		require.NoError(t, err)
		assert.Equal(t, "Title 01", stale.Title)

		fresh, err := cache.FindMangaBySlug(ctx, "title-01")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", fresh.Title)
		assert.Equal(t, 2, catalog.calls["FindMangaBySlug"])
	})

	t.Run("chapter_list", func(t *testing.T) {
		catalog := &interleavedCatalog{memoryCatalog: seedCatalog()}
		cache, _ := newCache(t, catalog)
		catalog.during = func() {
			catalog.chapters = catalog.chapters[1:]
			cache.Invalidate(ctx, 1, "title-01")
		}

		stale, err := cache.ListChapters(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, stale, 4)

		fresh, err := cache.ListChapters(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, fresh, 3)
		assert.Equal(t, 2, catalog.calls["ListChapters"])
	})
}

/*
TestCachedRepository_KeysCarryVersion verifies per-manga entries live under the
catalog version and are removed by Invalidate.
*/
func TestCachedRepository_KeysCarryVersion(t *testing.T) {
	catalog := seedCatalog()
	cache, server := newCache(t, catalog)
	ctx := context.Background()

	_, err := cache.FindMangaBySlug(ctx, "title-01")
	require.NoError(t, err)
	_, err = cache.ListChapters(ctx, 1)
	require.NoError(t, err)

	assert.True(t, server.Exists("library:v0:manga:slug:title-01"))
	assert.True(t, server.Exists("library:v0:manga:chapters:1"))

	cache.Invalidate(ctx, 1, "title-01")

	assert.False(t, server.Exists("library:v0:manga:slug:title-01"))
	assert.False(t, server.Exists("library:v0:manga:chapters:1"))

	_, err = cache.FindMangaBySlug(ctx, "title-01")
	require.NoError(t, err)
	assert.True(t, server.Exists("library:v1:manga:slug:title-01"))
}

/*
TestCachedRepository_RedisDown verifies reads fall through to the store.
*/
func TestCachedRepository_RedisDown(t *testing.T) {
	catalog := seedCatalog()
	cache, server := newCache(t, catalog)
	server.Close()

	list, err := cache.ListManga(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 23)

	cache.Invalidate(context.Background(), 1, "title-01")
}

/*
TestCachedRepository_MissesAreNotCached verifies NOT_FOUND is returned and retried.
*/
func TestCachedRepository_MissesAreNotCached(t *testing.T) {
	catalog := seedCatalog()
	cache, _ := newCache(t, catalog)
	ctx := context.Background()

	_, err := cache.FindMangaBySlug(ctx, "nope")
	assert.Error(t, err)
	_, err = cache.FindMangaBySlug(ctx, "nope")
	assert.Error(t, err)
	assert.Equal(t, 2, catalog.calls["FindMangaBySlug"])
}

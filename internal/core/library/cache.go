// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Aischii/mangaWebsite/internal/platform/constants"
)

// # Read-Through Cache

/*
CachedRepository decorates a [Repository] with a Redis read-through cache.

Every key carries the catalog version counter, so bumping the counter
retires all of them at once. Per-manga reads (lookup by slug, chapter list)
are additionally deleted by [CachedRepository.Invalidate] so they do not
linger until their TTL.

Redis failures are logged and the read falls through to the store, so the
cache can never make a page fail.
*/
type CachedRepository struct {
	Repository
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedRepository wraps next with a cache whose entries live for ttl.
func NewCachedRepository(next Repository, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{
		Repository: next,
		client:     client,
		ttl:        ttl,
		logger:     logger,
	}
}

// ListManga returns the cached manga list of the current catalog version.
func (cache *CachedRepository) ListManga(context context.Context) ([]Manga, error) {
	key := cache.versionedKey(context, "manga")
	return readThrough(context, cache, key, func() ([]Manga, error) {
		return cache.Repository.ListManga(context)
	})
}

// FindMangaBySlug returns the cached manga for slug.
func (cache *CachedRepository) FindMangaBySlug(context context.Context, slug string) (*Manga, error) {
	key := cache.versionedKey(context, constants.RedisPrefixMangaBySlug+slug)
	return readThrough(context, cache, key, func() (*Manga, error) {
		return cache.Repository.FindMangaBySlug(context, slug)
	})
}

// ListChapters returns the cached chapter list of one manga.
func (cache *CachedRepository) ListChapters(context context.Context, mangaID int64) ([]Chapter, error) {
	key := cache.versionedKey(context, constants.RedisPrefixChapterLists+strconv.FormatInt(mangaID, 10))
	return readThrough(context, cache, key, func() ([]Chapter, error) {
		return cache.Repository.ListChapters(context, mangaID)
	})
}

// ChapterCounts returns the cached per-manga chapter counts.
func (cache *CachedRepository) ChapterCounts(context context.Context) (map[int64]int, error) {
	key := cache.versionedKey(context, "counts")
	return readThrough(context, cache, key, func() (map[int64]int, error) {
		return cache.Repository.ChapterCounts(context)
	})
}

// LatestChapters returns the cached latest-chapters map.
func (cache *CachedRepository) LatestChapters(context context.Context, perManga int) (map[int64][]Chapter, error) {
	key := cache.versionedKey(context, "latest:"+strconv.Itoa(perManga))
	return readThrough(context, cache, key, func() (map[int64][]Chapter, error) {
		return cache.Repository.LatestChapters(context, perManga)
	})
}

/*
Invalidate retires every cache entry that can mention one manga.

Description: Deletes the per-manga entries for its id and every slug it has
had under the current version (pass both the old and the new slug after a
rename), then bumps the version. A reader that loaded the old row before the
bump writes it under the retired version, where nothing reads it again.
Failures are logged; entries then expire with their TTL.
*/
func (cache *CachedRepository) Invalidate(context context.Context, mangaID int64, slugs ...string) {
	var keys []string
	if key := cache.versionedKey(context, constants.RedisPrefixChapterLists+strconv.FormatInt(mangaID, 10)); key != "" {
		keys = append(keys, key)
	}
	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		if key := cache.versionedKey(context, constants.RedisPrefixMangaBySlug+slug); key != "" {
			keys = append(keys, key)
		}
	}

	if len(keys) > 0 {
		if err := cache.client.Del(context, keys...).Err(); err != nil {
			cache.logger.WarnContext(context, "library_cache_delete_failed",
				slog.Int64("manga_id", mangaID),
				slog.Any("error", err),
			)
		}
	}

	if err := cache.client.Incr(context, constants.RedisKeyCatalogVersion).Err(); err != nil {
		cache.logger.WarnContext(context, "library_cache_version_bump_failed", slog.Any("error", err))
	}
}

// versionedKey prefixes name with the current catalog version.
// An unreadable version yields a key that is never written, so reads bypass the cache.
func (cache *CachedRepository) versionedKey(context context.Context, name string) string {
	version, err := cache.client.Get(context, constants.RedisKeyCatalogVersion).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		cache.logger.WarnContext(context, "library_cache_version_read_failed", slog.Any("error", err))
		return ""
	}
	return fmt.Sprintf("%sv%d:%s", constants.RedisPrefixLibrary, version, name)
}

// readThrough serves key from Redis or fills it from load.
func readThrough[T any](context context.Context, cache *CachedRepository, key string, load func() (T, error)) (T, error) {
	if key == "" {
		return load()
	}

	if raw, err := cache.client.Get(context, key).Bytes(); err == nil {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		cache.logger.WarnContext(context, "library_cache_decode_failed", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		cache.logger.WarnContext(context, "library_cache_read_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return load()
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	if err := cache.client.Set(context, key, encoded, cache.ttl).Err(); err != nil {
		cache.logger.WarnContext(context, "library_cache_write_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
	return value, nil
}

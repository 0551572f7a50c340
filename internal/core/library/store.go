// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import "context"

// # Catalog Data Access

// Repository defines the read contract for the catalog.
//
// Missing rows are reported as NOT_FOUND; any other failure as
// STORAGE_UNAVAILABLE. Implementations never retry.
type Repository interface {

	// ListManga returns every manga ordered by title.
	ListManga(context context.Context) ([]Manga, error)

	// FindMangaByID returns one manga by primary key.
	FindMangaByID(context context.Context, id int64) (*Manga, error)

	// FindMangaBySlug returns one manga by its public slug.
	FindMangaBySlug(context context.Context, slug string) (*Manga, error)

	// ListChapters returns the chapters of a manga ordered by creation time,
	// then id, both ascending.
	ListChapters(context context.Context, mangaID int64) ([]Chapter, error)

	// FindChapterBySlug returns the chapter with the slug inside one manga.
	FindChapterBySlug(context context.Context, mangaID int64, slug string) (*Chapter, error)

	// FindChapterByID returns one chapter by primary key.
	FindChapterByID(context context.Context, id int64) (*Chapter, error)

	// ChapterCounts returns the number of chapters per manga id.
	// Manga without chapters are absent from the map.
	ChapterCounts(context context.Context) (map[int64]int, error)

	// LatestChapters returns, per manga id, the newest perManga chapters ordered
	// by creation time then id, both descending.
	LatestChapters(context context.Context, perManga int) (map[int64][]Chapter, error)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"context"

	"github.com/Aischii/mangaWebsite/internal/core/library"
)

// # Catalog Writes

// Repository defines the write contract for the catalog.
//
// Slug collisions are reported as CONFLICT, missing rows as NOT_FOUND.
type Repository interface {

	// CreateManga inserts the manga and fills in ID and CreatedAt.
	CreateManga(context context.Context, manga *library.Manga) error

	// UpdateManga writes every field of the manga. When the slug differs from
	// oldSlug, the stored page paths of its chapters are rewritten in the same
	// transaction. It returns the number of manga rows changed.
	UpdateManga(context context.Context, manga *library.Manga, oldSlug string) (int64, error)

	// DeleteManga removes the manga, its chapters, and every comment and
	// reaction attached to any of them.
	DeleteManga(context context.Context, id int64) error

	// CreateChapter inserts the chapter and fills in ID and CreatedAt.
	CreateChapter(context context.Context, chapter *library.Chapter) error

	// UpdateChapter writes title, slug, volume and pages of the chapter.
	UpdateChapter(context context.Context, chapter *library.Chapter) error

	// DeleteChapter removes the chapter and the comments and reactions
	// attached to it.
	DeleteChapter(context context.Context, id int64) error
}

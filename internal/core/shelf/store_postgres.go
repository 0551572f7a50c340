// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package shelf

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/database/schema"
	"github.com/Aischii/mangaWebsite/internal/platform/dberr"
)

// # Shelf Repository

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL shelf repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// AddBookmark inserts the bookmark, ignoring an existing one.
func (repository *PostgresRepository) AddBookmark(context context.Context, userID, mangaID int64) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s) VALUES ($1, $2)
		ON CONFLICT (%s, %s) DO NOTHING`,
		schema.Bookmarks.Table, schema.Bookmarks.UserID, schema.Bookmarks.MangaID,
		schema.Bookmarks.UserID, schema.Bookmarks.MangaID)

	if _, err := repository.pool.Exec(context, query, userID, mangaID); err != nil {
		return dberr.Wrap(err, "Manga")
	}
	return nil
}

// RemoveBookmark deletes the bookmark if present.
func (repository *PostgresRepository) RemoveBookmark(context context.Context, userID, mangaID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.Bookmarks.Table, schema.Bookmarks.UserID, schema.Bookmarks.MangaID)

	if _, err := repository.pool.Exec(context, query, userID, mangaID); err != nil {
		return dberr.Wrap(err, "Bookmark")
	}
	return nil
}

// IsBookmarked reports whether the bookmark exists.
func (repository *PostgresRepository) IsBookmarked(context context.Context, userID, mangaID int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.Bookmarks.Table, schema.Bookmarks.UserID, schema.Bookmarks.MangaID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, userID, mangaID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Bookmark")
	}
	return exists, nil
}

/*
ListBookmarks returns the user's bookmarks joined with the manga and the
last chapter read, most recently bookmarked first.
*/
func (repository *PostgresRepository) ListBookmarks(context context.Context, userID int64) ([]Bookmark, error) {
	b, m, p, c := schema.Bookmarks, schema.Manga, schema.ReadingProgress, schema.Chapters

	query := fmt.Sprintf(`
		SELECT m.%s, m.%s, m.%s, m.%s, m.%s, b.%s, c.%s, c.%s, c.%s
		FROM %s b
		JOIN %s m ON m.%s = b.%s
		LEFT JOIN %s p ON p.%s = b.%s AND p.%s = b.%s
		LEFT JOIN %s c ON c.%s = p.%s
		WHERE b.%s = $1
		ORDER BY b.%s DESC, m.%s DESC`,
		m.ID, m.Title, m.Slug, m.Cover, m.Rating, b.CreatedAt, c.ID, c.Title, c.Slug,
		b.Table,
		m.Table, m.ID, b.MangaID,
		p.Table, p.UserID, b.UserID, p.MangaID, b.MangaID,
		c.Table, c.ID, p.ChapterID,
		b.UserID,
		b.CreatedAt, m.ID,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Bookmark")
	}
	defer rows.Close()

	bookmarks := []Bookmark{}
	for rows.Next() {
		var bookmark Bookmark
		var chapterID *int64
		var chapterTitle, chapterSlug *string

		if err := rows.Scan(
			&bookmark.MangaID,
			&bookmark.Title,
			&bookmark.Slug,
			&bookmark.Cover,
			&bookmark.Rating,
			&bookmark.BookmarkedAt,
			&chapterID,
			&chapterTitle,
			&chapterSlug,
		); err != nil {
			return nil, dberr.Wrap(err, "Bookmark")
		}

		if chapterID != nil {
			bookmark.LastRead = &ChapterRef{ID: *chapterID, Title: *chapterTitle, Slug: *chapterSlug}
		}
		bookmarks = append(bookmarks, bookmark)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Bookmark")
	}
	return bookmarks, nil
}

/*
UpsertProgress records the reading position in one statement.

Description: The INSERT selects from chapters so that a chapter belonging to
another manga inserts nothing; ON CONFLICT overwrites the existing row for
(user, manga) instead of adding a second one.
*/
func (repository *PostgresRepository) UpsertProgress(context context.Context, userID, mangaID, chapterID int64) error {
	p, c := schema.ReadingProgress, schema.Chapters

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		SELECT $1, %s, %s, NOW() FROM %s WHERE %s = $3 AND %s = $2
		ON CONFLICT (%s, %s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		p.Table, p.UserID, p.MangaID, p.ChapterID, p.UpdatedAt,
		c.MangaID, c.ID, c.Table, c.ID, c.MangaID,
		p.UserID, p.MangaID,
		p.ChapterID, p.ChapterID, p.UpdatedAt, p.UpdatedAt,
	)

	tag, err := repository.pool.Exec(context, query, userID, mangaID, chapterID)
	if err != nil {
		return dberr.Wrap(err, "Chapter")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Chapter")
	}
	return nil
}

// FindProgress returns the position of the user in the manga.
func (repository *PostgresRepository) FindProgress(context context.Context, userID, mangaID int64) (*Progress, error) {
	p := schema.ReadingProgress
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1 AND %s = $2`,
		p.UserID, p.MangaID, p.ChapterID, p.UpdatedAt, p.Table, p.UserID, p.MangaID)

	progress := &Progress{}
	err := repository.pool.QueryRow(context, query, userID, mangaID).Scan(
		&progress.UserID,
		&progress.MangaID,
		&progress.ChapterID,
		&progress.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Reading progress")
	}
	return progress, nil
}

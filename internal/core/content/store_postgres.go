// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aischii/mangaWebsite/internal/core/library"
	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/database/schema"
	"github.com/Aischii/mangaWebsite/internal/platform/dberr"
	"github.com/Aischii/mangaWebsite/internal/social"
)

// # Catalog Writer

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL catalog writer.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Manga

// CreateManga inserts the manga and fills in ID and CreatedAt.
func (repository *PostgresRepository) CreateManga(context context.Context, manga *library.Manga) error {
	m := schema.Manga
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s, %s`,
		m.Table,
		m.Title, m.Slug, m.OtherTitle, m.Author, m.Artist,
		m.Genre, m.Status, m.Type, m.Synopsis, m.Cover, m.Rating,
		m.ID, m.CreatedAt)

	err := repository.pool.QueryRow(context, query, mangaArgs(manga)...).Scan(&manga.ID, &manga.CreatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return slugConflict(err, "manga")
		}
		return dberr.Wrap(err, "Manga")
	}
	return nil
}

/*
UpdateManga writes the manga row and, on a slug change, its chapters' page paths.

Description: Both writes run in one transaction so a reader never sees the
new slug with page paths still under the old folder.

Parameters:
  - context: context.Context
  - manga: *library.Manga (already carrying the new slug and cover path)
  - oldSlug: string

Returns:
  - int64: Manga rows changed (0 or 1)
  - error: CONFLICT on a taken slug, or a storage failure
*/
func (repository *PostgresRepository) UpdateManga(context context.Context, manga *library.Manga, oldSlug string) (int64, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return 0, dberr.Wrap(err, "Manga")
	}
	defer transaction.Rollback(context)

	m := schema.Manga
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6,
			%s = $7, %s = $8, %s = $9, %s = $10, %s = $11
		WHERE %s = $12`,
		m.Table,
		m.Title, m.Slug, m.OtherTitle, m.Author, m.Artist, m.Genre,
		m.Status, m.Type, m.Synopsis, m.Cover, m.Rating,
		m.ID)

	tag, err := transaction.Exec(context, query, append(mangaArgs(manga), manga.ID)...)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return 0, slugConflict(err, "manga")
		}
		return 0, dberr.Wrap(err, "Manga")
	}
	if tag.RowsAffected() == 0 {
		return 0, apperr.NotFound("Manga")
	}

	if manga.Slug != oldSlug {
		if err := rebaseChapterPages(context, transaction, manga.ID, oldSlug, manga.Slug); err != nil {
			return 0, err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return 0, dberr.Wrap(err, "Manga")
	}
	return tag.RowsAffected(), nil
}

// rebaseChapterPages moves every stored page path of a manga under its new slug.
func rebaseChapterPages(context context.Context, transaction pgx.Tx, mangaID int64, oldSlug, newSlug string) error {
	c := schema.Chapters
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`, c.ID, c.Pages, c.Table, c.MangaID)

	rows, err := transaction.Query(context, query, mangaID)
	if err != nil {
		return dberr.Wrap(err, "Chapter")
	}

	type pageSet struct {
		id    int64
		pages []string
	}
	var sets []pageSet
	for rows.Next() {
		var set pageSet
		var raw []byte
		if err := rows.Scan(&set.id, &raw); err != nil {
			rows.Close()
			return dberr.Wrap(err, "Chapter")
		}
		if err := json.Unmarshal(raw, &set.pages); err != nil {
			rows.Close()
			return apperr.Internal(fmt.Errorf("content: failed to decode pages of chapter %d: %w", set.id, err))
		}
		sets = append(sets, set)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return dberr.Wrap(err, "Chapter")
	}

	update := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`, c.Table, c.Pages, c.ID)
	for _, set := range sets {
		encoded, err := json.Marshal(RebasePaths(set.pages, oldSlug, newSlug))
		if err != nil {
			return apperr.Internal(err)
		}
		if _, err := transaction.Exec(context, update, encoded, set.id); err != nil {
			return dberr.Wrap(err, "Chapter")
		}
	}
	return nil
}

/*
DeleteManga removes a manga together with everything attached to it.

Description: Comments and reactions reference their target loosely, so they
are deleted explicitly in the same transaction: those on the manga, on its
chapters, and reactions on those comments. Chapters, bookmarks and reading
progress follow through ON DELETE CASCADE.
*/
func (repository *PostgresRepository) DeleteManga(context context.Context, id int64) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "Manga")
	}
	defer transaction.Rollback(context)

	c := schema.Chapters
	chapterIDs := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, c.ID, c.Table, c.MangaID)

	targets := fmt.Sprintf(`(
		(%[1]s = '%[3]s' AND %[2]s = $1) OR
		(%[1]s = '%[4]s' AND %[2]s IN (%[5]s))
	)`, schema.Comments.TargetType, schema.Comments.TargetID, social.TargetManga, social.TargetChapter, chapterIDs)

	if err := deleteAttached(context, transaction, targets, id); err != nil {
		return err
	}

	m := schema.Manga
	tag, err := transaction.Exec(context, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, m.Table, m.ID), id)
	if err != nil {
		return dberr.Wrap(err, "Manga")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Manga")
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "Manga")
	}
	return nil
}

// # Chapters

// CreateChapter inserts the chapter and fills in ID and CreatedAt.
func (repository *PostgresRepository) CreateChapter(context context.Context, chapter *library.Chapter) error {
	pages, err := json.Marshal(chapter.Pages)
	if err != nil {
		return apperr.Internal(err)
	}

	c := schema.Chapters
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s`,
		c.Table, c.MangaID, c.Title, c.Slug, c.Pages, c.Volume,
		c.ID, c.CreatedAt)

	err = repository.pool.QueryRow(context, query,
		chapter.MangaID,
		chapter.Title,
		chapter.Slug,
		pages,
		chapter.Volume,
	).Scan(&chapter.ID, &chapter.CreatedAt)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return slugConflict(err, "chapter")
		}
		return dberr.Wrap(err, "Chapter")
	}
	return nil
}

// UpdateChapter writes title, slug, volume and pages of the chapter.
func (repository *PostgresRepository) UpdateChapter(context context.Context, chapter *library.Chapter) error {
	pages, err := json.Marshal(chapter.Pages)
	if err != nil {
		return apperr.Internal(err)
	}

	c := schema.Chapters
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = $2, %s = $3, %s = $4
		WHERE %s = $5`,
		c.Table, c.Title, c.Slug, c.Volume, c.Pages,
		c.ID)

	tag, err := repository.pool.Exec(context, query, chapter.Title, chapter.Slug, chapter.Volume, pages, chapter.ID)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return slugConflict(err, "chapter")
		}
		return dberr.Wrap(err, "Chapter")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Chapter")
	}
	return nil
}

// DeleteChapter removes the chapter and the comments and reactions attached to it.
func (repository *PostgresRepository) DeleteChapter(context context.Context, id int64) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "Chapter")
	}
	defer transaction.Rollback(context)

	targets := fmt.Sprintf(`(%s = '%s' AND %s = $1)`,
		schema.Comments.TargetType, social.TargetChapter, schema.Comments.TargetID)

	if err := deleteAttached(context, transaction, targets, id); err != nil {
		return err
	}

	c := schema.Chapters
	tag, err := transaction.Exec(context, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, c.Table, c.ID), id)
	if err != nil {
		return dberr.Wrap(err, "Chapter")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Chapter")
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "Chapter")
	}
	return nil
}

// # Helpers

/*
deleteAttached removes comments and reactions matching a target predicate.

Description: The predicate is written against target_type/target_id and
takes its id as $1. Reactions go before the comments they point at: first
on comments about the matched comments, then on the matched comments, then
on the targets themselves. Replies follow their parent through parent_id.
*/
func deleteAttached(context context.Context, transaction pgx.Tx, targets string, id int64) error {
	for _, statement := range attachedStatements(targets) {
		if _, err := transaction.Exec(context, statement, id); err != nil {
			return dberr.Wrap(err, "Comment")
		}
	}
	return nil
}

func attachedStatements(targets string) []string {
	cm, r := schema.Comments, schema.Reactions

	commentIDs := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, cm.ID, cm.Table, targets)
	nestedIDs := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = '%s' AND %s IN (%s)`,
		cm.ID, cm.Table, cm.TargetType, social.TargetComment, cm.TargetID, commentIDs)

	return []string{
		fmt.Sprintf(`DELETE FROM %s WHERE %s = '%s' AND %s IN (%s)`,
			r.Table, r.TargetType, social.TargetComment, r.TargetID, nestedIDs),
		fmt.Sprintf(`DELETE FROM %s WHERE %s = '%s' AND %s IN (%s)`,
			r.Table, r.TargetType, social.TargetComment, r.TargetID, commentIDs),
		fmt.Sprintf(`DELETE FROM %s WHERE %s`, r.Table, targets),
		fmt.Sprintf(`DELETE FROM %s WHERE %s = '%s' AND %s IN (%s)`,
			cm.Table, cm.TargetType, social.TargetComment, cm.TargetID, commentIDs),
		fmt.Sprintf(`DELETE FROM %s WHERE %s`, cm.Table, targets),
	}
}

func mangaArgs(manga *library.Manga) []any {
	return []any{
		manga.Title,
		manga.Slug,
		manga.OtherTitle,
		manga.Author,
		manga.Artist,
		manga.Genre,
		manga.Status,
		manga.Type,
		manga.Synopsis,
		manga.Cover,
		manga.Rating,
	}
}

func slugConflict(cause error, resource string) error {
	conflict := apperr.Conflict(fmt.Sprintf("A %s with this title already exists", resource))
	conflict.Cause = cause
	return conflict
}

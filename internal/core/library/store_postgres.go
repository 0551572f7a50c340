// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aischii/mangaWebsite/internal/platform/database/schema"
	"github.com/Aischii/mangaWebsite/internal/platform/dberr"
)

// # Catalog Repository

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL catalog reader.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var (
	mangaColumns   = strings.Join(schema.Manga.Columns(), ", ")
	chapterColumns = strings.Join(schema.Chapters.Columns(), ", ")
)

// ScanManga maps one manga row in [schema.MangaTable.Columns] order.
func ScanManga(row pgx.Row) (*Manga, error) {
	manga := &Manga{}
	err := row.Scan(
		&manga.ID,
		&manga.Title,
		&manga.Slug,
		&manga.OtherTitle,
		&manga.Author,
		&manga.Artist,
		&manga.Genre,
		&manga.Status,
		&manga.Type,
		&manga.Synopsis,
		&manga.Cover,
		&manga.Rating,
		&manga.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return manga, nil
}

// ScanChapter maps one chapter row in [schema.ChaptersTable.Columns] order.
func ScanChapter(row pgx.Row) (*Chapter, error) {
	chapter := &Chapter{}
	var pages []byte

	err := row.Scan(
		&chapter.ID,
		&chapter.MangaID,
		&chapter.Title,
		&chapter.Slug,
		&pages,
		&chapter.Volume,
		&chapter.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(pages, &chapter.Pages); err != nil {
		return nil, fmt.Errorf("library: failed to decode pages of chapter %d: %w", chapter.ID, err)
	}
	chapter.Volume = NormalizeVolume(chapter.Volume)
	return chapter, nil
}

// ListManga returns every manga ordered by title.
func (repository *PostgresRepository) ListManga(context context.Context) ([]Manga, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s, %s`,
		mangaColumns, schema.Manga.Table, schema.Manga.Title, schema.Manga.ID)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "Manga")
	}
	defer rows.Close()

	var list []Manga
	for rows.Next() {
		manga, err := ScanManga(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Manga")
		}
		list = append(list, *manga)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Manga")
	}
	return list, nil
}

// FindMangaByID returns one manga by primary key.
func (repository *PostgresRepository) FindMangaByID(context context.Context, id int64) (*Manga, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		mangaColumns, schema.Manga.Table, schema.Manga.ID)

	manga, err := ScanManga(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Manga")
	}
	return manga, nil
}

// FindMangaBySlug returns one manga by its public slug.
func (repository *PostgresRepository) FindMangaBySlug(context context.Context, slug string) (*Manga, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		mangaColumns, schema.Manga.Table, schema.Manga.Slug)

	manga, err := ScanManga(repository.pool.QueryRow(context, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "Manga")
	}
	return manga, nil
}

/*
ListChapters returns the chapters of one manga in reading order.

Description: Ordered by created_at then id, both ascending, so chapters
inserted within the same instant keep their insertion order.
*/
func (repository *PostgresRepository) ListChapters(context context.Context, mangaID int64) ([]Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC, %s ASC`,
		chapterColumns, schema.Chapters.Table, schema.Chapters.MangaID,
		schema.Chapters.CreatedAt, schema.Chapters.ID)

	return repository.queryChapters(context, query, mangaID)
}

// FindChapterBySlug returns the chapter with the slug inside one manga.
func (repository *PostgresRepository) FindChapterBySlug(context context.Context, mangaID int64, slug string) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		chapterColumns, schema.Chapters.Table, schema.Chapters.MangaID, schema.Chapters.Slug)

	chapter, err := ScanChapter(repository.pool.QueryRow(context, query, mangaID, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}
	return chapter, nil
}

// FindChapterByID returns one chapter by primary key.
func (repository *PostgresRepository) FindChapterByID(context context.Context, id int64) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		chapterColumns, schema.Chapters.Table, schema.Chapters.ID)

	chapter, err := ScanChapter(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}
	return chapter, nil
}

// ChapterCounts returns the number of chapters per manga id.
func (repository *PostgresRepository) ChapterCounts(context context.Context) (map[int64]int, error) {
	query := fmt.Sprintf(`SELECT %s, COUNT(*) FROM %s GROUP BY %s`,
		schema.Chapters.MangaID, schema.Chapters.Table, schema.Chapters.MangaID)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var mangaID int64
		var count int
		if err := rows.Scan(&mangaID, &count); err != nil {
			return nil, dberr.Wrap(err, "Chapter")
		}
		counts[mangaID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}
	return counts, nil
}

/*
LatestChapters returns the newest chapters of every manga in one query.

Description: A ROW_NUMBER window partitioned by manga keeps the top perManga
rows, ordered by created_at then id, both descending.
*/
func (repository *PostgresRepository) LatestChapters(context context.Context, perManga int) (map[int64][]Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s FROM (
			SELECT %[1]s, ROW_NUMBER() OVER (
				PARTITION BY %[3]s ORDER BY %[4]s DESC, %[5]s DESC
			) AS position
			FROM %[2]s
		) ranked
		WHERE position <= $1
		ORDER BY %[3]s, position`,
		chapterColumns, schema.Chapters.Table, schema.Chapters.MangaID,
		schema.Chapters.CreatedAt, schema.Chapters.ID)

	chapters, err := repository.queryChapters(context, query, perManga)
	if err != nil {
		return nil, err
	}

	latest := make(map[int64][]Chapter)
	for _, chapter := range chapters {
		latest[chapter.MangaID] = append(latest[chapter.MangaID], chapter)
	}
	return latest, nil
}

func (repository *PostgresRepository) queryChapters(context context.Context, query string, args ...any) ([]Chapter, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}
	defer rows.Close()

	var chapters []Chapter
	for rows.Next() {
		chapter, err := ScanChapter(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Chapter")
		}
		chapters = append(chapters, *chapter)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}
	return chapters, nil
}

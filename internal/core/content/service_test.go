// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aischii/mangaWebsite/internal/core/content"
	"github.com/Aischii/mangaWebsite/internal/core/library"
	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/storage"
	"github.com/Aischii/mangaWebsite/pkg/pointer"
)

// # Test Doubles

// memoryCatalog serves both the read and the write contract over one map,
// with unique slugs enforced like the table constraints.
type memoryCatalog struct {
	mu         sync.Mutex
	manga      map[int64]library.Manga
	chapters   map[int64]library.Chapter
	nextID     int64
	failWrites error
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{manga: map[int64]library.Manga{}, chapters: map[int64]library.Chapter{}}
}

func (m *memoryCatalog) ListManga(context.Context) ([]library.Manga, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []library.Manga{}
	for _, manga := range m.manga {
		out = append(out, manga)
	}
	return out, nil
}

func (m *memoryCatalog) FindMangaByID(_ context.Context, id int64) (*library.Manga, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	manga, ok := m.manga[id]
	if !ok {
		return nil, apperr.NotFound("Manga")
	}
	return &manga, nil
}

func (m *memoryCatalog) FindMangaBySlug(_ context.Context, slug string) (*library.Manga, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, manga := range m.manga {
		if manga.Slug == slug {
			return &manga, nil
		}
	}
	return nil, apperr.NotFound("Manga")
}

func (m *memoryCatalog) ListChapters(_ context.Context, mangaID int64) ([]library.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []library.Chapter{}
	for _, chapter := range m.chapters {
		if chapter.MangaID == mangaID {
			out = append(out, chapter)
		}
	}
	return out, nil
}

func (m *memoryCatalog) FindChapterBySlug(_ context.Context, mangaID int64, slug string) (*library.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chapter := range m.chapters {
		if chapter.MangaID == mangaID && chapter.Slug == slug {
			return &chapter, nil
		}
	}
	return nil, apperr.NotFound("Chapter")
}

func (m *memoryCatalog) FindChapterByID(_ context.Context, id int64) (*library.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chapter, ok := m.chapters[id]
	if !ok {
		return nil, apperr.NotFound("Chapter")
	}
	return &chapter, nil
}

func (m *memoryCatalog) ChapterCounts(context.Context) (map[int64]int, error) {
	return map[int64]int{}, nil
}

func (m *memoryCatalog) LatestChapters(context.Context, int) (map[int64][]library.Chapter, error) {
	return map[int64][]library.Chapter{}, nil
}

func (m *memoryCatalog) CreateManga(_ context.Context, manga *library.Manga) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	m.nextID++
	manga.ID = m.nextID
	manga.CreatedAt = time.Now()
	m.manga[manga.ID] = *manga
	return nil
}

func (m *memoryCatalog) UpdateManga(_ context.Context, manga *library.Manga, oldSlug string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return 0, m.failWrites
	}
	m.manga[manga.ID] = *manga
	if manga.Slug != oldSlug {
		for id, chapter := range m.chapters {
			if chapter.MangaID == manga.ID {
				chapter.Pages = content.RebasePaths(chapter.Pages, oldSlug, manga.Slug)
				m.chapters[id] = chapter
			}
		}
	}
	return 1, nil
}

func (m *memoryCatalog) DeleteManga(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.manga, id)
	for chapterID, chapter := range m.chapters {
		if chapter.MangaID == id {
			delete(m.chapters, chapterID)
		}
	}
	return nil
}

func (m *memoryCatalog) CreateChapter(_ context.Context, chapter *library.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	m.nextID++
	chapter.ID = m.nextID
	chapter.CreatedAt = time.Now()
	m.chapters[chapter.ID] = *chapter
	return nil
}

func (m *memoryCatalog) UpdateChapter(_ context.Context, chapter *library.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	m.chapters[chapter.ID] = *chapter
	return nil
}

func (m *memoryCatalog) DeleteChapter(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chapters, id)
	return nil
}

type recordingOptimizer struct{ paths []string }

func (r *recordingOptimizer) Optimize(_ context.Context, paths []string) {
	r.paths = append(r.paths, paths...)
}

type recordingCache struct{ slugs []string }

func (r *recordingCache) Invalidate(_ context.Context, _ int64, slugs ...string) {
	r.slugs = append(r.slugs, slugs...)
}

type fixture struct {
	catalog   *memoryCatalog
	disk      *storage.Disk
	optimizer *recordingOptimizer
	cache     *recordingCache
	service   *content.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	disk, err := storage.NewDisk(t.TempDir(), "/media")
	require.NoError(t, err)

	f := &fixture{
		catalog:   newMemoryCatalog(),
		disk:      disk,
		optimizer: &recordingOptimizer{},
		cache:     &recordingCache{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = content.NewService(f.catalog, f.catalog, disk, f.optimizer, f.cache, logger)
	return f
}

func source(name string) storage.Source {
	return storage.Source{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("image:" + name)), nil },
	}
}

func pointerTo(s string) *string { return pointer.To(s) }

// # Manga Tests

/*
TestCreateManga verifies slug derivation, cover storage, and the duplicate check.
*/
func TestCreateManga(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cover := source("Cover.PNG")
	manga, err := f.service.CreateManga(ctx, content.MangaInput{Title: "  One  Piece ", Rating: "18+", Cover: &cover})
	require.NoError(t, err)

	assert.Equal(t, "One  Piece", manga.Title)
	assert.Equal(t, "one-piece", manga.Slug)
	assert.Equal(t, "one-piece/cover.png", manga.Cover)
	assert.FileExists(t, f.disk.Abs(manga.Cover))
	assert.Equal(t, []string{f.disk.Abs(manga.Cover)}, f.optimizer.paths)
	assert.Contains(t, f.cache.slugs, "one-piece")

	_, err = f.service.CreateManga(ctx, content.MangaInput{Title: "ONE PIECE"})
	assert.True(t, apperr.IsConflict(err))

	tests := []struct {
		name  string
		input content.MangaInput
	}{
		{"blank_title", content.MangaInput{Title: "   "}},
		{"bad_rating", content.MangaInput{Title: "Berserk", Rating: "PG"}},
		{"reserved_slug", content.MangaInput{Title: "_avatars"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateManga(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, apperr.CodeValidation, apperr.As(err).Code)
		})
	}
}

/*
TestCreateManga_InsertFailureRemovesCover verifies no file is left behind by a failed insert.
*/
func TestCreateManga_InsertFailureRemovesCover(t *testing.T) {
	f := newFixture(t)
	f.catalog.failWrites = apperr.StorageUnavailable(errors.New("db down"))

	cover := source("cover.jpg")
	_, err := f.service.CreateManga(context.Background(), content.MangaInput{Title: "Berserk", Cover: &cover})
	require.Error(t, err)

	assert.NoFileExists(t, f.disk.Abs("berserk/cover.jpg"))
}

/*
TestUpdateManga_Rename verifies folder, cover, and page paths move together.
*/
func TestUpdateManga_Rename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cover := source("cover.jpg")
	manga, err := f.service.CreateManga(ctx, content.MangaInput{Title: "Berserk", Cover: &cover})
	require.NoError(t, err)
	chapter, err := f.service.CreateChapter(ctx, manga.ID, content.ChapterInput{
		Title: "Chapter 1",
		Pages: []storage.Source{source("a.jpg"), source("b.jpg")},
	})
	require.NoError(t, err)

	updated, err := f.service.UpdateManga(ctx, manga.ID, content.MangaPatch{Title: pointerTo("Berserk Deluxe")})
	require.NoError(t, err)
	assert.Equal(t, "berserk-deluxe", updated.Slug)
	assert.Equal(t, "berserk-deluxe/cover.jpg", updated.Cover)
	assert.FileExists(t, f.disk.Abs(updated.Cover))
	assert.NoDirExists(t, f.disk.Abs("berserk"))

	stored, err := f.catalog.FindChapterByID(ctx, chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"berserk-deluxe/chapter-1/001.jpg", "berserk-deluxe/chapter-1/002.jpg"}, stored.Pages)
	for _, page := range stored.Pages {
		assert.FileExists(t, f.disk.Abs(page))
	}
	assert.Contains(t, f.cache.slugs, "berserk")
	assert.Contains(t, f.cache.slugs, "berserk-deluxe")
}

/*
TestUpdateManga_RenameRollback verifies the folder moves back when the catalog write fails.
*/
func TestUpdateManga_RenameRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cover := source("cover.jpg")
	manga, err := f.service.CreateManga(ctx, content.MangaInput{Title: "Berserk", Cover: &cover})
	require.NoError(t, err)

	f.catalog.failWrites = apperr.StorageUnavailable(errors.New("db down"))
	_, err = f.service.UpdateManga(ctx, manga.ID, content.MangaPatch{Title: pointerTo("Vagabond")})
	require.Error(t, err)

	assert.FileExists(t, f.disk.Abs("berserk/cover.jpg"))
	assert.NoDirExists(t, f.disk.Abs("vagabond"))
}

/*
TestUpdateManga_CoverReplacement verifies the current cover survives a failed
update and is only removed once the row points at the new one.
*/
func TestUpdateManga_CoverReplacement(t *testing.T) {
	tests := []struct {
		name      string
		title     *string
		cover     string
		wantCover string
	}{
		{"other_extension", nil, "b.jpg", "berserk/cover.jpg"},
		{"same_extension", nil, "b.png", "berserk/cover-2.png"},
		{"with_rename", pointerTo("Vagabond"), "b.jpg", "vagabond/cover.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			// Failed update: catalog and disk stay as they were
			f := newFixture(t)
			original := source("a.png")
			manga, err := f.service.CreateManga(ctx, content.MangaInput{Title: "Berserk", Cover: &original})
			require.NoError(t, err)
			require.Equal(t, "berserk/cover.png", manga.Cover)

			f.catalog.failWrites = apperr.StorageUnavailable(errors.New("db down"))
			replacement := source(tt.cover)
			_, err = f.service.UpdateManga(ctx, manga.ID, content.MangaPatch{Title: tt.title, Cover: &replacement})
			require.Error(t, err)

			stored, err := f.catalog.FindMangaByID(ctx, manga.ID)
			require.NoError(t, err)
			assert.Equal(t, "berserk/cover.png", stored.Cover)
			assert.FileExists(t, f.disk.Abs(stored.Cover))
			assert.NoFileExists(t, f.disk.Abs(tt.wantCover))
			assert.NoDirExists(t, f.disk.Abs("vagabond"))

			// Successful update: new cover in place, old one gone
			f.catalog.failWrites = nil
			updated, err := f.service.UpdateManga(ctx, manga.ID, content.MangaPatch{Title: tt.title, Cover: &replacement})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCover, updated.Cover)

			data, err := os.ReadFile(f.disk.Abs(updated.Cover))
			require.NoError(t, err)
			assert.Equal(t, "image:"+tt.cover, string(data))

			entries, err := os.ReadDir(filepath.Dir(f.disk.Abs(updated.Cover)))
			require.NoError(t, err)
			var covers []string
			for _, entry := range entries {
				if !entry.IsDir() {
					covers = append(covers, entry.Name())
				}
			}
			assert.Equal(t, []string{filepath.Base(tt.wantCover)}, covers)
		})
	}
}

/*
TestUpdateManga_Conflict verifies renaming onto another manga's slug is refused before any move.
*/
func TestUpdateManga_Conflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.CreateManga(ctx, content.MangaInput{Title: "Berserk"})
	require.NoError(t, err)
	_, err = f.service.CreateManga(ctx, content.MangaInput{Title: "Vagabond"})
	require.NoError(t, err)

	_, err = f.service.UpdateManga(ctx, first.ID, content.MangaPatch{Title: pointerTo("vagabond")})
	assert.True(t, apperr.IsConflict(err))

	same, err := f.service.UpdateManga(ctx, first.ID, content.MangaPatch{Synopsis: pointerTo("Guts.")})
	require.NoError(t, err)
	assert.Equal(t, "berserk", same.Slug)
	assert.Equal(t, "Guts.", same.Synopsis)
}

/*
TestDeleteManga verifies the row and folder are removed.
*/
func TestDeleteManga(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	manga, err := f.service.CreateManga(ctx, content.MangaInput{Title: "Berserk"})
	require.NoError(t, err)
	_, err = f.service.CreateChapter(ctx, manga.ID, content.ChapterInput{Title: "1", Pages: []storage.Source{source("p.jpg")}})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteManga(ctx, manga.ID))
	assert.Empty(t, f.catalog.manga)
	assert.Empty(t, f.catalog.chapters)
	assert.NoDirExists(t, f.disk.Abs("berserk"))

	assert.True(t, apperr.IsNotFound(f.service.DeleteManga(ctx, manga.ID)))
}

// # Chapter Tests

/*
TestCreateChapter verifies validation, duplicate titles, and page order.
*/
func TestCreateChapter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	manga, err := f.service.CreateManga(ctx, content.MangaInput{Title: "Berserk"})
	require.NoError(t, err)

	chapter, err := f.service.CreateChapter(ctx, manga.ID, content.ChapterInput{
		Title: "The Black Swordsman",
		Pages: []storage.Source{source("z.png"), source("a.jpg")},
	})
	require.NoError(t, err)
	assert.Equal(t, "the-black-swordsman", chapter.Slug)
	assert.Equal(t, "Unknown Volume", chapter.Volume)
	assert.Equal(t, []string{"berserk/the-black-swordsman/001.png", "berserk/the-black-swordsman/002.jpg"}, chapter.Pages)
	assert.Len(t, f.optimizer.paths, 2)

	_, err = f.service.CreateChapter(ctx, manga.ID, content.ChapterInput{Title: "the black  swordsman", Pages: []storage.Source{source("a.jpg")}})
	assert.True(t, apperr.IsConflict(err))

	_, err = f.service.CreateChapter(ctx, manga.ID, content.ChapterInput{Title: " ", Pages: []storage.Source{source("a.jpg")}})
	assert.Equal(t, apperr.CodeValidation, apperr.As(err).Code)

	_, err = f.service.CreateChapter(ctx, manga.ID, content.ChapterInput{Title: "Notes", Pages: []storage.Source{source("notes.txt")}})
	assert.Equal(t, apperr.CodeValidation, apperr.As(err).Code)
	assert.NoDirExists(t, f.disk.Abs("berserk/notes"))

	_, err = f.service.CreateChapter(ctx, 999, content.ChapterInput{Title: "x", Pages: []storage.Source{source("a.jpg")}})
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestCreateChapter_InsertFailureRemovesFolder verifies no orphaned page folder survives a failed insert.
*/
func TestCreateChapter_InsertFailureRemovesFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	manga, err := f.service.CreateManga(ctx, content.MangaInput{Title: "Berserk"})
	require.NoError(t, err)

	f.catalog.failWrites = apperr.StorageUnavailable(errors.New("db down"))
	_, err = f.service.CreateChapter(ctx, manga.ID, content.ChapterInput{Title: "1", Pages: []storage.Source{source("a.jpg")}})
	require.Error(t, err)

	assert.NoDirExists(t, f.disk.Abs("berserk/1"))
}

/*
TestUpdateAndDeleteChapter verifies the chapter folder follows the title.
*/
func TestUpdateAndDeleteChapter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	manga, err := f.service.CreateManga(ctx, content.MangaInput{Title: "Berserk"})
	require.NoError(t, err)
	chapter, err := f.service.CreateChapter(ctx, manga.ID, content.ChapterInput{Title: "Draft", Pages: []storage.Source{source("a.jpg")}})
	require.NoError(t, err)

	updated, err := f.service.UpdateChapter(ctx, chapter.ID, content.ChapterPatch{Title: pointerTo("Chapter 1"), Volume: pointerTo("1")})
	require.NoError(t, err)
	assert.Equal(t, "chapter-1", updated.Slug)
	assert.Equal(t, "1", updated.Volume)
	assert.Equal(t, []string{"berserk/chapter-1/001.jpg"}, updated.Pages)
	assert.FileExists(t, f.disk.Abs(updated.Pages[0]))

	require.NoError(t, f.service.DeleteChapter(ctx, chapter.ID))
	assert.NoDirExists(t, f.disk.Abs("berserk/chapter-1"))
	assert.Empty(t, f.catalog.chapters)
}

// # Maintenance Tests

/*
TestImport verifies folders become rows once, with pages in natural order.
*/
func TestImport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.disk.Root()
	for _, name := range []string{"page10.jpg", "page2.jpg", "page1.jpg"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "vinland-saga", "chapter-1"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "vinland-saga", "chapter-1", name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vinland-saga", "empty"), 0o755))

	folders, err := f.disk.Scan()
	require.NoError(t, err)

	report, err := f.service.Import(ctx, folders)
	require.NoError(t, err)
	assert.Equal(t, content.ImportReport{MangaCreated: 1, ChaptersCreated: 1, Skipped: 1}, report)

	manga, err := f.catalog.FindMangaBySlug(ctx, "vinland-saga")
	require.NoError(t, err)
	assert.Equal(t, "Vinland Saga", manga.Title)

	chapter, err := f.catalog.FindChapterBySlug(ctx, manga.ID, "chapter-1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"vinland-saga/chapter-1/page1.jpg",
		"vinland-saga/chapter-1/page2.jpg",
		"vinland-saga/chapter-1/page10.jpg",
	}, chapter.Pages)

	again, err := f.service.Import(ctx, folders)
	require.NoError(t, err)
	assert.Equal(t, content.ImportReport{Skipped: 2}, again)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package shelf_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aischii/mangaWebsite/internal/core/shelf"
	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/ctxutil"
	"github.com/Aischii/mangaWebsite/internal/platform/sec"
)

// # Test Doubles

type pair struct{ user, manga int64 }

// memoryShelf mirrors the table constraints: chapters belong to one manga,
// progress is keyed by (user, manga).
type memoryShelf struct {
	mu           sync.Mutex
	chapterOwner map[int64]int64
	knownManga   map[int64]bool
	bookmarks    map[pair]time.Time
	progress     map[pair]shelf.Progress
}

func newMemoryShelf() *memoryShelf {
	return &memoryShelf{
		chapterOwner: map[int64]int64{101: 1, 102: 1, 201: 2},
		knownManga:   map[int64]bool{1: true, 2: true},
		bookmarks:    map[pair]time.Time{},
		progress:     map[pair]shelf.Progress{},
	}
}

func (m *memoryShelf) AddBookmark(_ context.Context, userID, mangaID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.knownManga[mangaID] {
		return apperr.NotFound("Manga")
	}
	if _, ok := m.bookmarks[pair{userID, mangaID}]; !ok {
		m.bookmarks[pair{userID, mangaID}] = time.Now()
	}
	return nil
}

func (m *memoryShelf) RemoveBookmark(_ context.Context, userID, mangaID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bookmarks, pair{userID, mangaID})
	return nil
}

func (m *memoryShelf) IsBookmarked(_ context.Context, userID, mangaID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.bookmarks[pair{userID, mangaID}]
	return ok, nil
}

func (m *memoryShelf) ListBookmarks(_ context.Context, userID int64) ([]shelf.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []shelf.Bookmark{}
	for key, at := range m.bookmarks {
		if key.user == userID {
			out = append(out, shelf.Bookmark{MangaID: key.manga, Cover: "cover.jpg", BookmarkedAt: at})
		}
	}
	return out, nil
}

func (m *memoryShelf) UpsertProgress(_ context.Context, userID, mangaID, chapterID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chapterOwner[chapterID] != mangaID {
		return apperr.NotFound("Chapter")
	}
	m.progress[pair{userID, mangaID}] = shelf.Progress{UserID: userID, MangaID: mangaID, ChapterID: chapterID, UpdatedAt: time.Now()}
	return nil
}

func (m *memoryShelf) FindProgress(_ context.Context, userID, mangaID int64) (*shelf.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	progress, ok := m.progress[pair{userID, mangaID}]
	if !ok {
		return nil, apperr.NotFound("Reading progress")
	}
	return &progress, nil
}

type prefixURLs string

func (p prefixURLs) URL(relative string) string { return string(p) + "/" + relative }

func newService(repository shelf.Repository) *shelf.Service {
	return shelf.NewService(repository, prefixURLs("/media"), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// # Tests

/*
TestBookmarks verifies set/clear idempotence and unknown manga.
*/
func TestBookmarks(t *testing.T) {
	repository := newMemoryShelf()
	service := newService(repository)
	ctx := context.Background()

	require.NoError(t, service.SetBookmark(ctx, 7, 1))
	require.NoError(t, service.SetBookmark(ctx, 7, 1))
	assert.Len(t, repository.bookmarks, 1)

	list, err := service.ListBookmarks(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "/media/cover.jpg", list[0].CoverURL)

	require.NoError(t, service.ClearBookmark(ctx, 7, 1))
	require.NoError(t, service.ClearBookmark(ctx, 7, 1), "clearing twice is not an error")

	assert.True(t, apperr.IsNotFound(service.SetBookmark(ctx, 7, 99)))
	assert.Equal(t, apperr.CodeValidation, apperr.As(service.SetBookmark(ctx, 7, 0)).Code)
}

/*
TestToggleBookmark verifies the toggle alternates state.
*/
func TestToggleBookmark(t *testing.T) {
	service := newService(newMemoryShelf())
	ctx := context.Background()

	state, err := service.ToggleBookmark(ctx, 7, 2)
	require.NoError(t, err)
	assert.True(t, state)

	state, err = service.ToggleBookmark(ctx, 7, 2)
	require.NoError(t, err)
	assert.False(t, state)
}

/*
TestSetReadingProgress verifies the single-row overwrite and the ownership check.
*/
func TestSetReadingProgress(t *testing.T) {
	repository := newMemoryShelf()
	service := newService(repository)
	ctx := context.Background()

	last, err := service.LastReadChapter(ctx, 7, 1)
	require.NoError(t, err)
	assert.Zero(t, last)

	require.NoError(t, service.SetReadingProgress(ctx, 7, 1, 101))
	require.NoError(t, service.SetReadingProgress(ctx, 7, 1, 102))
	assert.Len(t, repository.progress, 1)

	progress, err := service.GetProgress(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(102), progress.ChapterID)

	err = service.SetReadingProgress(ctx, 7, 1, 201)
	assert.True(t, apperr.IsNotFound(err), "chapter of another manga")

	err = service.SetReadingProgress(ctx, 7, 0, 101)
	assert.Equal(t, apperr.CodeValidation, apperr.As(err).Code)
}

/*
TestHandler_Toggle verifies the browser flow and the auth guard.
*/
func TestHandler_Toggle(t *testing.T) {
	handler := shelf.NewHandler(newService(newMemoryShelf()))
	router := chi.NewRouter()
	router.Mount("/", handler.Routes())

	anonymous := httptest.NewRecorder()
	router.ServeHTTP(anonymous, httptest.NewRequest(http.MethodPost, "/bookmarks/1/toggle", nil))
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	request := httptest.NewRequest(http.MethodPost, "/bookmarks/1/toggle", nil)
	request.Header.Set("Accept", "text/html")
	request.Header.Set("Referer", "/manga/one-piece")
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: 7, Role: "user"}))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/manga/one-piece", recorder.Header().Get("Location"))
}

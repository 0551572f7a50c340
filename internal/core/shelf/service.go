// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package shelf

import (
	"context"
	"log/slog"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/validate"
)

// AssetURLs resolves stored relative paths to public URLs.
type AssetURLs interface {
	URL(relative string) string
}

// # Service Layer

// Service implements bookmark and reading-progress use cases.
type Service struct {
	repository Repository
	assets     AssetURLs
	logger     *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repository Repository, assets AssetURLs, logger *slog.Logger) *Service {
	return &Service{repository: repository, assets: assets, logger: logger}
}

// # Bookmarks

// SetBookmark bookmarks a manga. It is idempotent.
func (service *Service) SetBookmark(context context.Context, userID, mangaID int64) error {
	if err := validateIDs(mangaID); err != nil {
		return err
	}
	return service.repository.AddBookmark(context, userID, mangaID)
}

// ClearBookmark removes a bookmark. Clearing a missing bookmark succeeds.
func (service *Service) ClearBookmark(context context.Context, userID, mangaID int64) error {
	if err := validateIDs(mangaID); err != nil {
		return err
	}
	return service.repository.RemoveBookmark(context, userID, mangaID)
}

// ToggleBookmark flips the bookmark and returns the new state.
func (service *Service) ToggleBookmark(context context.Context, userID, mangaID int64) (bool, error) {
	bookmarked, err := service.IsBookmarked(context, userID, mangaID)
	if err != nil {
		return false, err
	}

	if bookmarked {
		return false, service.ClearBookmark(context, userID, mangaID)
	}
	return true, service.SetBookmark(context, userID, mangaID)
}

// IsBookmarked reports whether the user bookmarked the manga.
func (service *Service) IsBookmarked(context context.Context, userID, mangaID int64) (bool, error) {
	return service.repository.IsBookmarked(context, userID, mangaID)
}

// ListBookmarks returns the user's bookmarks with cover URLs resolved.
func (service *Service) ListBookmarks(context context.Context, userID int64) ([]Bookmark, error) {
	bookmarks, err := service.repository.ListBookmarks(context, userID)
	if err != nil {
		return nil, err
	}

	for i := range bookmarks {
		bookmarks[i].CoverURL = service.assets.URL(bookmarks[i].Cover)
	}
	return bookmarks, nil
}

// # Reading Progress

/*
SetReadingProgress records chapterID as the user's position in mangaID.

Description: Always overwrites; the store performs it as one upsert so
concurrent chapter opens cannot produce two rows.

Returns:
  - error: NOT_FOUND when the chapter does not belong to the manga
*/
func (service *Service) SetReadingProgress(context context.Context, userID, mangaID, chapterID int64) error {
	validator := &validate.Validator{}
	validator.Positive(FieldMangaID, mangaID).Positive(FieldChapterID, chapterID)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repository.UpsertProgress(context, userID, mangaID, chapterID); err != nil {
		return err
	}

	service.logger.DebugContext(context, "reading_progress_recorded",
		slog.Int64("user_id", userID),
		slog.Int64("manga_id", mangaID),
		slog.Int64("chapter_id", chapterID),
	)
	return nil
}

// GetProgress returns the user's position in the manga, or NOT_FOUND.
func (service *Service) GetProgress(context context.Context, userID, mangaID int64) (*Progress, error) {
	return service.repository.FindProgress(context, userID, mangaID)
}

// LastReadChapter returns the chapter id of the user's position, or 0 when none.
func (service *Service) LastReadChapter(context context.Context, userID, mangaID int64) (int64, error) {
	progress, err := service.repository.FindProgress(context, userID, mangaID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return progress.ChapterID, nil
}

func validateIDs(mangaID int64) error {
	validator := &validate.Validator{}
	validator.Positive(FieldMangaID, mangaID)
	return validator.Err()
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/Aischii/mangaWebsite/internal/core/library"
	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/constants"
	"github.com/Aischii/mangaWebsite/internal/platform/imageopt"
	"github.com/Aischii/mangaWebsite/internal/platform/storage"
	"github.com/Aischii/mangaWebsite/internal/platform/validate"
	"github.com/Aischii/mangaWebsite/pkg/natsort"
	"github.com/Aischii/mangaWebsite/pkg/pointer"
)

// # Collaborators

// Files is the on-disk half of the catalog.
type Files interface {
	Abs(relative string) string
	WriteCover(mangaSlug string, source storage.Source) (string, error)
	WritePages(mangaSlug, chapterSlug string, pages []storage.Source) ([]string, error)
	RenameManga(oldSlug, newSlug string) error
	RenameChapter(mangaSlug, oldSlug, newSlug string) error
	RemoveManga(mangaSlug string) error
	RemoveChapter(mangaSlug, chapterSlug string) error
	RemoveFile(relative string) error
}

// Invalidator retires cached catalog reads after a mutation.
type Invalidator interface {
	Invalidate(context context.Context, mangaID int64, slugs ...string)
}

// # Service Layer

// Service implements the admin catalog mutations.
type Service struct {
	repository Repository
	catalog    library.Repository
	files      Files
	optimizer  imageopt.Optimizer
	cache      Invalidator
	logger     *slog.Logger
}

// NewService constructs a new [Service].
//
// catalog must read straight from the store, not through the cache, so
// uniqueness checks never see stale rows.
func NewService(repository Repository, catalog library.Repository, files Files, optimizer imageopt.Optimizer, cache Invalidator, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		catalog:    catalog,
		files:      files,
		optimizer:  optimizer,
		cache:      cache,
		logger:     logger,
	}
}

// # Manga

/*
CreateManga adds a manga with an optional cover.

Description: The slug is derived from the title and must be free. The cover
is written first; if the row insert then fails the cover is removed again.

Returns:
  - *library.Manga: The stored manga
  - error: VALIDATION_ERROR, CONFLICT, or STORAGE_UNAVAILABLE
*/
func (service *Service) CreateManga(context context.Context, input MangaInput) (*library.Manga, error) {
	manga := &library.Manga{
		Title:      strings.TrimSpace(input.Title),
		OtherTitle: strings.TrimSpace(input.OtherTitle),
		Author:     strings.TrimSpace(input.Author),
		Artist:     strings.TrimSpace(input.Artist),
		Genre:      strings.TrimSpace(input.Genre),
		Status:     strings.TrimSpace(input.Status),
		Type:       strings.TrimSpace(input.Type),
		Synopsis:   strings.TrimSpace(input.Synopsis),
		Rating:     strings.TrimSpace(input.Rating),
	}
	if err := validateManga(manga); err != nil {
		return nil, err
	}

	mangaSlug, err := slugFor(manga.Title)
	if err != nil {
		return nil, err
	}
	manga.Slug = mangaSlug

	if err := service.requireFreeMangaSlug(context, mangaSlug, 0); err != nil {
		return nil, err
	}

	if input.Cover != nil {
		cover, err := service.files.WriteCover(mangaSlug, *input.Cover)
		if err != nil {
			return nil, storageError(err, FieldCover)
		}
		manga.Cover = cover
	}

	if err := service.repository.CreateManga(context, manga); err != nil {
		if manga.Cover != "" {
			service.discard(context, "cover", service.files.RemoveFile(manga.Cover))
		}
		return nil, err
	}

	service.optimize(context, manga.Cover)
	service.cache.Invalidate(context, manga.ID, manga.Slug)

	service.logger.InfoContext(context, "manga_created",
		slog.Int64("manga_id", manga.ID),
		slog.String("slug", manga.Slug),
	)
	return manga, nil
}

/*
UpdateManga changes manga fields, renaming its folder when the title changes.

Description: On a slug change the folder is moved first, then the row,
cover path and every stored page path are rewritten in one transaction. If
that transaction fails the folder is moved back. A replacement cover is
written under a fresh name; the old file is removed only after the row
points at the new one, and the new file is removed if the update fails.

Returns:
  - *library.Manga: The updated manga
  - error: NOT_FOUND, VALIDATION_ERROR, CONFLICT, or STORAGE_UNAVAILABLE
*/
func (service *Service) UpdateManga(context context.Context, id int64, patch MangaPatch) (*library.Manga, error) {
	current, err := service.catalog.FindMangaByID(context, id)
	if err != nil {
		return nil, err
	}

	manga := *current
	manga.Title = strings.TrimSpace(pointer.Fallback(patch.Title, manga.Title))
	manga.OtherTitle = strings.TrimSpace(pointer.Fallback(patch.OtherTitle, manga.OtherTitle))
	manga.Author = strings.TrimSpace(pointer.Fallback(patch.Author, manga.Author))
	manga.Artist = strings.TrimSpace(pointer.Fallback(patch.Artist, manga.Artist))
	manga.Genre = strings.TrimSpace(pointer.Fallback(patch.Genre, manga.Genre))
	manga.Status = strings.TrimSpace(pointer.Fallback(patch.Status, manga.Status))
	manga.Type = strings.TrimSpace(pointer.Fallback(patch.Type, manga.Type))
	manga.Synopsis = strings.TrimSpace(pointer.Fallback(patch.Synopsis, manga.Synopsis))
	manga.Rating = strings.TrimSpace(pointer.Fallback(patch.Rating, manga.Rating))

	if err := validateManga(&manga); err != nil {
		return nil, err
	}

	newSlug, err := slugFor(manga.Title)
	if err != nil {
		return nil, err
	}

	oldSlug := current.Slug
	renamed := newSlug != oldSlug
	if renamed {
		if err := service.requireFreeMangaSlug(context, newSlug, id); err != nil {
			return nil, err
		}
		if err := service.files.RenameManga(oldSlug, newSlug); err != nil {
			return nil, storageError(err, FieldTitle)
		}
		manga.Slug = newSlug
		manga.Cover = RebasePath(manga.Cover, oldSlug, newSlug)
	}

	previousCover := manga.Cover
	if patch.Cover != nil {
		cover, err := service.files.WriteCover(manga.Slug, *patch.Cover)
		if err != nil {
			service.rollbackRename(context, renamed, func() error { return service.files.RenameManga(newSlug, oldSlug) })
			return nil, storageError(err, FieldCover)
		}
		manga.Cover = cover
	}

	if _, err := service.repository.UpdateManga(context, &manga, oldSlug); err != nil {
		// The new cover lives under the new slug, so drop it before moving the folder back
		if patch.Cover != nil {
			service.discard(context, "cover", service.files.RemoveFile(manga.Cover))
		}
		service.rollbackRename(context, renamed, func() error { return service.files.RenameManga(newSlug, oldSlug) })
		return nil, err
	}

	if patch.Cover != nil {
		if previousCover != "" && previousCover != manga.Cover {
			service.discard(context, "cover", service.files.RemoveFile(previousCover))
		}
		service.optimize(context, manga.Cover)
	}
	service.cache.Invalidate(context, manga.ID, oldSlug, manga.Slug)

	service.logger.InfoContext(context, "manga_updated",
		slog.Int64("manga_id", manga.ID),
		slog.String("slug", manga.Slug),
		slog.Bool("renamed", renamed),
	)
	return &manga, nil
}

/*
DeleteManga removes a manga with its chapters, comments and reactions.

Description: The catalog delete is authoritative. Removing the folder
afterwards is best effort; a failure is logged and the call still succeeds.
*/
func (service *Service) DeleteManga(context context.Context, id int64) error {
	manga, err := service.catalog.FindMangaByID(context, id)
	if err != nil {
		return err
	}

	if err := service.repository.DeleteManga(context, id); err != nil {
		return err
	}

	if err := service.files.RemoveManga(manga.Slug); err != nil {
		service.logger.WarnContext(context, "manga_folder_remove_failed",
			slog.Int64("manga_id", id),
			slog.String("slug", manga.Slug),
			slog.Any("error", err),
		)
	}

	service.cache.Invalidate(context, id, manga.Slug)
	service.logger.InfoContext(context, "manga_deleted",
		slog.Int64("manga_id", id),
		slog.String("slug", manga.Slug),
	)
	return nil
}

// # Chapters

/*
CreateChapter adds a chapter with its page images.

Description: The title must be non-empty and its slug unused within the
manga; both are checked before anything is written. Pages are written next,
then the row. If the insert fails the written folder is removed.

Returns:
  - *library.Chapter: The stored chapter
  - error: NOT_FOUND, VALIDATION_ERROR, CONFLICT, or STORAGE_UNAVAILABLE
*/
func (service *Service) CreateChapter(context context.Context, mangaID int64, input ChapterInput) (*library.Chapter, error) {
	title := strings.TrimSpace(input.Title)

	validator := &validate.Validator{}
	validator.
		Required(FieldTitle, title).
		Custom(FieldPages, len(input.Pages) == 0, "At least one page is required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	manga, err := service.catalog.FindMangaByID(context, mangaID)
	if err != nil {
		return nil, err
	}

	chapterSlug, err := slugFor(title)
	if err != nil {
		return nil, err
	}
	if err := service.requireFreeChapterSlug(context, mangaID, chapterSlug, 0); err != nil {
		return nil, err
	}

	pages, err := service.files.WritePages(manga.Slug, chapterSlug, input.Pages)
	if err != nil {
		return nil, storageError(err, FieldPages)
	}

	chapter := &library.Chapter{
		MangaID: mangaID,
		Title:   title,
		Slug:    chapterSlug,
		Pages:   pages,
		Volume:  library.NormalizeVolume(input.Volume),
	}
	if err := service.repository.CreateChapter(context, chapter); err != nil {
		service.discard(context, "chapter_folder", service.files.RemoveChapter(manga.Slug, chapterSlug))
		return nil, err
	}

	service.optimize(context, pages...)
	service.cache.Invalidate(context, mangaID, manga.Slug)

	service.logger.InfoContext(context, "chapter_created",
		slog.Int64("manga_id", mangaID),
		slog.Int64("chapter_id", chapter.ID),
		slog.Int("pages", len(pages)),
	)
	return chapter, nil
}

// UpdateChapter changes title or volume, renaming the chapter folder with the title.
func (service *Service) UpdateChapter(context context.Context, id int64, patch ChapterPatch) (*library.Chapter, error) {
	current, err := service.catalog.FindChapterByID(context, id)
	if err != nil {
		return nil, err
	}
	manga, err := service.catalog.FindMangaByID(context, current.MangaID)
	if err != nil {
		return nil, err
	}

	chapter := *current
	chapter.Title = strings.TrimSpace(pointer.Fallback(patch.Title, chapter.Title))
	if patch.Volume != nil {
		chapter.Volume = library.NormalizeVolume(*patch.Volume)
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, chapter.Title)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	newSlug, err := slugFor(chapter.Title)
	if err != nil {
		return nil, err
	}

	oldSlug := current.Slug
	renamed := newSlug != oldSlug
	if renamed {
		if err := service.requireFreeChapterSlug(context, manga.ID, newSlug, id); err != nil {
			return nil, err
		}
		if err := service.files.RenameChapter(manga.Slug, oldSlug, newSlug); err != nil {
			return nil, storageError(err, FieldTitle)
		}
		chapter.Slug = newSlug
		chapter.Pages = RebasePaths(current.Pages, path.Join(manga.Slug, oldSlug), path.Join(manga.Slug, newSlug))
	}

	if err := service.repository.UpdateChapter(context, &chapter); err != nil {
		service.rollbackRename(context, renamed, func() error { return service.files.RenameChapter(manga.Slug, newSlug, oldSlug) })
		return nil, err
	}

	service.cache.Invalidate(context, manga.ID, manga.Slug)
	service.logger.InfoContext(context, "chapter_updated",
		slog.Int64("chapter_id", id),
		slog.Bool("renamed", renamed),
	)
	return &chapter, nil
}

// DeleteChapter removes a chapter; its folder is removed best effort afterwards.
func (service *Service) DeleteChapter(context context.Context, id int64) error {
	chapter, err := service.catalog.FindChapterByID(context, id)
	if err != nil {
		return err
	}
	manga, err := service.catalog.FindMangaByID(context, chapter.MangaID)
	if err != nil {
		return err
	}

	if err := service.repository.DeleteChapter(context, id); err != nil {
		return err
	}

	if err := service.files.RemoveChapter(manga.Slug, chapter.Slug); err != nil {
		service.logger.WarnContext(context, "chapter_folder_remove_failed",
			slog.Int64("chapter_id", id),
			slog.String("slug", chapter.Slug),
			slog.Any("error", err),
		)
	}

	service.cache.Invalidate(context, manga.ID, manga.Slug)
	service.logger.InfoContext(context, "chapter_deleted", slog.Int64("chapter_id", id))
	return nil
}

// # Maintenance

/*
Import creates catalog rows for folders found under the media root.

Description: Each folder is a manga slug and each subfolder a chapter.
Missing manga are created with a title derived from the slug; missing
chapters are created in natural folder order with pages in natural filename
order. Existing rows and empty chapter folders are skipped.
*/
func (service *Service) Import(context context.Context, folders []storage.Folder) (ImportReport, error) {
	var report ImportReport

	for _, folder := range folders {
		manga, err := service.catalog.FindMangaBySlug(context, folder.Slug)
		switch {
		case apperr.IsNotFound(err):
			manga = &library.Manga{Title: TitleFromSlug(folder.Slug), Slug: folder.Slug, Cover: folder.Cover}
			if err := service.repository.CreateManga(context, manga); err != nil {
				return report, err
			}
			report.MangaCreated++
		case err != nil:
			return report, err
		}

		chapterFolders := folder.Chapters
		chapterSlugs := make([]string, 0, len(chapterFolders))
		byChapterSlug := make(map[string]storage.ChapterFolder, len(chapterFolders))
		for _, chapterFolder := range chapterFolders {
			chapterSlugs = append(chapterSlugs, chapterFolder.Slug)
			byChapterSlug[chapterFolder.Slug] = chapterFolder
		}
		natsort.Strings(chapterSlugs)

		for _, chapterSlug := range chapterSlugs {
			chapterFolder := byChapterSlug[chapterSlug]
			if len(chapterFolder.Pages) == 0 {
				report.Skipped++
				continue
			}

			_, err := service.catalog.FindChapterBySlug(context, manga.ID, chapterSlug)
			if err == nil {
				report.Skipped++
				continue
			}
			if !apperr.IsNotFound(err) {
				return report, err
			}

			names := append([]string(nil), chapterFolder.Pages...)
			natsort.Strings(names)
			pages := make([]string, 0, len(names))
			for _, name := range names {
				pages = append(pages, path.Join(folder.Slug, chapterSlug, name))
			}

			chapter := &library.Chapter{
				MangaID: manga.ID,
				Title:   TitleFromSlug(chapterSlug),
				Slug:    chapterSlug,
				Pages:   pages,
				Volume:  constants.UnknownVolume,
			}
			if err := service.repository.CreateChapter(context, chapter); err != nil {
				return report, err
			}
			report.ChaptersCreated++
		}

		service.cache.Invalidate(context, manga.ID, manga.Slug)
	}

	service.logger.InfoContext(context, "media_imported",
		slog.Int("manga_created", report.MangaCreated),
		slog.Int("chapters_created", report.ChaptersCreated),
		slog.Int("skipped", report.Skipped),
	)
	return report, nil
}

// OptimizeCovers runs the optimiser over every stored cover and returns how many were visited.
func (service *Service) OptimizeCovers(context context.Context) (int, error) {
	manga, err := service.catalog.ListManga(context)
	if err != nil {
		return 0, err
	}

	covers := make([]string, 0, len(manga))
	for _, m := range manga {
		if m.Cover != "" {
			covers = append(covers, m.Cover)
		}
	}
	service.optimize(context, covers...)
	return len(covers), nil
}

// # Helpers

func validateManga(manga *library.Manga) error {
	validator := &validate.Validator{}
	validator.
		Required(FieldTitle, manga.Title).
		Custom(FieldRating, manga.Rating != "" && manga.Rating != constants.RatingAdult, "Must be empty or 18+")
	return validator.Err()
}

// requireFreeMangaSlug fails with CONFLICT when another manga owns the slug.
func (service *Service) requireFreeMangaSlug(context context.Context, mangaSlug string, selfID int64) error {
	existing, err := service.catalog.FindMangaBySlug(context, mangaSlug)
	if apperr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return apperr.Conflict("A manga with this title already exists")
}

// requireFreeChapterSlug fails with CONFLICT when another chapter of the manga owns the slug.
func (service *Service) requireFreeChapterSlug(context context.Context, mangaID int64, chapterSlug string, selfID int64) error {
	existing, err := service.catalog.FindChapterBySlug(context, mangaID, chapterSlug)
	if apperr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return apperr.Conflict("A chapter with this title already exists")
}

func (service *Service) optimize(context context.Context, relative ...string) {
	paths := make([]string, 0, len(relative))
	for _, p := range relative {
		if p != "" {
			paths = append(paths, service.files.Abs(p))
		}
	}
	if len(paths) > 0 {
		service.optimizer.Optimize(context, paths)
	}
}

func (service *Service) rollbackRename(context context.Context, renamed bool, undo func() error) {
	if !renamed {
		return
	}
	if err := undo(); err != nil {
		service.logger.ErrorContext(context, "folder_rename_rollback_failed", slog.Any("error", err))
	}
}

func (service *Service) discard(context context.Context, what string, err error) {
	if err != nil {
		service.logger.WarnContext(context, "upload_cleanup_failed",
			slog.String("what", what),
			slog.Any("error", err),
		)
	}
}

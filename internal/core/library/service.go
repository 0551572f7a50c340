// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"log/slog"

	"github.com/Aischii/mangaWebsite/internal/platform/constants"
	"github.com/Aischii/mangaWebsite/internal/social"
	"github.com/Aischii/mangaWebsite/pkg/slice"
)

// # Collaborators

// ShelfStore exposes the per-viewer reading state of a manga.
type ShelfStore interface {
	IsBookmarked(context context.Context, userID, mangaID int64) (bool, error)
	LastReadChapter(context context.Context, userID, mangaID int64) (int64, error)
	SetReadingProgress(context context.Context, userID, mangaID, chapterID int64) error
}

// ReactionCounter aggregates emoji reactions on a target.
type ReactionCounter interface {
	ReactionCounts(context context.Context, target social.Target) (map[string]int, error)
}

// AssetURLs resolves stored relative paths to public URLs.
type AssetURLs interface {
	URL(relative string) string
}

// # Service Layer

// Service assembles the library, detail and reader pages.
type Service struct {
	repository     Repository
	shelf          ShelfStore
	reactions      ReactionCounter
	assets         AssetURLs
	latestPerManga int
	logger         *slog.Logger
}

// NewService constructs a new [Service].
func NewService(
	repository Repository,
	shelf ShelfStore,
	reactions ReactionCounter,
	assets AssetURLs,
	latestPerManga int,
	logger *slog.Logger,
) *Service {
	return &Service{
		repository:     repository,
		shelf:          shelf,
		reactions:      reactions,
		assets:         assets,
		latestPerManga: latestPerManga,
		logger:         logger,
	}
}

// # Lookups

// ListManga returns the whole catalog.
func (service *Service) ListManga(context context.Context) ([]Manga, error) {
	return service.repository.ListManga(context)
}

// GetBySlug returns one manga or NOT_FOUND.
func (service *Service) GetBySlug(context context.Context, slug string) (*Manga, error) {
	return service.repository.FindMangaBySlug(context, slug)
}

// ListChapters returns the chapters of a manga in reading order.
func (service *Service) ListChapters(context context.Context, mangaID int64) ([]Chapter, error) {
	return service.repository.ListChapters(context, mangaID)
}

// GetChapterBySlug returns one chapter of a manga or NOT_FOUND.
func (service *Service) GetChapterBySlug(context context.Context, mangaID int64, slug string) (*Chapter, error) {
	return service.repository.FindChapterBySlug(context, mangaID, slug)
}

// # Page Pipelines

/*
LibraryPage builds the library listing.

Description: Steps run in order: load the catalog, load chapter counts,
load the latest chapters, derive the genre universe and the hot/new sets,
then filter and paginate for the viewer.

Parameters:
  - context: context.Context
  - query: Query (search, genre, 1-indexed page)
  - viewer: Viewer

Returns:
  - *LibraryPage: The aggregate page record
  - error: STORAGE_UNAVAILABLE
*/
func (service *Service) LibraryPage(context context.Context, query Query, viewer Viewer) (*LibraryPage, error) {
	if query.Page < 1 {
		query.Page = 1
	}

	catalog, err := service.repository.ListManga(context)
	if err != nil {
		return nil, err
	}

	counts, err := service.repository.ChapterCounts(context)
	if err != nil {
		return nil, err
	}

	latest, err := service.repository.LatestChapters(context, service.latestPerManga)
	if err != nil {
		return nil, err
	}

	hot := HotSet(counts, constants.HotChapterThreshold)
	newest := Newest(catalog, constants.NewMangaCount)
	newIDs := make(map[int64]bool, len(newest))
	for _, manga := range newest {
		newIDs[manga.ID] = true
	}

	toCard := func(manga Manga) Card {
		card := service.card(manga, counts)
		card.Hot = hot[manga.ID]
		card.New = newIDs[manga.ID]
		card.Latest = slice.Map(latest[manga.ID], func(chapter Chapter) ChapterLink { return chapter.Link() })
		if card.Latest == nil {
			card.Latest = []ChapterLink{}
		}
		return card
	}

	items, meta := Paginate(Filter(catalog, query, viewer.FamilySafe), query.Page)

	return &LibraryPage{
		Items:       cards(items, toCard),
		Genres:      GenreUniverse(catalog),
		NewReleases: cards(VisibleTo(newest, viewer.FamilySafe), toCard),
		Query:       query,
		Pagination:  meta,
	}, nil
}

/*
MangaDetail builds the manga page.

Description: Steps run in order: resolve the slug, load its chapters, group
them by volume, score related titles, then attach the viewer's bookmark and
reading position and the reaction counts of the manga.

Returns:
  - *MangaDetail: The aggregate page record
  - error: NOT_FOUND for an unknown slug, STORAGE_UNAVAILABLE
*/
func (service *Service) MangaDetail(context context.Context, slug string, viewer Viewer) (*MangaDetail, error) {
	manga, err := service.repository.FindMangaBySlug(context, slug)
	if err != nil {
		return nil, err
	}

	chapters, err := service.repository.ListChapters(context, manga.ID)
	if err != nil {
		return nil, err
	}

	catalog, err := service.repository.ListManga(context)
	if err != nil {
		return nil, err
	}

	counts, err := service.repository.ChapterCounts(context)
	if err != nil {
		return nil, err
	}

	detail := &MangaDetail{
		Manga:        *manga,
		CoverURL:     service.assets.URL(manga.Cover),
		ChapterCount: len(chapters),
		Volumes:      GroupVolumes(chapters),
		Related: cards(Related(*manga, catalog, viewer.FamilySafe, constants.RelatedLimit), func(related Manga) Card {
			return service.card(related, counts)
		}),
	}
	if detail.Volumes == nil {
		detail.Volumes = []VolumeGroup{}
	}

	if viewer.Authenticated() {
		if detail.Bookmarked, err = service.shelf.IsBookmarked(context, viewer.UserID, manga.ID); err != nil {
			return nil, err
		}
		if detail.LastReadChapterID, err = service.shelf.LastReadChapter(context, viewer.UserID, manga.ID); err != nil {
			return nil, err
		}
	}

	if detail.Reactions, err = service.reactions.ReactionCounts(context, social.MangaTarget(manga.ID)); err != nil {
		return nil, err
	}
	return detail, nil
}

/*
ChapterView builds the reader page.

Description: Steps run in order: resolve the manga and chapter, find the
neighbouring chapters, resolve page URLs, load reaction counts, then record
the chapter as the authenticated viewer's reading position for the manga.

Returns:
  - *ChapterView: The aggregate page record
  - error: NOT_FOUND for an unknown manga or chapter, STORAGE_UNAVAILABLE
*/
func (service *Service) ChapterView(context context.Context, mangaSlug, chapterSlug string, viewer Viewer) (*ChapterView, error) {
	manga, err := service.repository.FindMangaBySlug(context, mangaSlug)
	if err != nil {
		return nil, err
	}

	chapters, err := service.repository.ListChapters(context, manga.ID)
	if err != nil {
		return nil, err
	}

	var current *Chapter
	for i := range chapters {
		if chapters[i].Slug == chapterSlug {
			current = &chapters[i]
			break
		}
	}
	if current == nil {
		chapter, err := service.repository.FindChapterBySlug(context, manga.ID, chapterSlug)
		if err != nil {
			return nil, err
		}
		current = chapter
	}

	view := &ChapterView{
		Manga:   *manga,
		Chapter: current.Link(),
		Pages:   slice.Map(current.Pages, service.assets.URL),
	}
	if view.Pages == nil {
		view.Pages = []string{}
	}
	view.Previous, view.Next = Neighbours(chapters, current.ID)

	if view.Reactions, err = service.reactions.ReactionCounts(context, social.ChapterTarget(current.ID)); err != nil {
		return nil, err
	}

	if viewer.Authenticated() {
		if err := service.shelf.SetReadingProgress(context, viewer.UserID, manga.ID, current.ID); err != nil {
			return nil, err
		}
	}
	return view, nil
}

// # Helpers

func (service *Service) card(manga Manga, counts map[int64]int) Card {
	return Card{
		Manga:        manga,
		CoverURL:     service.assets.URL(manga.Cover),
		ChapterCount: counts[manga.ID],
		Latest:       []ChapterLink{},
	}
}

func cards(list []Manga, toCard func(Manga) Card) []Card {
	result := make([]Card, 0, len(list))
	for _, manga := range list {
		result = append(result, toCard(manga))
	}
	return result
}

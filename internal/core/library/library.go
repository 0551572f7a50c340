// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library is the read side of the catalog.

It lists manga and chapters, derives the facets shown on the library and
detail pages, and assembles each page as one aggregate record.

# Pipelines

Every page is built by an explicit sequence of store reads followed by pure
facet computations:

  - LibraryPage: manga -> chapter counts -> latest chapters -> filter/paginate
  - MangaDetail: manga -> chapters -> volume groups -> related -> viewer state
  - ChapterView: manga -> chapters -> prev/next -> progress upsert
*/
package library

import (
	"strings"
	"time"

	"github.com/Aischii/mangaWebsite/internal/platform/constants"
	"github.com/Aischii/mangaWebsite/pkg/pagination"
)

// # Domain Entities

// Manga is one title in the catalog.
type Manga struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	OtherTitle string    `json:"other_title"`
	Author     string    `json:"author"`
	Artist     string    `json:"artist"`
	Genre      string    `json:"genre"`
	Status     string    `json:"status"`
	Type       string    `json:"type"`
	Synopsis   string    `json:"synopsis"`
	Cover      string    `json:"cover"`
	Rating     string    `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// Adult reports whether the title is hidden from family-safe viewers.
func (manga *Manga) Adult() bool {
	return manga.Rating == constants.RatingAdult
}

// Genres splits the stored genre string into trimmed, non-empty tokens.
func (manga *Manga) Genres() []string {
	return SplitGenres(manga.Genre)
}

// Chapter is one readable chapter of a manga.
type Chapter struct {
	ID        int64     `json:"id"`
	MangaID   int64     `json:"manga_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Pages     []string  `json:"pages"`
	Volume    string    `json:"volume"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeVolume maps a blank volume label to the unknown-volume sentinel.
func NormalizeVolume(volume string) string {
	volume = strings.TrimSpace(volume)
	if volume == "" {
		return constants.UnknownVolume
	}
	return volume
}

// # Viewer

// Viewer is who is looking at a page.
type Viewer struct {
	UserID     int64
	FamilySafe bool
}

// Authenticated reports whether the viewer is logged in.
func (viewer Viewer) Authenticated() bool {
	return viewer.UserID > 0
}

// # Page Aggregates

// ChapterLink is a chapter without its page list.
type ChapterLink struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Volume    string    `json:"volume"`
	CreatedAt time.Time `json:"created_at"`
}

// Card is a manga as shown in listings.
type Card struct {
	Manga
	CoverURL     string        `json:"cover_url,omitempty"`
	ChapterCount int           `json:"chapter_count"`
	Hot          bool          `json:"hot"`
	New          bool          `json:"new"`
	Latest       []ChapterLink `json:"latest_chapters"`
}

// Query holds the library listing filters.
type Query struct {
	Search string `json:"q"`
	Genre  string `json:"genre"`
	Page   int    `json:"page"`
}

// LibraryPage is everything the library listing renders.
type LibraryPage struct {
	Items       []Card          `json:"items"`
	Genres      []string        `json:"genres"`
	NewReleases []Card          `json:"new_releases"`
	Query       Query           `json:"query"`
	Pagination  pagination.Meta `json:"pagination"`
}

// VolumeGroup is one heading of the chapter list on the detail page.
type VolumeGroup struct {
	Label    string        `json:"label"`
	Chapters []ChapterLink `json:"chapters"`
}

// MangaDetail is everything the manga page renders.
type MangaDetail struct {
	Manga             Manga          `json:"manga"`
	CoverURL          string         `json:"cover_url,omitempty"`
	ChapterCount      int            `json:"chapter_count"`
	Volumes           []VolumeGroup  `json:"volumes"`
	Related           []Card         `json:"related"`
	Bookmarked        bool           `json:"bookmarked"`
	LastReadChapterID int64          `json:"last_read_chapter_id,omitempty"`
	Reactions         map[string]int `json:"reactions"`
}

// ChapterView is everything the reader page renders.
type ChapterView struct {
	Manga     Manga          `json:"manga"`
	Chapter   ChapterLink    `json:"chapter"`
	Pages     []string       `json:"pages"`
	Previous  *ChapterLink   `json:"previous,omitempty"`
	Next      *ChapterLink   `json:"next,omitempty"`
	Reactions map[string]int `json:"reactions"`
}

// Link strips the page list from a chapter.
func (chapter *Chapter) Link() ChapterLink {
	return ChapterLink{
		ID:        chapter.ID,
		Title:     chapter.Title,
		Slug:      chapter.Slug,
		Volume:    chapter.Volume,
		CreatedAt: chapter.CreatedAt,
	}
}

// # Field Identifiers

const (
	FieldSearch = "q"
	FieldGenre  = "genre"
)

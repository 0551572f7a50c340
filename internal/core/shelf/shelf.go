// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package shelf keeps each reader's bookmarks and reading position.

Reading progress is one row per (user, manga), overwritten by a single
upsert every time the reader opens a chapter of that manga.
*/
package shelf

import "time"

// # Domain Entities

// Progress is the last chapter a user opened in a manga.
type Progress struct {
	UserID    int64     `json:"user_id"`
	MangaID   int64     `json:"manga_id"`
	ChapterID int64     `json:"chapter_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChapterRef identifies a chapter in listings.
type ChapterRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Bookmark is one bookmarked manga with the reader's position in it.
type Bookmark struct {
	MangaID      int64       `json:"manga_id"`
	Title        string      `json:"title"`
	Slug         string      `json:"slug"`
	Cover        string      `json:"-"`
	CoverURL     string      `json:"cover_url,omitempty"`
	Rating       string      `json:"rating"`
	BookmarkedAt time.Time   `json:"bookmarked_at"`
	LastRead     *ChapterRef `json:"last_read,omitempty"`
}

// BookmarkState is the response of bookmark mutations.
type BookmarkState struct {
	MangaID    int64 `json:"manga_id"`
	Bookmarked bool  `json:"bookmarked"`
}

// # Field Identifiers

const (
	FieldMangaID   = "manga_id"
	FieldChapterID = "chapter_id"
)

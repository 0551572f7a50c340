// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// BookmarksTable represents the 'bookmarks' table
type BookmarksTable struct {
	Table     string
	UserID    string
	MangaID   string
	CreatedAt string
}

// Bookmarks is the schema definition for bookmarks
var Bookmarks = BookmarksTable{
	Table:     "bookmarks",
	UserID:    "user_id",
	MangaID:   "manga_id",
	CreatedAt: "created_at",
}

// ReadingProgressTable represents the 'reading_progress' table
type ReadingProgressTable struct {
	Table     string
	UserID    string
	MangaID   string
	ChapterID string
	UpdatedAt string
}

// ReadingProgress is the schema definition for reading_progress
var ReadingProgress = ReadingProgressTable{
	Table:     "reading_progress",
	UserID:    "user_id",
	MangaID:   "manga_id",
	ChapterID: "chapter_id",
	UpdatedAt: "updated_at",
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ChaptersTable represents the 'chapters' table
type ChaptersTable struct {
	Table     string
	ID        string
	MangaID   string
	Title     string
	Slug      string
	Pages     string
	Volume    string
	CreatedAt string
}

// Chapters is the schema definition for chapters
var Chapters = ChaptersTable{
	Table:     "chapters",
	ID:        "id",
	MangaID:   "manga_id",
	Title:     "title",
	Slug:      "slug",
	Pages:     "pages",
	Volume:    "volume",
	CreatedAt: "created_at",
}

// Columns returns every column in scan order.
func (t ChaptersTable) Columns() []string {
	return []string{t.ID, t.MangaID, t.Title, t.Slug, t.Pages, t.Volume, t.CreatedAt}
}

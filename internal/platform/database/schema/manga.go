// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// MangaTable represents the 'manga' table
type MangaTable struct {
	Table      string
	ID         string
	Title      string
	Slug       string
	OtherTitle string
	Author     string
	Artist     string
	Genre      string
	Status     string
	Type       string
	Synopsis   string
	Cover      string
	Rating     string
	CreatedAt  string
}

// Manga is the schema definition for manga
var Manga = MangaTable{
	Table:      "manga",
	ID:         "id",
	Title:      "title",
	Slug:       "slug",
	OtherTitle: "other_title",
	Author:     "author",
	Artist:     "artist",
	Genre:      "genre",
	Status:     "status",
	Type:       "type",
	Synopsis:   "synopsis",
	Cover:      "cover",
	Rating:     "rating",
	CreatedAt:  "created_at",
}

// Columns returns every column in scan order.
func (t MangaTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.OtherTitle, t.Author, t.Artist,
		t.Genre, t.Status, t.Type, t.Synopsis, t.Cover, t.Rating, t.CreatedAt,
	}
}

// Writable returns the columns set by insert and update, in bind order.
func (t MangaTable) Writable() []string {
	return []string{
		t.Title, t.Slug, t.OtherTitle, t.Author, t.Artist,
		t.Genre, t.Status, t.Type, t.Synopsis, t.Cover, t.Rating,
	}
}

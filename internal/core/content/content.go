// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package content implements the admin write side of the catalog.

Every manga and chapter exists twice: as a catalog row and as a folder under
the media root. Mutations keep both in step with a fixed ordering:

  - Create: write files, insert the row, remove the files if the insert fails.
  - Rename: move the folder, rewrite the row and stored paths in one
    transaction, move the folder back if the transaction fails.
  - Delete: delete the row and its comments and reactions in one transaction,
    then remove the folder. Folder removal failures are logged only.

After each successful mutation the library cache is invalidated.
*/
package content

import (
	"github.com/Aischii/mangaWebsite/internal/platform/storage"
)

// # Inputs

// MangaInput is the payload of a new manga.
type MangaInput struct {
	Title      string
	OtherTitle string
	Author     string
	Artist     string
	Genre      string
	Status     string
	Type       string
	Synopsis   string
	Rating     string
	Cover      *storage.Source
}

// MangaPatch changes selected manga fields. Nil leaves a field unchanged.
type MangaPatch struct {
	Title      *string
	OtherTitle *string
	Author     *string
	Artist     *string
	Genre      *string
	Status     *string
	Type       *string
	Synopsis   *string
	Rating     *string
	Cover      *storage.Source
}

// ChapterInput is the payload of a new chapter. Pages are in reading order.
type ChapterInput struct {
	Title  string
	Volume string
	Pages  []storage.Source
}

// ChapterPatch changes selected chapter fields. Nil leaves a field unchanged.
type ChapterPatch struct {
	Title  *string
	Volume *string
}

// ImportReport summarises a media root import.
type ImportReport struct {
	MangaCreated    int `json:"manga_created"`
	ChaptersCreated int `json:"chapters_created"`
	Skipped         int `json:"skipped"`
}

// # Field Identifiers

const (
	FieldTitle      = "title"
	FieldOtherTitle = "other_title"
	FieldAuthor     = "author"
	FieldArtist     = "artist"
	FieldGenre      = "genre"
	FieldStatus     = "status"
	FieldType       = "type"
	FieldSynopsis   = "synopsis"
	FieldRating     = "rating"
	FieldCover      = "cover"
	FieldVolume     = "volume"
	FieldPages      = "pages"
	FieldArchive    = "archive"
)

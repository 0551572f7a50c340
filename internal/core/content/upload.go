// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"archive/zip"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/storage"
	"github.com/Aischii/mangaWebsite/pkg/natsort"
)

// # Upload Sources

// FileSource wraps one multipart file as a lazily opened [storage.Source].
func FileSource(header *multipart.FileHeader) storage.Source {
	return storage.Source{
		Name: header.Filename,
		Open: func() (io.ReadCloser, error) { return header.Open() },
	}
}

/*
PageSources extracts the chapter pages of a multipart form.

Description: Files posted as "pages" are used in upload order. Otherwise a
single "archive" zip is expanded: image entries only, in natural filename
order. The returned closer releases the archive and must be called once the
pages have been written.

Returns:
  - []storage.Source: Pages in reading order
  - io.Closer: Releases any opened archive
  - error: VALIDATION_ERROR when no pages are present
*/
func PageSources(form *multipart.Form) ([]storage.Source, io.Closer, error) {
	if files := form.File[FieldPages]; len(files) > 0 {
		pages := make([]storage.Source, 0, len(files))
		for _, header := range files {
			pages = append(pages, FileSource(header))
		}
		return pages, nopCloser{}, nil
	}

	if archives := form.File[FieldArchive]; len(archives) > 0 {
		return ArchivePages(archives[0])
	}

	return nil, nil, apperr.ValidationError("Chapter pages are required",
		apperr.FieldError{Field: FieldPages, Message: "Upload page images or a zip archive"})
}

// ArchivePages opens an uploaded zip and lists its image entries in natural order.
func ArchivePages(header *multipart.FileHeader) ([]storage.Source, io.Closer, error) {
	file, err := header.Open()
	if err != nil {
		return nil, nil, apperr.ValidationError("Archive could not be read",
			apperr.FieldError{Field: FieldArchive, Message: err.Error()})
	}

	reader, err := zip.NewReader(file, header.Size)
	if err != nil {
		_ = file.Close()
		return nil, nil, apperr.ValidationError("Archive is not a valid zip file",
			apperr.FieldError{Field: FieldArchive, Message: "Upload a .zip archive"})
	}

	pages := zipPages(reader.File)
	if len(pages) == 0 {
		_ = file.Close()
		return nil, nil, apperr.ValidationError("Archive contains no images",
			apperr.FieldError{Field: FieldArchive, Message: "Add .jpg, .png, .webp or .gif pages"})
	}
	return pages, file, nil
}

// zipPages keeps image entries, skipping folders and OS metadata, in natural order.
func zipPages(entries []*zip.File) []storage.Source {
	byName := make(map[string]*zip.File, len(entries))
	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name
		if entry.FileInfo().IsDir() || strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), ".") {
			continue
		}
		if !storage.IsImage(name) {
			continue
		}
		byName[name] = entry
		names = append(names, name)
	}

	natsort.Strings(names)

	pages := make([]storage.Source, 0, len(names))
	for _, name := range names {
		entry := byName[name]
		pages = append(pages, storage.Source{
			Name: path.Base(name),
			Open: func() (io.ReadCloser, error) { return entry.Open() },
		})
	}
	return pages
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

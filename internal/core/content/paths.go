// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/storage"
	"github.com/Aischii/mangaWebsite/pkg/slug"
)

// # Slugs & Stored Paths

// slugFor derives the slug of a title, rejecting titles that yield no usable folder name.
func slugFor(title string) (string, error) {
	derived := slug.From(title)
	if !slug.Valid(derived) || storage.ReservedSlug(derived) {
		return "", apperr.ValidationError("Invalid title",
			apperr.FieldError{Field: FieldTitle, Message: "Title does not produce a usable folder name"})
	}
	return derived, nil
}

// TitleFromSlug turns a folder name back into a readable title.
func TitleFromSlug(s string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(s, "-", " "))
}

// RebasePath moves a stored path from one directory prefix to another.
// Paths outside from are returned unchanged.
func RebasePath(stored, from, to string) string {
	if rest, ok := strings.CutPrefix(stored, from+"/"); ok {
		return to + "/" + rest
	}
	return stored
}

// RebasePaths applies [RebasePath] to every path. The input is not modified.
func RebasePaths(stored []string, from, to string) []string {
	rebased := make([]string, len(stored))
	for i, p := range stored {
		rebased[i] = RebasePath(p, from, to)
	}
	return rebased
}

// storageError maps file-system failures onto client-facing errors.
func storageError(err error, field string) error {
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return apperr.ValidationError("Unsupported file type",
			apperr.FieldError{Field: field, Message: "Only .jpg, .jpeg, .png, .webp and .gif images are accepted"})
	case errors.Is(err, storage.ErrExists):
		return apperr.Conflict("A folder with this name already exists")
	case errors.Is(err, storage.ErrInvalidName):
		return apperr.ValidationError("Invalid title",
			apperr.FieldError{Field: FieldTitle, Message: "Title does not produce a usable folder name"})
	}
	return apperr.StorageUnavailable(err)
}

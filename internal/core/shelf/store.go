// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package shelf

import "context"

// # Shelf Data Access

// Repository defines persistence for bookmarks and reading progress.
type Repository interface {

	// AddBookmark bookmarks a manga. Bookmarking twice is a no-op.
	// An unknown manga is reported as NOT_FOUND.
	AddBookmark(context context.Context, userID, mangaID int64) error

	// RemoveBookmark deletes the bookmark. A missing bookmark is not an error.
	RemoveBookmark(context context.Context, userID, mangaID int64) error

	// IsBookmarked reports whether the bookmark exists.
	IsBookmarked(context context.Context, userID, mangaID int64) (bool, error)

	// ListBookmarks returns the user's bookmarks, most recent first.
	ListBookmarks(context context.Context, userID int64) ([]Bookmark, error)

	// UpsertProgress records chapterID as the user's position in mangaID in
	// one atomic statement. A chapter outside the manga is NOT_FOUND.
	UpsertProgress(context context.Context, userID, mangaID, chapterID int64) error

	// FindProgress returns the position of the user in the manga, or NOT_FOUND.
	FindProgress(context context.Context, userID, mangaID int64) (*Progress, error)
}

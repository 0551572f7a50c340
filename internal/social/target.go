// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package social implements threaded comments and emoji reactions.

Both attach to a polymorphic target: a manga, a chapter, or another comment.
The database stores the target as a loose (target_type, target_id) pair, so
every write first checks that the target row exists.

# Architecture

  - Target: tagged union parsed at the HTTP boundary.
  - Repository: PostgreSQL, with single-statement upserts for reactions.
  - Thread: pure tree building and sorting of comment listings.
*/
package social

import (
	"fmt"
	"strconv"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
)

// # Targets

// TargetType names the table a target id refers to.
type TargetType string

const (
	TargetManga   TargetType = "manga"
	TargetChapter TargetType = "chapter"
	TargetComment TargetType = "comment"
)

// Valid reports whether t is one of the known target types.
func (t TargetType) Valid() bool {
	switch t {
	case TargetManga, TargetChapter, TargetComment:
		return true
	}
	return false
}

// resource is the name used in NOT_FOUND messages.
func (t TargetType) resource() string {
	switch t {
	case TargetManga:
		return "Manga"
	case TargetChapter:
		return "Chapter"
	case TargetComment:
		return "Comment"
	}
	return "Target"
}

// Target identifies the entity a comment or reaction is attached to.
type Target struct {
	Type TargetType `json:"target_type"`
	ID   int64      `json:"target_id"`
}

// MangaTarget targets a manga.
func MangaTarget(id int64) Target { return Target{Type: TargetManga, ID: id} }

// ChapterTarget targets a chapter.
func ChapterTarget(id int64) Target { return Target{Type: TargetChapter, ID: id} }

// CommentTarget targets a comment.
func CommentTarget(id int64) Target { return Target{Type: TargetComment, ID: id} }

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Type, t.ID)
}

/*
NewTarget validates a target type and id.

Returns:
  - Target: The validated target
  - error: VALIDATION_ERROR for an unknown type or a non-positive id
*/
func NewTarget(kind string, id int64) (Target, error) {
	targetType := TargetType(kind)
	if !targetType.Valid() {
		return Target{}, apperr.ValidationError("Invalid target",
			apperr.FieldError{Field: FieldTargetType, Message: "Must be manga, chapter or comment"})
	}
	if id <= 0 {
		return Target{}, apperr.ValidationError("Invalid target",
			apperr.FieldError{Field: FieldTargetID, Message: "Must be a positive integer"})
	}
	return Target{Type: targetType, ID: id}, nil
}

// ParseTarget builds a Target from raw query values.
func ParseTarget(kind, rawID string) (Target, error) {
	// A malformed id parses as 0 and is rejected below
	id, _ := strconv.ParseInt(rawID, 10, 64)
	return NewTarget(kind, id)
}

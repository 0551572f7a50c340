// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"slices"
	"time"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
)

// # Domain Entities

// Author is the public identity shown next to a comment.
type Author struct {
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"-"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Comment is one posted comment. Comments are never edited.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Target    Target    `json:"target"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Author    Author    `json:"author"`
}

// CommentNode is a comment with its votes and nested replies.
type CommentNode struct {
	Comment
	Upvotes   int            `json:"upvotes"`
	Downvotes int            `json:"downvotes"`
	Reactions map[string]int `json:"reactions"`
	Replies   []*CommentNode `json:"replies"`
}

// Score is upvotes minus downvotes.
func (node *CommentNode) Score() int {
	return node.Upvotes - node.Downvotes
}

// # Sorting

// SortMode orders the root comments of a thread.
type SortMode string

const (
	SortNew  SortMode = "new"
	SortOld  SortMode = "old"
	SortBest SortMode = "best"
)

// ParseSortMode maps a query value to a SortMode. Empty means new.
func ParseSortMode(raw string) (SortMode, error) {
	switch mode := SortMode(raw); mode {
	case "":
		return SortNew, nil
	case SortNew, SortOld, SortBest:
		return mode, nil
	}
	return "", apperr.ValidationError("Invalid sort mode",
		apperr.FieldError{Field: FieldSort, Message: "Must be new, old or best"})
}

// # Reactions

const (
	EmojiUpvote   = "👍"
	EmojiDownvote = "👎"
)

// AllowedEmoji is the reaction palette, in display order.
var AllowedEmoji = []string{EmojiUpvote, EmojiDownvote, "❤️", "😂", "😮", "😢", "😡"}

// ValidEmoji reports whether emoji is part of the palette.
func ValidEmoji(emoji string) bool {
	return slices.Contains(AllowedEmoji, emoji)
}

// ReactionSummary is the reaction state of one target for one viewer.
type ReactionSummary struct {
	Target Target         `json:"target"`
	Counts map[string]int `json:"counts"`
	Mine   string         `json:"mine,omitempty"`
}

// # Limits

const CommentMaxLength = 2000

// # Field Identifiers

const (
	FieldTargetType = "target_type"
	FieldTargetID   = "target_id"
	FieldTargetIDs  = "target_ids"
	FieldParentID   = "parent_id"
	FieldBody       = "body"
	FieldEmoji      = "emoji"
	FieldSort       = "sort"
)

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import "context"

// # Social Data Access

// Repository defines persistence for comments and reactions.
type Repository interface {

	// TargetExists checks the row a target points at in its own table.
	TargetExists(context context.Context, target Target) (bool, error)

	// InsertComment stores the comment and fills in ID and CreatedAt.
	InsertComment(context context.Context, comment *Comment) error

	// FindComment returns one comment, or NOT_FOUND.
	FindComment(context context.Context, id int64) (*Comment, error)

	// ListComments returns every comment on a target with its author,
	// newest first.
	ListComments(context context.Context, target Target) ([]Comment, error)

	// UpsertReaction sets the user's single reaction on a target in one
	// atomic statement, replacing any previous emoji.
	UpsertReaction(context context.Context, userID int64, target Target, emoji string) error

	// DeleteReaction removes the user's reaction. A missing reaction is not an error.
	DeleteReaction(context context.Context, userID int64, target Target) error

	// FindUserReaction returns the user's emoji on a target, or "" when none.
	FindUserReaction(context context.Context, userID int64, target Target) (string, error)

	// CountReactions returns emoji counts for one target.
	CountReactions(context context.Context, target Target) (map[string]int, error)

	// CountReactionsBulk returns emoji counts for many targets of one type
	// in a single round trip. Targets without reactions are absent.
	CountReactionsBulk(context context.Context, targetType TargetType, ids []int64) (map[int64]map[string]int, error)
}

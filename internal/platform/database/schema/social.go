// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CommentsTable represents the 'comments' table
type CommentsTable struct {
	Table      string
	ID         string
	UserID     string
	TargetType string
	TargetID   string
	ParentID   string
	Body       string
	CreatedAt  string
}

// Comments is the schema definition for comments
var Comments = CommentsTable{
	Table:      "comments",
	ID:         "id",
	UserID:     "user_id",
	TargetType: "target_type",
	TargetID:   "target_id",
	ParentID:   "parent_id",
	Body:       "body",
	CreatedAt:  "created_at",
}

// ReactionsTable represents the 'reactions' table
type ReactionsTable struct {
	Table      string
	UserID     string
	TargetType string
	TargetID   string
	Emoji      string
	UpdatedAt  string
}

// Reactions is the schema definition for reactions
var Reactions = ReactionsTable{
	Table:      "reactions",
	UserID:     "user_id",
	TargetType: "target_type",
	TargetID:   "target_id",
	Emoji:      "emoji",
	UpdatedAt:  "updated_at",
}

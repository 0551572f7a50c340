// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"cmp"
	"slices"
)

// # Thread Building

/*
BuildThread turns a flat comment listing into a sorted tree.

Description: Each comment becomes a node carrying its reaction counts.
Replies nest under their parent in oldest-first order at every depth. A
comment whose parent is absent from the listing is promoted to a root so
nothing is silently dropped. Roots are ordered by mode.

Parameters:
  - comments: []Comment
  - counts: map[int64]map[string]int (reaction counts keyed by comment id)
  - mode: SortMode

Returns:
  - []*CommentNode: Root nodes, never nil
*/
func BuildThread(comments []Comment, counts map[int64]map[string]int, mode SortMode) []*CommentNode {
	nodes := make(map[int64]*CommentNode, len(comments))
	for _, comment := range comments {
		reactions := counts[comment.ID]
		if reactions == nil {
			reactions = map[string]int{}
		}
		nodes[comment.ID] = &CommentNode{
			Comment:   comment,
			Upvotes:   reactions[EmojiUpvote],
			Downvotes: reactions[EmojiDownvote],
			Reactions: reactions,
			Replies:   []*CommentNode{},
		}
	}

	roots := []*CommentNode{}
	for _, comment := range comments {
		node := nodes[comment.ID]
		if comment.ParentID != nil {
			if parent, ok := nodes[*comment.ParentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	for _, node := range nodes {
		slices.SortStableFunc(node.Replies, oldestFirst)
	}

	switch mode {
	case SortOld:
		slices.SortStableFunc(roots, oldestFirst)
	case SortBest:
		slices.SortStableFunc(roots, bestFirst)
	default:
		slices.SortStableFunc(roots, newestFirst)
	}
	return roots
}

func oldestFirst(a, b *CommentNode) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func newestFirst(a, b *CommentNode) int {
	return oldestFirst(b, a)
}

// bestFirst ranks by score, then recency.
func bestFirst(a, b *CommentNode) int {
	if c := cmp.Compare(b.Score(), a.Score()); c != 0 {
		return c
	}
	return newestFirst(a, b)
}


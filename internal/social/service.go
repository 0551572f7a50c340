// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/validate"
	"github.com/Aischii/mangaWebsite/pkg/slice"
)

// AssetURLs resolves stored relative paths to public URLs.
type AssetURLs interface {
	URL(relative string) string
}

// # Service Layer

// Service implements comment and reaction use cases.
type Service struct {
	repository Repository
	assets     AssetURLs
	logger     *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repository Repository, assets AssetURLs, logger *slog.Logger) *Service {
	return &Service{repository: repository, assets: assets, logger: logger}
}

// CommentInput is the payload of a new comment.
type CommentInput struct {
	Target   Target
	ParentID *int64
	Body     string
}

// # Comments

/*
AddComment posts a comment or a reply.

Description: The body is trimmed and must be non-empty and at most
[CommentMaxLength] characters. The target must exist, and a parent, when
given, must be a comment on the same target.

Parameters:
  - context: context.Context
  - userID: int64
  - input: CommentInput

Returns:
  - *Comment: The stored comment with its author resolved
  - error: VALIDATION_ERROR or NOT_FOUND
*/
func (service *Service) AddComment(context context.Context, userID int64, input CommentInput) (*Comment, error) {
	body := strings.TrimSpace(input.Body)

	validator := &validate.Validator{}
	validator.
		Required(FieldBody, body).
		MaxLen(FieldBody, body, CommentMaxLength)
	if input.ParentID != nil {
		validator.Positive(FieldParentID, *input.ParentID)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.requireTarget(context, input.Target); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		parent, err := service.repository.FindComment(context, *input.ParentID)
		if err != nil {
			if apperr.IsNotFound(err) {
				return nil, apperr.NotFound("Parent comment")
			}
			return nil, err
		}
		if parent.Target != input.Target {
			return nil, apperr.ValidationError("Reply must be on the same target as its parent",
				apperr.FieldError{Field: FieldParentID, Message: "Parent belongs to another target"})
		}
	}

	comment := &Comment{
		UserID:   userID,
		Target:   input.Target,
		ParentID: input.ParentID,
		Body:     body,
	}
	if err := service.repository.InsertComment(context, comment); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "comment_posted",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("user_id", userID),
		slog.String("target", input.Target.String()),
	)

	// Re-read to pick up the author join
	stored, err := service.repository.FindComment(context, comment.ID)
	if err != nil {
		return nil, err
	}
	service.resolveAvatar(stored)
	return stored, nil
}

/*
ListComments returns the comment thread of a target.

Description: Reaction counts for every comment in the listing are fetched
with one bulk query before the tree is built.
*/
func (service *Service) ListComments(context context.Context, target Target, mode SortMode) ([]*CommentNode, error) {
	comments, err := service.repository.ListComments(context, target)
	if err != nil {
		return nil, err
	}

	for i := range comments {
		service.resolveAvatar(&comments[i])
	}

	ids := slice.Map(comments, func(comment Comment) int64 { return comment.ID })
	counts, err := service.ReactionCountsBulk(context, TargetComment, ids)
	if err != nil {
		return nil, err
	}

	return BuildThread(comments, counts, mode), nil
}

// # Reactions

// SetReaction sets the user's reaction on a target, replacing any previous one.
func (service *Service) SetReaction(context context.Context, userID int64, target Target, emoji string) error {
	if !ValidEmoji(emoji) {
		return apperr.ValidationError("Unsupported reaction",
			apperr.FieldError{Field: FieldEmoji, Message: "Must be one of " + strings.Join(AllowedEmoji, " ")})
	}

	if err := service.requireTarget(context, target); err != nil {
		return err
	}

	return service.repository.UpsertReaction(context, userID, target, emoji)
}

// ClearReaction removes the user's reaction. Clearing nothing succeeds.
func (service *Service) ClearReaction(context context.Context, userID int64, target Target) error {
	return service.repository.DeleteReaction(context, userID, target)
}

// ReactionCounts returns emoji counts for one target. The map is never nil.
func (service *Service) ReactionCounts(context context.Context, target Target) (map[string]int, error) {
	counts, err := service.repository.CountReactions(context, target)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = map[string]int{}
	}
	return counts, nil
}

/*
ReactionCountsBulk returns emoji counts for many targets of one type.

Description: An empty id list returns an empty map without touching the
store. Targets without reactions are absent from the result.
*/
func (service *Service) ReactionCountsBulk(context context.Context, targetType TargetType, ids []int64) (map[int64]map[string]int, error) {
	ids = slice.Unique(ids)
	if len(ids) == 0 {
		return map[int64]map[string]int{}, nil
	}

	counts, err := service.repository.CountReactionsBulk(context, targetType, ids)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = map[int64]map[string]int{}
	}
	return counts, nil
}

// ViewerReaction returns the user's emoji on a target, or "" for anonymous viewers.
func (service *Service) ViewerReaction(context context.Context, userID int64, target Target) (string, error) {
	if userID == 0 {
		return "", nil
	}
	return service.repository.FindUserReaction(context, userID, target)
}

// Summary combines counts and the viewer's own reaction for one target.
func (service *Service) Summary(context context.Context, userID int64, target Target) (*ReactionSummary, error) {
	counts, err := service.ReactionCounts(context, target)
	if err != nil {
		return nil, err
	}

	mine, err := service.ViewerReaction(context, userID, target)
	if err != nil {
		return nil, err
	}
	return &ReactionSummary{Target: target, Counts: counts, Mine: mine}, nil
}

// # Helpers

func (service *Service) requireTarget(context context.Context, target Target) error {
	if _, err := NewTarget(string(target.Type), target.ID); err != nil {
		return err
	}

	exists, err := service.repository.TargetExists(context, target)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound(target.Type.resource())
	}
	return nil
}

func (service *Service) resolveAvatar(comment *Comment) {
	comment.Author.AvatarURL = service.assets.URL(comment.Author.Avatar)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/middleware"
	requestutil "github.com/Aischii/mangaWebsite/internal/platform/request"
	"github.com/Aischii/mangaWebsite/internal/platform/respond"
	"github.com/Aischii/mangaWebsite/internal/platform/validate"
	"github.com/Aischii/mangaWebsite/pkg/query"
)

// # Definitions & Constructors

// Handler serves the comment and reaction endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the social routes.
//
// # Endpoints
//   - GET    /comments  : Thread of a target (?target_type&target_id&sort).
//   - POST   /comments  : Post a comment or reply (auth).
//   - GET    /reactions : Counts for one target, or many via ?target_ids=1,2.
//   - PUT    /reactions : Set own reaction (auth).
//   - DELETE /reactions : Clear own reaction (auth).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/comments", handler.listComments)
	router.Get("/reactions", handler.reactions)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/comments", handler.addComment)
		protected.Put("/reactions", handler.setReaction)
		protected.Delete("/reactions", handler.clearReaction)
	})

	return router
}

// # Request Payloads

type commentRequest struct {
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
	ParentID   *int64 `json:"parent_id"`
	Body       string `json:"body"`
}

type reactionRequest struct {
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
	Emoji      string `json:"emoji"`
}

// # Comment Endpoints

// GET /api/v1/social/comments
func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()

	target, err := ParseTarget(values.Get(FieldTargetType), values.Get(FieldTargetID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	mode, err := ParseSortMode(values.Get(FieldSort))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	thread, err := handler.service.ListComments(request.Context(), target, mode)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, thread)
}

/*
AddComment posts a comment.

POST /api/v1/social/comments

Description: Accepts JSON or a urlencoded form. Browser clients are sent
back to the page they posted from.
*/
func (handler *Handler) addComment(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := decodeComment(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	target, err := NewTarget(input.TargetType, input.TargetID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.AddComment(request.Context(), userID, CommentInput{
		Target:   target,
		ParentID: input.ParentID,
		Body:     input.Body,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if respond.WantsHTML(request) {
		respond.Back(writer, request, "/")
		return
	}
	respond.Created(writer, comment)
}

// # Reaction Endpoints

/*
Reactions returns reaction counts.

GET /api/v1/social/reactions

Description: With target_id, returns one [ReactionSummary] including the
viewer's own emoji. With target_ids, returns counts keyed by id for every
requested target, fetched in one query.
*/
func (handler *Handler) reactions(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()

	if raw := values.Get(FieldTargetIDs); raw != "" {
		targetType := TargetType(values.Get(FieldTargetType))
		if !targetType.Valid() {
			respond.Error(writer, request, apperr.ValidationError("Invalid target",
				apperr.FieldError{Field: FieldTargetType, Message: "Must be manga, chapter or comment"}))
			return
		}

		ids := query.Int64List(raw)
		counts, err := handler.service.ReactionCountsBulk(request.Context(), targetType, ids)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		// Every requested id appears, with an empty map when it has no reactions
		result := make(map[string]map[string]int, len(ids))
		for _, id := range ids {
			entry := counts[id]
			if entry == nil {
				entry = map[string]int{}
			}
			result[strconv.FormatInt(id, 10)] = entry
		}
		respond.OK(writer, result)
		return
	}

	target, err := ParseTarget(values.Get(FieldTargetType), values.Get(FieldTargetID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.service.Summary(request.Context(), requestutil.OptionalUserID(request), target)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

// PUT /api/v1/social/reactions
func (handler *Handler) setReaction(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := decodeReaction(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	target, err := NewTarget(input.TargetType, input.TargetID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SetReaction(request.Context(), userID, target, input.Emoji); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if respond.WantsHTML(request) {
		respond.Back(writer, request, "/")
		return
	}

	summary, err := handler.service.Summary(request.Context(), userID, target)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

// DELETE /api/v1/social/reactions?target_type&target_id
func (handler *Handler) clearReaction(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	values := request.URL.Query()
	target, err := ParseTarget(values.Get(FieldTargetType), values.Get(FieldTargetID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ClearReaction(request.Context(), userID, target); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Helpers

func isForm(request *http.Request) bool {
	return strings.HasPrefix(request.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

func decodeComment(request *http.Request) (commentRequest, error) {
	var input commentRequest

	if isForm(request) {
		if err := request.ParseForm(); err != nil {
			return input, apperr.ValidationError("Invalid form payload")
		}
		form := request.PostForm
		input.TargetType = form.Get(FieldTargetType)
		input.TargetID, _ = strconv.ParseInt(form.Get(FieldTargetID), 10, 64)
		input.Body = form.Get(FieldBody)
		if raw := form.Get(FieldParentID); raw != "" {
			parentID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return input, apperr.ValidationError("Invalid parent",
					apperr.FieldError{Field: FieldParentID, Message: "Must be a positive integer"})
			}
			input.ParentID = &parentID
		}
		return input, nil
	}

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		return input, validate.ErrInvalidJSON
	}
	return input, nil
}

func decodeReaction(request *http.Request) (reactionRequest, error) {
	var input reactionRequest

	if isForm(request) {
		if err := request.ParseForm(); err != nil {
			return input, apperr.ValidationError("Invalid form payload")
		}
		form := request.PostForm
		input.TargetType = form.Get(FieldTargetType)
		input.TargetID, _ = strconv.ParseInt(form.Get(FieldTargetID), 10, 64)
		input.Emoji = form.Get(FieldEmoji)
		return input, nil
	}

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		return input, validate.ErrInvalidJSON
	}
	return input, nil
}

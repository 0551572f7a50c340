// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package shelf

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aischii/mangaWebsite/internal/platform/middleware"
	requestutil "github.com/Aischii/mangaWebsite/internal/platform/request"
	"github.com/Aischii/mangaWebsite/internal/platform/respond"
)

// # Definitions & Constructors

// Handler serves the bookmark and progress endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the shelf routes. Every endpoint requires a session.
//
// # Endpoints
//   - GET    /bookmarks/{mangaID}        : Bookmark state.
//   - PUT    /bookmarks/{mangaID}        : Bookmark.
//   - DELETE /bookmarks/{mangaID}        : Remove bookmark.
//   - POST   /bookmarks/{mangaID}/toggle : Flip bookmark (browser form).
//   - GET    /progress/{mangaID}         : Reading position.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/bookmarks/{mangaID}", handler.bookmarkState)
	router.Put("/bookmarks/{mangaID}", handler.setBookmark)
	router.Delete("/bookmarks/{mangaID}", handler.clearBookmark)
	router.Post("/bookmarks/{mangaID}/toggle", handler.toggleBookmark)
	router.Get("/progress/{mangaID}", handler.progress)

	return router
}

// # Bookmark Endpoints

// GET /api/v1/shelf/bookmarks/{mangaID}
func (handler *Handler) bookmarkState(writer http.ResponseWriter, request *http.Request) {
	userID, mangaID, ok := identify(writer, request)
	if !ok {
		return
	}

	bookmarked, err := handler.service.IsBookmarked(request.Context(), userID, mangaID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, BookmarkState{MangaID: mangaID, Bookmarked: bookmarked})
}

// PUT /api/v1/shelf/bookmarks/{mangaID}
func (handler *Handler) setBookmark(writer http.ResponseWriter, request *http.Request) {
	userID, mangaID, ok := identify(writer, request)
	if !ok {
		return
	}

	if err := handler.service.SetBookmark(request.Context(), userID, mangaID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, BookmarkState{MangaID: mangaID, Bookmarked: true})
}

// DELETE /api/v1/shelf/bookmarks/{mangaID}
func (handler *Handler) clearBookmark(writer http.ResponseWriter, request *http.Request) {
	userID, mangaID, ok := identify(writer, request)
	if !ok {
		return
	}

	if err := handler.service.ClearBookmark(request.Context(), userID, mangaID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, BookmarkState{MangaID: mangaID, Bookmarked: false})
}

/*
ToggleBookmark flips the bookmark.

POST /api/v1/shelf/bookmarks/{mangaID}/toggle

Description: Browser clients are sent back to the page they came from.
*/
func (handler *Handler) toggleBookmark(writer http.ResponseWriter, request *http.Request) {
	userID, mangaID, ok := identify(writer, request)
	if !ok {
		return
	}

	bookmarked, err := handler.service.ToggleBookmark(request.Context(), userID, mangaID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if respond.WantsHTML(request) {
		respond.Back(writer, request, "/")
		return
	}
	respond.OK(writer, BookmarkState{MangaID: mangaID, Bookmarked: bookmarked})
}

// ListBookmarks serves GET /api/v1/me/bookmarks.
func (handler *Handler) ListBookmarks(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookmarks, err := handler.service.ListBookmarks(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, bookmarks)
}

// # Progress Endpoints

// GET /api/v1/shelf/progress/{mangaID}
func (handler *Handler) progress(writer http.ResponseWriter, request *http.Request) {
	userID, mangaID, ok := identify(writer, request)
	if !ok {
		return
	}

	progress, err := handler.service.GetProgress(request.Context(), userID, mangaID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, progress)
}

// identify reads the session user and the {mangaID} parameter, writing the error response itself.
func identify(writer http.ResponseWriter, request *http.Request) (int64, int64, bool) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return 0, 0, false
	}

	mangaID, err := requestutil.ID(request, "mangaID")
	if err != nil {
		respond.Error(writer, request, err)
		return 0, 0, false
	}
	return userID, mangaID, true
}

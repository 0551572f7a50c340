// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aischii/mangaWebsite/internal/platform/constants"
	"github.com/Aischii/mangaWebsite/internal/platform/ctxutil"
	requestutil "github.com/Aischii/mangaWebsite/internal/platform/request"
	"github.com/Aischii/mangaWebsite/internal/platform/respond"
	"github.com/Aischii/mangaWebsite/pkg/pagination"
)

// # Definitions & Constructors

// Handler serves the public read side of the catalog.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the public catalog routes.
//
// # Endpoints
//   - GET /library                      : Filtered, paginated listing.
//   - GET /manga/{slug}                 : Manga detail.
//   - GET /manga/{slug}/{chapterSlug}   : Chapter reader; records progress.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/library", handler.libraryPage)
	router.Get("/manga/{slug}", handler.mangaDetail)
	router.Get("/manga/{slug}/{chapterSlug}", handler.chapterView)

	return router
}

// viewerOf reads the identity and family-safe flag resolved by the middleware chain.
func viewerOf(request *http.Request) Viewer {
	return Viewer{
		UserID:     requestutil.OptionalUserID(request),
		FamilySafe: ctxutil.FamilySafe(request.Context()),
	}
}

/*
LibraryPage lists the catalog.

GET /api/v1/library?q=&genre=&page=

Response:
  - 200: LibraryPage
*/
func (handler *Handler) libraryPage(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()
	query := Query{
		Search: values.Get(FieldSearch),
		Genre:  values.Get(FieldGenre),
		Page:   pagination.FixedFromRequest(request, constants.LibraryPageSize).Page,
	}

	page, err := handler.service.LibraryPage(request.Context(), query, viewerOf(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, page)
}

/*
MangaDetail shows one manga with its grouped chapters.

GET /api/v1/manga/{slug}

Response:
  - 200: MangaDetail
  - 404: Unknown slug
*/
func (handler *Handler) mangaDetail(writer http.ResponseWriter, request *http.Request) {
	detail, err := handler.service.MangaDetail(request.Context(), requestutil.Param(request, "slug"), viewerOf(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

/*
ChapterView shows the pages of one chapter.

GET /api/v1/manga/{slug}/{chapterSlug}

Description: For logged-in readers the chapter becomes their reading
position for the manga.

Response:
  - 200: ChapterView
  - 404: Unknown manga or chapter
*/
func (handler *Handler) chapterView(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.ChapterView(request.Context(),
		requestutil.Param(request, "slug"),
		requestutil.Param(request, "chapterSlug"),
		viewerOf(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

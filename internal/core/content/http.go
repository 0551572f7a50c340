// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/middleware"
	requestutil "github.com/Aischii/mangaWebsite/internal/platform/request"
	"github.com/Aischii/mangaWebsite/internal/platform/respond"
	"github.com/Aischii/mangaWebsite/internal/platform/sec"
	"github.com/Aischii/mangaWebsite/internal/platform/storage"
	"github.com/Aischii/mangaWebsite/internal/platform/validate"
)

// # Definitions & Constructors

// Handler serves the admin catalog endpoints.
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// Routes returns the admin routes. Every endpoint requires the admin role.
//
// # Endpoints
//   - POST   /manga                : Create manga (multipart, optional cover).
//   - PATCH  /manga/{id}           : Update manga (multipart or JSON).
//   - DELETE /manga/{id}           : Delete manga and its folder.
//   - POST   /manga/{id}/chapters  : Create chapter (multipart pages or archive).
//   - PATCH  /chapters/{id}        : Update chapter title or volume.
//   - DELETE /chapters/{id}        : Delete chapter and its folder.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleAdmin))

	router.Post("/manga", handler.createManga)
	router.Patch("/manga/{id}", handler.updateManga)
	router.Delete("/manga/{id}", handler.deleteManga)
	router.Post("/manga/{id}/chapters", handler.createChapter)
	router.Patch("/chapters/{id}", handler.updateChapter)
	router.Delete("/chapters/{id}", handler.deleteChapter)

	return router
}

// # Request Payloads

type mangaPatchRequest struct {
	Title      *string `json:"title"`
	OtherTitle *string `json:"other_title"`
	Author     *string `json:"author"`
	Artist     *string `json:"artist"`
	Genre      *string `json:"genre"`
	Status     *string `json:"status"`
	Type       *string `json:"type"`
	Synopsis   *string `json:"synopsis"`
	Rating     *string `json:"rating"`
}

type chapterPatchRequest struct {
	Title  *string `json:"title"`
	Volume *string `json:"volume"`
}

// # Manga Endpoints

/*
CreateManga uploads a new manga.

POST /api/v1/admin/manga

Request: multipart form with title, other_title, author, artist, genre,
status, type, synopsis, rating and an optional cover file.

Response:
  - 201: library.Manga
  - 409: A manga with the same slug exists
*/
func (handler *Handler) createManga(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.MultipartForm(writer, request, handler.maxUploadBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}
	form := request.MultipartForm

	manga, err := handler.service.CreateManga(request.Context(), MangaInput{
		Title:      formValue(form, FieldTitle),
		OtherTitle: formValue(form, FieldOtherTitle),
		Author:     formValue(form, FieldAuthor),
		Artist:     formValue(form, FieldArtist),
		Genre:      formValue(form, FieldGenre),
		Status:     formValue(form, FieldStatus),
		Type:       formValue(form, FieldType),
		Synopsis:   formValue(form, FieldSynopsis),
		Rating:     formValue(form, FieldRating),
		Cover:      formFile(form, FieldCover),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if respond.WantsHTML(request) {
		respond.SeeOther(writer, request, "/manga/"+manga.Slug)
		return
	}
	respond.Created(writer, manga)
}

// PATCH /api/v1/admin/manga/{id}
func (handler *Handler) updateManga(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch MangaPatch
	if isMultipart(request) {
		if err := requestutil.MultipartForm(writer, request, handler.maxUploadBytes); err != nil {
			respond.Error(writer, request, err)
			return
		}
		form := request.MultipartForm
		patch = MangaPatch{
			Title:      optionalValue(form, FieldTitle),
			OtherTitle: optionalValue(form, FieldOtherTitle),
			Author:     optionalValue(form, FieldAuthor),
			Artist:     optionalValue(form, FieldArtist),
			Genre:      optionalValue(form, FieldGenre),
			Status:     optionalValue(form, FieldStatus),
			Type:       optionalValue(form, FieldType),
			Synopsis:   optionalValue(form, FieldSynopsis),
			Rating:     optionalValue(form, FieldRating),
			Cover:      formFile(form, FieldCover),
		}
	} else {
		var input mangaPatchRequest
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, validate.ErrInvalidJSON)
			return
		}
		patch = MangaPatch{
			Title:      input.Title,
			OtherTitle: input.OtherTitle,
			Author:     input.Author,
			Artist:     input.Artist,
			Genre:      input.Genre,
			Status:     input.Status,
			Type:       input.Type,
			Synopsis:   input.Synopsis,
			Rating:     input.Rating,
		}
	}

	manga, err := handler.service.UpdateManga(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, manga)
}

// DELETE /api/v1/admin/manga/{id}
func (handler *Handler) deleteManga(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteManga(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if respond.WantsHTML(request) {
		respond.SeeOther(writer, request, "/")
		return
	}
	respond.NoContent(writer)
}

// # Chapter Endpoints

/*
CreateChapter uploads a chapter.

POST /api/v1/admin/manga/{id}/chapters

Request: multipart form with title, volume and either "pages" files (upload
order) or one "archive" zip (natural filename order).

Response:
  - 201: library.Chapter
  - 409: A chapter with the same slug exists in the manga
  - 413: Upload over MAX_UPLOAD_BYTES
*/
func (handler *Handler) createChapter(writer http.ResponseWriter, request *http.Request) {
	mangaID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.MultipartForm(writer, request, handler.maxUploadBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}
	form := request.MultipartForm

	pages, closer, err := PageSources(form)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer closer.Close()

	chapter, err := handler.service.CreateChapter(request.Context(), mangaID, ChapterInput{
		Title:  formValue(form, FieldTitle),
		Volume: formValue(form, FieldVolume),
		Pages:  pages,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, chapter)
}

// PATCH /api/v1/admin/chapters/{id}
func (handler *Handler) updateChapter(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input chapterPatchRequest
	if strings.HasPrefix(request.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := request.ParseForm(); err != nil {
			respond.Error(writer, request, apperr.ValidationError("Invalid form payload"))
			return
		}
		if values, ok := request.PostForm[FieldTitle]; ok && len(values) > 0 {
			input.Title = &values[0]
		}
		if values, ok := request.PostForm[FieldVolume]; ok && len(values) > 0 {
			input.Volume = &values[0]
		}
	} else if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	chapter, err := handler.service.UpdateChapter(request.Context(), id, ChapterPatch(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

// DELETE /api/v1/admin/chapters/{id}
func (handler *Handler) deleteChapter(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteChapter(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Helpers

func isMultipart(request *http.Request) bool {
	return strings.HasPrefix(request.Header.Get("Content-Type"), "multipart/form-data")
}

func formValue(form *multipart.Form, field string) string {
	if values := form.Value[field]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// optionalValue returns nil for fields absent from the form.
func optionalValue(form *multipart.Form, field string) *string {
	if values, ok := form.Value[field]; ok && len(values) > 0 {
		return &values[0]
	}
	return nil
}

func formFile(form *multipart.Form, field string) *storage.Source {
	if files := form.File[field]; len(files) > 0 {
		source := FileSource(files[0])
		return &source
	}
	return nil
}

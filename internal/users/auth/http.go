// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/constants"
	"github.com/Aischii/mangaWebsite/internal/platform/middleware"
	requestutil "github.com/Aischii/mangaWebsite/internal/platform/request"
	"github.com/Aischii/mangaWebsite/internal/platform/respond"
	"github.com/Aischii/mangaWebsite/internal/platform/storage"
	"github.com/Aischii/mangaWebsite/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements account and session HTTP endpoints.
type Handler struct {
	authService    *Service
	maxUploadBytes int64
	secureCookies  bool
}

// NewHandler constructs a new [Handler] with its service dependency.
// secureCookies marks cookies Secure and should be set behind HTTPS.
func NewHandler(service *Service, maxUploadBytes int64, secureCookies bool) *Handler {
	return &Handler{
		authService:    service,
		maxUploadBytes: maxUploadBytes,
		secureCookies:  secureCookies,
	}
}

// Routes returns the session endpoints mounted under /auth.
//
// # Endpoints
//   - POST /register : Creates a new account.
//   - POST /login    : Opens a session and sets the session cookie.
//   - POST /logout   : Revokes the current session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
	})

	return router
}

// RegisterProfileRoutes attaches the /me endpoints to router.
//
// The family-safe toggle stays public: anonymous visitors keep their choice in a cookie.
func (handler *Handler) RegisterProfileRoutes(router chi.Router) {
	router.Post("/family-safe", handler.toggleFamilySafe)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", handler.getProfile)
		r.Patch("/", handler.updateProfile)
	})
}

// # Request Payloads

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Nickname *string `json:"nickname"`
}

type familySafeResponse struct {
	FamilySafe bool `json:"family_safe"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Response:
  - 201: Profile of the created account
  - 400: Validation failure
  - 409: Username already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	input, err := decodeCredentials(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if respond.WantsHTML(request) {
		respond.SeeOther(writer, request, constants.LoginPath)
		return
	}
	respond.Created(writer, handler.authService.toProfile(user))
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: The token is returned in the body and set as an HttpOnly
cookie. Browser form posts are redirected to the local "next" path.

Response:
  - 200: Session
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	input, err := decodeCredentials(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(handler.authService.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	if respond.WantsHTML(request) {
		respond.SeeOther(writer, request, localPath(request.URL.Query().Get("next"), "/"))
		return
	}
	respond.OK(writer, session)
}

// Logout revokes the session and clears the cookie.
//
// POST /api/v1/auth/logout
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), claims.SessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	if respond.WantsHTML(request) {
		respond.SeeOther(writer, request, "/")
		return
	}
	respond.NoContent(writer)
}

// # Profile Endpoints

// GET /api/v1/me
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.authService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

/*
UpdateProfile edits the nickname and avatar.

PATCH /api/v1/me

Request:
  - JSON body {"nickname": "..."}, or
  - multipart form with optional "nickname" field and "avatar" file

Response:
  - 200: Updated profile
  - 400: Invalid payload or avatar type
  - 413: Upload over the configured limit
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ProfileInput

	if strings.HasPrefix(request.Header.Get("Content-Type"), "multipart/form-data") {
		if err := requestutil.MultipartForm(writer, request, handler.maxUploadBytes); err != nil {
			respond.Error(writer, request, err)
			return
		}

		if values, ok := request.MultipartForm.Value[FieldNickname]; ok && len(values) > 0 {
			nickname := values[0]
			input.Nickname = &nickname
		}
		if files := request.MultipartForm.File[FieldAvatar]; len(files) > 0 {
			source := fileSource(files[0])
			input.Avatar = &source
		}
	} else {
		var body profileRequest
		if err := requestutil.DecodeJSON(request, &body); err != nil {
			respond.Error(writer, request, validate.ErrInvalidJSON)
			return
		}
		input.Nickname = body.Nickname
	}

	profile, err := handler.authService.UpdateProfile(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if respond.WantsHTML(request) {
		respond.Back(writer, request, "/")
		return
	}
	respond.OK(writer, profile)
}

/*
ToggleFamilySafe flips the viewer's family-safe preference.

POST /api/v1/me/family-safe

Description: Logged-in users have the flag stored on their account;
anonymous visitors get it in a long-lived cookie.
*/
func (handler *Handler) toggleFamilySafe(writer http.ResponseWriter, request *http.Request) {
	var enabled bool

	if claims := requestutil.Claims(request); claims != nil {
		toggled, err := handler.authService.ToggleFamilySafe(request.Context(), claims.UserID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		enabled = toggled
	} else {
		enabled = !middleware.AnonymousFamilySafe(request)

		value := "0"
		if enabled {
			value = "1"
		}
		http.SetCookie(writer, &http.Cookie{
			Name:     constants.FamilySafeCookieName,
			Value:    value,
			Path:     "/",
			MaxAge:   familySafeCookieMaxAge,
			HttpOnly: true,
			Secure:   handler.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if respond.WantsHTML(request) {
		respond.Back(writer, request, "/")
		return
	}
	respond.OK(writer, familySafeResponse{FamilySafe: enabled})
}

// # Helpers

// decodeCredentials accepts either a JSON body or a urlencoded login form.
func decodeCredentials(request *http.Request) (credentialsRequest, error) {
	var input credentialsRequest

	if strings.HasPrefix(request.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := request.ParseForm(); err != nil {
			return input, apperr.ValidationError("Invalid form payload")
		}
		input.Username = request.PostForm.Get(FieldUsername)
		input.Password = request.PostForm.Get(FieldPassword)
		return input, nil
	}

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		return input, validate.ErrInvalidJSON
	}
	return input, nil
}

func fileSource(header *multipart.FileHeader) storage.Source {
	return storage.Source{
		Name: header.Filename,
		Open: func() (io.ReadCloser, error) { return header.Open() },
	}
}

// localPath accepts only same-site absolute paths to avoid open redirects.
func localPath(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

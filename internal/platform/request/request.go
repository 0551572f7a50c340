// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/ctxutil"
	"github.com/Aischii/mangaWebsite/internal/platform/sec"
	"github.com/Aischii/mangaWebsite/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID parses a named numeric URL parameter.

Returns:
  - int64: the positive identifier
  - error: apperr.NotFound when the segment is not a positive integer
*/
func ID(request *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(request, name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.NotFound("Resource")
	}
	return id, nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
MultipartForm parses a multipart body of at most maxBytes.

An oversized body is reported as PAYLOAD_TOO_LARGE, anything else as a
validation failure.
*/
func MultipartForm(writer http.ResponseWriter, request *http.Request, maxBytes int64) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBytes)

	// Parts above 32 MiB spill to temporary files
	if err := request.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.PayloadTooLarge(maxBytes)
		}
		return apperr.ValidationError("Invalid multipart payload")
	}
	return nil
}

/*
Claims extracts the authenticated session claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the session claims.

Returns:
  - *sec.AuthClaims: The authenticated session claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

/*
RequiredUserID returns the ID of the currently logged-in user.

Returns:
  - int64: user id
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (int64, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// OptionalUserID returns the logged-in user's ID, or 0 for anonymous visitors.
func OptionalUserID(request *http.Request) int64 {
	if claims := Claims(request); claims != nil {
		return claims.UserID
	}
	return 0
}

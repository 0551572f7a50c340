// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/constants"
	"github.com/Aischii/mangaWebsite/internal/platform/ctxutil"
	"github.com/Aischii/mangaWebsite/internal/platform/respond"
	"github.com/Aischii/mangaWebsite/internal/platform/sec"
)

// TokenVerifier checks the signature and expiry of a session token.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// SessionChecker reports whether a session id is still live (not logged out or expired).
type SessionChecker interface {
	SessionActive(ctx context.Context, sessionID string) (bool, error)
}

// PreferenceLookup resolves the stored family-safe flag of a registered user.
type PreferenceLookup interface {
	FamilySafe(ctx context.Context, userID int64) (bool, error)
}

/*
Authenticate resolves the session of the caller, if any.

Flow:
 1. A Bearer header wins over the session cookie; a bad Bearer token is a 401.
 2. A bad or revoked cookie is dropped and the request continues anonymously.
 3. A valid token must still name a live session in the session store.
 4. The claims are injected into the request context for downstream use.
*/
func Authenticate(verifier TokenVerifier, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			tokenStr, fromHeader, err := extractToken(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// Anonymous access
			if tokenStr == "" {
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				if fromHeader {
					respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
					return
				}
				clearSessionCookie(writer)
				next.ServeHTTP(writer, request)
				return
			}

			active, err := sessions.SessionActive(request.Context(), claims.SessionID)
			if err != nil {
				respond.Error(writer, request, apperr.StorageUnavailable(err))
				return
			}
			if !active {
				if fromHeader {
					respond.Error(writer, request, apperr.Unauthorized("Session has ended"))
					return
				}
				clearSessionCookie(writer)
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.Int64("user_id", claims.UserID)))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

func extractToken(request *http.Request) (string, bool, error) {
	if authHeader := request.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", true, apperr.Unauthorized("Invalid authorization format")
		}
		return parts[1], true, nil
	}

	cookie, err := request.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false, nil
	}
	return cookie.Value, false, nil
}

func clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

/*
ViewerPreferences resolves the family-safe flag of the viewer.

Authenticated viewers use their stored preference; anonymous visitors use the
family_safe cookie, where anything other than "0" or "false" means filtered.
A failed lookup falls back to filtered.
*/
func ViewerPreferences(lookup PreferenceLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			familySafe := true

			if claims := ctxutil.GetAuthUser(request.Context()); claims != nil {
				stored, err := lookup.FamilySafe(request.Context(), claims.UserID)
				if err != nil {
					ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "family_safe_lookup_failed",
						slog.Any("error", err),
					)
				} else {
					familySafe = stored
				}
			} else {
				familySafe = AnonymousFamilySafe(request)
			}

			ctx := ctxutil.WithFamilySafe(request.Context(), familySafe)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// AnonymousFamilySafe reads the visitor cookie. Absent means filtered.
func AnonymousFamilySafe(request *http.Request) bool {
	cookie, err := request.Cookie(constants.FamilySafeCookieName)
	if err != nil {
		return true
	}
	switch cookie.Value {
	case "0", "false":
		return false
	default:
		return true
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Browsers asking for HTML are redirected to the login page; API clients get 401.
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			rejectAnonymous(writer, request)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated user doesn't have the required role.
//
// It implies [RequireAuth] so you don't need to mount both.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())

			if claims == nil {
				rejectAnonymous(writer, request)
				return
			}

			if !sec.UserRole(claims.Role).AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

func rejectAnonymous(writer http.ResponseWriter, request *http.Request) {
	if respond.WantsHTML(request) {
		location := constants.LoginPath + "?next=" + url.QueryEscape(request.URL.RequestURI())
		respond.SeeOther(writer, request, location)
		return
	}
	respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
}

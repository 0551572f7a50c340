// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aischii/mangaWebsite/internal/platform/constants"
	"github.com/Aischii/mangaWebsite/internal/platform/middleware"
	"github.com/Aischii/mangaWebsite/internal/users/auth"
)

func newRouter(f *fixture) http.Handler {
	handler := auth.NewHandler(f.service, 1<<20, false)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(f.tokens, f.service))
	router.Mount("/auth", handler.Routes())
	router.Route("/me", handler.RegisterProfileRoutes)
	return router
}

/*
TestHandler_LoginSetsCookie verifies the session cookie authenticates /me.
*/
func TestHandler_LoginSetsCookie(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	_, err := f.service.Register(context.Background(), auth.RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	login := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"secret1"}`))
	login.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, login)
	require.Equal(t, http.StatusOK, recorder.Code)

	var session *http.Cookie
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.SessionCookieName {
			session = cookie
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	me := httptest.NewRequest(http.MethodGet, "/me/", nil)
	me.AddCookie(session)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, me)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data auth.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Data.Username)
}

/*
TestHandler_LoginFormRedirects verifies browser form logins follow a local next path only.
*/
func TestHandler_LoginFormRedirects(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	_, err := f.service.Register(context.Background(), auth.RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	tests := []struct {
		next string
		want string
	}{
		{"/manga/one-piece", "/manga/one-piece"},
		{"//evil.example", "/"},
		{"https://evil.example", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/auth/login?next="+tt.next, strings.NewReader("username=alice&password=secret1"))
			request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			request.Header.Set("Accept", "text/html")
			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusSeeOther, recorder.Code)
			assert.Equal(t, tt.want, recorder.Header().Get("Location"))
		})
	}
}

/*
TestHandler_AnonymousFamilySafe verifies the toggle writes the visitor cookie.
*/
func TestHandler_AnonymousFamilySafe(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	request := httptest.NewRequest(http.MethodPost, "/me/family-safe", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"family_safe":false`)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, constants.FamilySafeCookieName, cookies[0].Name)
	assert.Equal(t, "0", cookies[0].Value)

	again := httptest.NewRequest(http.MethodPost, "/me/family-safe", nil)
	again.AddCookie(cookies[0])
	again.Header.Set("Accept", "text/html")
	again.Header.Set("Referer", "http://example.com/library?page=2")
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, again)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/library?page=2", recorder.Header().Get("Location"))
}

/*
TestHandler_ProfileRequiresAuth verifies anonymous JSON clients get 401.
*/
func TestHandler_ProfileRequiresAuth(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/me/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

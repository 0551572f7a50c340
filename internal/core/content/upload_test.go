// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content_test

import (
	"archive/zip"
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aischii/mangaWebsite/internal/core/content"
	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
)

// parseForm round-trips a multipart body through net/http to get real FileHeaders.
func parseForm(t *testing.T, build func(writer *multipart.Writer)) *multipart.Form {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	build(writer)
	require.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, "/", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, request.ParseMultipartForm(1<<20))
	return request.MultipartForm
}

func addFile(t *testing.T, writer *multipart.Writer, field, name string, data []byte) {
	t.Helper()
	part, err := writer.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
}

func names(t *testing.T, form *multipart.Form) []string {
	t.Helper()
	pages, closer, err := content.PageSources(form)
	require.NoError(t, err)
	defer closer.Close()

	out := make([]string, 0, len(pages))
	for _, page := range pages {
		reader, err := page.Open()
		require.NoError(t, err)
		_, err = io.ReadAll(reader)
		require.NoError(t, err)
		require.NoError(t, reader.Close())
		out = append(out, page.Name)
	}
	return out
}

/*
TestPageSources_UploadOrder verifies posted pages keep their upload order.
*/
func TestPageSources_UploadOrder(t *testing.T) {
	form := parseForm(t, func(writer *multipart.Writer) {
		addFile(t, writer, "pages", "b.jpg", []byte("b"))
		addFile(t, writer, "pages", "a.jpg", []byte("a"))
	})

	assert.Equal(t, []string{"b.jpg", "a.jpg"}, names(t, form))
}

/*
TestPageSources_Archive verifies zip entries are filtered and naturally ordered.
*/
func TestPageSources_Archive(t *testing.T) {
	var archive bytes.Buffer
	zipWriter := zip.NewWriter(&archive)
	for _, name := range []string{"ch/page10.jpg", "ch/page2.jpg", "ch/page1.png", "ch/readme.txt", "__MACOSX/ch/._page1.png", "ch/"} {
		entry, err := zipWriter.Create(name)
		require.NoError(t, err)
		_, _ = entry.Write([]byte(name))
	}
	require.NoError(t, zipWriter.Close())

	form := parseForm(t, func(writer *multipart.Writer) {
		addFile(t, writer, "archive", "chapter.zip", archive.Bytes())
	})

	assert.Equal(t, []string{"page1.png", "page2.jpg", "page10.jpg"}, names(t, form))
}

/*
TestPageSources_Invalid verifies missing pages and broken archives are validation failures.
*/
func TestPageSources_Invalid(t *testing.T) {
	empty := parseForm(t, func(writer *multipart.Writer) {
		require.NoError(t, writer.WriteField("title", "x"))
	})
	_, _, err := content.PageSources(empty)
	assert.Equal(t, apperr.CodeValidation, apperr.As(err).Code)

	broken := parseForm(t, func(writer *multipart.Writer) {
		addFile(t, writer, "archive", "chapter.zip", []byte("not a zip"))
	})
	_, _, err = content.PageSources(broken)
	assert.Equal(t, apperr.CodeValidation, apperr.As(err).Code)
}

/*
TestRebasePaths verifies only paths under the old prefix move.
*/
func TestRebasePaths(t *testing.T) {
	paths := []string{"berserk/ch-1/001.jpg", "berserk-2/cover.jpg", "other/berserk/x.jpg"}
	rebased := content.RebasePaths(paths, "berserk", "guts")

	assert.Equal(t, []string{"guts/ch-1/001.jpg", "berserk-2/cover.jpg", "other/berserk/x.jpg"}, rebased)
	assert.Equal(t, "berserk/ch-1/001.jpg", paths[0], "input untouched")
	assert.Equal(t, "Vinland Saga", content.TitleFromSlug("vinland-saga"))
}

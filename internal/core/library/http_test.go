// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aischii/mangaWebsite/internal/core/library"
)

type libraryResponse struct {
	Data struct {
		Items      []json.RawMessage `json:"items"`
		Pagination struct {
			Page       int `json:"page"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	} `json:"data"`
}

/*
TestHandler_LibraryPageNumbers verifies out-of-range and malformed page numbers
render a normal listing instead of failing.
*/
func TestHandler_LibraryPageNumbers(t *testing.T) {
	service := newService(seedCatalog(), newMemoryShelf(), fixedReactions{})
	router := library.NewHandler(service).Routes()

	tests := []struct {
		name  string
		query string
		items int
	}{
		{"first", "", 10},
		{"last_partial", "?page=3", 2},
		{"past_end", "?page=4", 0},
		{"max_int", "?page=9223372036854775807", 0},
		{"overflowing", "?page=99999999999999999999", 10},
		{"negative", "?page=-5", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/library"+tt.query, nil)
			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)

			require.Equal(t, http.StatusOK, recorder.Code)

			var body libraryResponse
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Len(t, body.Data.Items, tt.items)
			assert.Equal(t, 3, body.Data.Pagination.TotalPages)
		})
	}
}

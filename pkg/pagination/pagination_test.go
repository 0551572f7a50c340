// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aischii/mangaWebsite/pkg/pagination"
)

/*
TestSlice verifies page windows, including the last partial page.
*/
func TestSlice(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i + 1
	}

	tests := []struct {
		page  int
		count int
		first int
	}{
		{1, 10, 1},
		{2, 10, 11},
		{3, 3, 21},
		{4, 0, 0},
	}

	for _, tt := range tests {
		page, meta := pagination.Slice(items, pagination.Params{Page: tt.page, Limit: 10})

		assert.Len(t, page, tt.count)
		assert.Equal(t, 3, meta.TotalPages)
		assert.Equal(t, 23, meta.Total)
		if tt.count > 0 {
			assert.Equal(t, tt.first, page[0])
		}
	}
}

/*
TestSlice_HugePage verifies a page number near the int limit yields an empty page.
*/
func TestSlice_HugePage(t *testing.T) {
	items := make([]int, 23)

	for _, page := range []int{math.MaxInt, math.MaxInt / 10, math.MaxInt/10 + 2} {
		window, meta := pagination.Slice(items, pagination.Params{Page: page, Limit: 10})
		assert.Empty(t, window)
		assert.NotNil(t, window)
		assert.Equal(t, 3, meta.TotalPages)
	}

	assert.Equal(t, math.MaxInt, pagination.Params{Page: math.MaxInt, Limit: 10}.Offset())
}

/*
TestNewMeta_Empty verifies an empty result has zero pages.
*/
func TestNewMeta_Empty(t *testing.T) {
	assert.Equal(t, 0, pagination.NewMeta(1, 10, 0).TotalPages)
	assert.Equal(t, 1, pagination.NewMeta(1, 10, 10).TotalPages)
	assert.Equal(t, 2, pagination.NewMeta(1, 10, 11).TotalPages)
}

/*
TestFixedFromRequest verifies page clamping.
*/
func TestFixedFromRequest(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"?page=3", 3},
		{"?page=0", 1},
		{"?page=-2", 1},
		{"?page=abc", 1},
		{"?page=9223372036854775807", 9223372036854775807},
	}

	for _, tt := range tests {
		request := httptest.NewRequest(http.MethodGet, "/library"+tt.query, nil)
		params := pagination.FixedFromRequest(request, 10)
		assert.Equal(t, tt.want, params.Page, tt.query)
		assert.Equal(t, 10, params.Limit)
	}
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for list endpoints.
//
// Pages are 1-indexed. The total page count is ceil(total / limit), so an
// empty result still reports zero pages.
package pagination

import (
	"math"
	"net/http"
	"strconv"
)

// DefaultPage is the starting page (1-indexed).
const DefaultPage = 1

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the zero-based index of the first item on the page.
// It saturates at math.MaxInt instead of overflowing for huge pages.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta constructs pagination metadata for a response.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Slice returns the items of one page and its metadata.
// A page past the end yields an empty slice.
func Slice[T any](items []T, params Params) ([]T, Meta) {
	meta := NewMeta(params.Page, params.Limit, len(items))

	start := params.Offset()
	if params.Limit <= 0 || start >= len(items) {
		return []T{}, meta
	}

	end := start + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}

// FixedFromRequest parses only "page"; the page size is fixed by the caller.
func FixedFromRequest(r *http.Request, limit int) Params {
	page := parseIntParam(r, "page", DefaultPage)
	if page < 1 {
		page = DefaultPage
	}
	return Params{Page: page, Limit: limit}
}

func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}

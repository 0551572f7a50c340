// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/Aischii/mangaWebsite/internal/platform/constants"
	"github.com/Aischii/mangaWebsite/pkg/pagination"
	"github.com/Aischii/mangaWebsite/pkg/slice"
)

// # Genres

// SplitGenres splits a comma-joined genre string into trimmed, non-empty tokens.
func SplitGenres(genre string) []string {
	parts := strings.Split(genre, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if token := strings.TrimSpace(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// GenreUniverse returns the deduplicated union of every manga's genre tokens,
// sorted case-insensitively.
func GenreUniverse(list []Manga) []string {
	var all []string
	for i := range list {
		all = append(all, list[i].Genres()...)
	}

	genres := slice.Unique(all)
	slices.SortFunc(genres, func(a, b string) int {
		return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return genres
}

// # Hot and New

// HotSet returns the ids of manga with at least threshold chapters.
func HotSet(counts map[int64]int, threshold int) map[int64]bool {
	hot := make(map[int64]bool)
	for id, count := range counts {
		if count >= threshold {
			hot[id] = true
		}
	}
	return hot
}

// Newest returns the n manga with the highest ids, highest first.
func Newest(list []Manga, n int) []Manga {
	sorted := slices.Clone(list)
	slices.SortFunc(sorted, func(a, b Manga) int { return cmp.Compare(b.ID, a.ID) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// # Filtering

// VisibleTo drops adult titles for family-safe viewers.
func VisibleTo(list []Manga, familySafe bool) []Manga {
	if !familySafe {
		return slice.Filter(list, func(Manga) bool { return true })
	}
	return slice.Filter(list, func(manga Manga) bool { return !manga.Adult() })
}

/*
Filter applies the library listing filters.

Description: The search matches title or other title case-insensitively; the
genre must equal one of the manga's tokens, ignoring case. Adult titles are
always removed for family-safe viewers, whatever the other filters are.
*/
func Filter(list []Manga, query Query, familySafe bool) []Manga {
	search := strings.ToLower(strings.TrimSpace(query.Search))
	genre := strings.TrimSpace(query.Genre)

	return slice.Filter(VisibleTo(list, familySafe), func(manga Manga) bool {
		if search != "" &&
			!strings.Contains(strings.ToLower(manga.Title), search) &&
			!strings.Contains(strings.ToLower(manga.OtherTitle), search) {
			return false
		}

		if genre != "" && !slices.ContainsFunc(manga.Genres(), func(token string) bool {
			return strings.EqualFold(token, genre)
		}) {
			return false
		}
		return true
	})
}

// Paginate returns one fixed-size page of the filtered list.
func Paginate(list []Manga, page int) ([]Manga, pagination.Meta) {
	return pagination.Slice(list, pagination.Params{Page: page, Limit: constants.LibraryPageSize})
}

// # Volume Grouping

/*
GroupVolumes groups chapters for the detail page.

Description: The unknown volume comes first, then numeric volumes from the
highest down, then one Specials group holding every other label. Chapters
inside each group run newest first, ties broken by the higher id.
*/
func GroupVolumes(chapters []Chapter) []VolumeGroup {
	var unknown, specials []Chapter
	numeric := make(map[float64][]Chapter)

	for _, chapter := range chapters {
		volume := NormalizeVolume(chapter.Volume)
		if volume == constants.UnknownVolume {
			unknown = append(unknown, chapter)
			continue
		}
		if number, ok := volumeNumber(volume); ok {
			numeric[number] = append(numeric[number], chapter)
			continue
		}
		specials = append(specials, chapter)
	}

	var groups []VolumeGroup
	if len(unknown) > 0 {
		groups = append(groups, newGroup(constants.UnknownVolume, unknown))
	}

	numbers := make([]float64, 0, len(numeric))
	for number := range numeric {
		numbers = append(numbers, number)
	}
	slices.SortFunc(numbers, func(a, b float64) int { return cmp.Compare(b, a) })

	for _, number := range numbers {
		label := "Volume " + strconv.FormatFloat(number, 'f', -1, 64)
		groups = append(groups, newGroup(label, numeric[number]))
	}

	if len(specials) > 0 {
		groups = append(groups, newGroup(constants.SpecialsVolume, specials))
	}
	return groups
}

func newGroup(label string, chapters []Chapter) VolumeGroup {
	sorted := slices.Clone(chapters)
	slices.SortFunc(sorted, newestFirst)
	return VolumeGroup{
		Label:    label,
		Chapters: slice.Map(sorted, func(chapter Chapter) ChapterLink { return chapter.Link() }),
	}
}

func newestFirst(a, b Chapter) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

// volumeNumber parses "3", "3.5" or "Volume 3" as a volume number.
// Only plain decimals count: "NaN", "Inf", "1e3" and "0x10" are labels.
func volumeNumber(volume string) (float64, bool) {
	trimmed := strings.TrimSpace(volume)
	lower := strings.ToLower(trimmed)
	for _, prefix := range []string{"volume", "vol."} {
		if strings.HasPrefix(lower, prefix) {
			trimmed = strings.TrimSpace(trimmed[len(prefix):])
			break
		}
	}

	if !plainDecimal(trimmed) {
		return 0, false
	}

	number, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}

// plainDecimal reports whether value is digits with at most one inner dot.
func plainDecimal(value string) bool {
	whole, fraction, hasDot := strings.Cut(value, ".")
	if whole == "" || (hasDot && fraction == "") {
		return false
	}
	return strings.Trim(whole, "0123456789") == "" && strings.Trim(fraction, "0123456789") == ""
}

// # Related Titles

type scored struct {
	manga Manga
	score int
}

/*
Related scores every other manga against target.

Description: An identical non-empty author adds 2; each of target's genre
tokens found (case-insensitive substring) in the candidate's genre string
adds 1. Zero scores are dropped; the rest are sorted by score, then by the
newer id, and capped at limit. Family-safe viewers never see adult titles.
*/
func Related(target Manga, all []Manga, familySafe bool, limit int) []Manga {
	tokens := slice.Map(target.Genres(), strings.ToLower)

	var candidates []scored
	for _, candidate := range VisibleTo(all, familySafe) {
		if candidate.ID == target.ID {
			continue
		}

		score := 0
		if target.Author != "" && candidate.Author == target.Author {
			score += 2
		}

		genre := strings.ToLower(candidate.Genre)
		for _, token := range tokens {
			if strings.Contains(genre, token) {
				score++
			}
		}

		if score > 0 {
			candidates = append(candidates, scored{manga: candidate, score: score})
		}
	}

	slices.SortStableFunc(candidates, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(b.manga.ID, a.manga.ID)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return slice.Map(candidates, func(entry scored) Manga { return entry.manga })
}

// # Navigation

// Neighbours returns the chapters before and after the one with id in reading order.
func Neighbours(ordered []Chapter, id int64) (previous, next *ChapterLink) {
	index := slices.IndexFunc(ordered, func(chapter Chapter) bool { return chapter.ID == id })
	if index < 0 {
		return nil, nil
	}

	if index > 0 {
		link := ordered[index-1].Link()
		previous = &link
	}
	if index < len(ordered)-1 {
		link := ordered[index+1].Link()
		next = &link
	}
	return previous, next
}

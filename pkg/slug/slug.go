// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug derives the public identifier of a manga or chapter from its title.
//
// A slug doubles as a directory name under the media root, so the same title
// must always give the same slug and a slug fed back in must come out unchanged.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// From lowercases the title and replaces every whitespace run with one hyphen.
//
// Path separators are treated like whitespace so a slug can never escape its
// parent directory. Leading and trailing whitespace is dropped.
func From(title string) string {
	lowered := cases.Lower(language.Und).String(norm.NFC.String(title))

	var builder strings.Builder
	builder.Grow(len(lowered))

	pendingHyphen := false
	for _, r := range strings.TrimSpace(lowered) {
		if unicode.IsSpace(r) || r == '/' || r == '\\' || r == 0 {
			pendingHyphen = true
			continue
		}
		if pendingHyphen && builder.Len() > 0 {
			builder.WriteByte('-')
		}
		pendingHyphen = false
		builder.WriteRune(r)
	}

	return builder.String()
}

// Valid reports whether s can be used as a directory name.
func Valid(s string) bool {
	return s != "" && s != "." && s != ".." && From(s) == s
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package natsort orders file names the way a reader expects: digit runs
// compare by numeric value, so page2.jpg sorts before page10.jpg.
package natsort

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Strings sorts names in place in natural order.
func Strings(names []string) {
	// Collators are not safe for concurrent use
	collator := collate.New(language.Und, collate.Numeric)

	sort.SliceStable(names, func(i, j int) bool {
		return less(collator, names[i], names[j])
	})
}

func less(collator *collate.Collator, a, b string) bool {
	if order := collator.CompareString(a, b); order != 0 {
		return order < 0
	}
	return strings.Compare(a, b) < 0
}

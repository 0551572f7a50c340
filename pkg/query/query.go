// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-shaped URL query parameters.
package query

import (
	"strconv"
	"strings"
)

// Int64List parses a comma-separated list of positive identifiers.
// Invalid and non-positive entries are dropped; duplicates are kept once.
func Int64List(val string) []int64 {
	var res []int64
	seen := make(map[int64]struct{})
	for _, part := range StringSlice(val) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id < 1 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}

// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

// Package query parses list-valued URL query parameters.
package query

import "strings"

// StringSlice splits a comma-separated query value into a trimmed slice.
// Empty entries are dropped; an empty input yields nil.
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

// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

// Package sanitize strips markup from user-supplied text before it is
// persisted or echoed back to other readers.
//
// # Policy
//
// Inkpost renders post content from typed blocks, not raw HTML, so every
// free-text field (titles, descriptions, comment bodies, text blocks) is
// reduced to plain text with bluemonday's strict policy.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every HTML element and attribute.
var strict = bluemonday.StrictPolicy()

// Text strips all markup from a free-text field and trims whitespace.
func Text(value string) string {
	return strings.TrimSpace(strict.Sanitize(value))
}

// TextSlice applies [Text] to every element, dropping entries that become empty.
func TextSlice(values []string) []string {
	if values == nil {
		return nil
	}

	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		if clean := Text(value); clean != "" {
			cleaned = append(cleaned, clean)
		}
	}
	return cleaned
}

// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// It standardizes cursor-based navigation: clients pass the ID of the last
// item they have seen and receive the next page plus a "next_cursor" to
// continue from. UUIDv7 primary keys make the ID itself a stable,
// time-ordered cursor, so pages stay consistent while new items are inserted
// at the head of the feed.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page to prevent system abuse.
	MaxLimit = 100
)

// # Sort Modes

// Sort selects the ordering of a cursor-paginated feed.
type Sort string

const (
	// SortNewest orders by descending ID (most recent first).
	SortNewest Sort = "newest"
	// SortOldest orders by ascending ID (oldest first).
	SortOldest Sort = "oldest"
	// SortTop orders by descending like count, with descending ID as the
	// tiebreak so the ordering is total and the cursor unambiguous.
	SortTop Sort = "top"
)

// IsValid reports whether the sort mode is one of the supported values.
func (s Sort) IsValid() bool {
	switch s {
	case SortNewest, SortOldest, SortTop:
		return true
	}
	return false
}

// # Request Parsing

// Params holds the parsed cursor, limit and sort from a request's query string.
type Params struct {
	// Cursor is the ID of the last item of the previous page.
	// Empty means "start from the beginning of the feed".
	Cursor string
	Limit  int
	Sort   Sort
}

// FromRequest parses "cursor", "limit" and "sort" query parameters.
//
// # Clamping
//
// Invalid, negative, or excessive limits are clamped to [DefaultLimit] or
// [MaxLimit]. An unknown sort falls back to [SortNewest]; callers that want
// to reject unknown sorts instead should validate the raw parameter first.
func FromRequest(r *http.Request) Params {
	limit := parseIntParam(r, "limit", DefaultLimit)
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	sort := Sort(r.URL.Query().Get("sort"))
	if !sort.IsValid() {
		sort = SortNewest
	}

	return Params{
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
		Sort:   sort,
	}
}

// # Response Metadata

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	// NextCursor is the ID to pass as "cursor" for the following page.
	// It is null exactly when this page is the last one.
	NextCursor *string `json:"next_cursor"`
	Limit      int     `json:"limit"`
	Sort       Sort    `json:"sort"`
}

// NewMeta constructs pagination metadata for a response.
//
// A next cursor is emitted only when the page came back full: a short page
// proves the feed is exhausted, while a full page may have more behind it.
func NewMeta(lastID string, count int, params Params) Meta {
	meta := Meta{
		Limit: params.Limit,
		Sort:  params.Sort,
	}

	if count == params.Limit && lastID != "" {
		meta.NextCursor = &lastID
	}

	return meta
}

// parseIntParam parses a single integer query parameter with a fallback default.
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

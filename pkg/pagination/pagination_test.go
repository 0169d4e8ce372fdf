// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRequest_Defaults(t *testing.T) {
	request := httptest.NewRequest("GET", "/posts", nil)

	params := FromRequest(request)

	assert.Equal(t, "", params.Cursor)
	assert.Equal(t, DefaultLimit, params.Limit)
	assert.Equal(t, SortNewest, params.Sort)
}

func TestFromRequest_Clamping(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		expected int
	}{
		{name: "negative limit", query: "limit=-5", expected: DefaultLimit},
		{name: "zero limit", query: "limit=0", expected: DefaultLimit},
		{name: "excessive limit", query: "limit=5000", expected: DefaultLimit},
		{name: "garbage limit", query: "limit=abc", expected: DefaultLimit},
		{name: "valid limit", query: "limit=42", expected: 42},
		{name: "max limit", query: "limit=100", expected: 100},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/posts?"+testCase.query, nil)
			assert.Equal(t, testCase.expected, FromRequest(request).Limit)
		})
	}
}

func TestFromRequest_SortModes(t *testing.T) {
	testCases := []struct {
		raw      string
		expected Sort
	}{
		{raw: "newest", expected: SortNewest},
		{raw: "oldest", expected: SortOldest},
		{raw: "top", expected: SortTop},
		{raw: "trending", expected: SortNewest},
		{raw: "", expected: SortNewest},
	}

	for _, testCase := range testCases {
		request := httptest.NewRequest("GET", "/posts?sort="+testCase.raw, nil)
		assert.Equal(t, testCase.expected, FromRequest(request).Sort)
	}
}

func TestNewMeta_FullPageEmitsCursor(t *testing.T) {
	params := Params{Limit: 3, Sort: SortNewest}

	meta := NewMeta("0192aaaa-0000-7000-8000-000000000003", 3, params)

	require.NotNil(t, meta.NextCursor)
	assert.Equal(t, "0192aaaa-0000-7000-8000-000000000003", *meta.NextCursor)
	assert.Equal(t, 3, meta.Limit)
	assert.Equal(t, SortNewest, meta.Sort)
}

func TestNewMeta_ShortPageEndsFeed(t *testing.T) {
	params := Params{Limit: 10, Sort: SortTop}

	meta := NewMeta("0192aaaa-0000-7000-8000-000000000002", 2, params)

	assert.Nil(t, meta.NextCursor)
}

func TestNewMeta_EmptyPage(t *testing.T) {
	params := Params{Limit: 10, Sort: SortOldest}

	meta := NewMeta("", 0, params)

	assert.Nil(t, meta.NextCursor)
}

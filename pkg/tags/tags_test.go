// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple lowercase", input: "golang", expected: "golang"},
		{name: "uppercase", input: "GoLang", expected: "golang"},
		{name: "spaces to hyphens", input: "distributed systems", expected: "distributed-systems"},
		{name: "accents removed", input: "Café Culture", expected: "cafe-culture"},
		{name: "special chars", input: "c++ & rust!", expected: "c-rust"},
		{name: "leading trailing junk", input: "  #devops  ", expected: "devops"},
		{name: "consecutive separators", input: "web -- dev", expected: "web-dev"},
		{name: "empty", input: "", expected: ""},
		{name: "only symbols", input: "!!!", expected: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Normalize(testCase.input))
		})
	}
}

func TestNormalizeAll_DeduplicatesAfterNormalization(t *testing.T) {
	result := NormalizeAll([]string{"Café", "cafe", "CAFE!", "golang"})

	assert.Equal(t, []string{"cafe", "golang"}, result)
}

func TestNormalizeAll_DropsEmpties(t *testing.T) {
	result := NormalizeAll([]string{"", "   ", "!!!", "real-tag"})

	assert.Equal(t, []string{"real-tag"}, result)
}

func TestNormalizeAll_NilForNoSurvivors(t *testing.T) {
	assert.Nil(t, NormalizeAll(nil))
	assert.Nil(t, NormalizeAll([]string{"!!!"}))
}

package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "short body unchanged",
			content:  "short",
			expected: "short",
		},
		{
			name:     "empty body unchanged",
			content:  "",
			expected: "",
		},
		{
			name:     "exactly at the limit unchanged",
			content:  strings.Repeat("x", 75),
			expected: strings.Repeat("x", 75),
		},
		{
			name:     "one over the limit truncates",
			content:  strings.Repeat("ab ", 25) + "c",
			expected: strings.TrimRight(strings.Repeat("ab ", 25), " ") + " ...",
		},
		{
			name:     "cut lands mid-word, trims back to the last space",
			content:  "The quick brown fox jumps over the lazy dog and keeps running through the meadow",
			expected: "The quick brown fox jumps over the lazy dog and keeps running through the ...",
		},
		{
			name:     "single overlong word leaves only the suffix",
			content:  strings.Repeat("a", 80),
			expected: " ...",
		},
		{
			name:     "unicode counts runes not bytes",
			content:  strings.Repeat("é", 75),
			expected: strings.Repeat("é", 75),
		},
		{
			name:     "long unicode body truncates",
			content:  strings.Repeat("é", 40) + " " + strings.Repeat("ü", 40),
			expected: strings.Repeat("é", 40) + " ...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Snippet(tt.content))
		})
	}
}

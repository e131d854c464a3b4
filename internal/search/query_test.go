package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gifia/fraud-intel/pkg/tavily"
)

func TestBuildQuery_WithinBudget(t *testing.T) {
	q := BuildQuery()

	assert.LessOrEqual(t, len(q), maxQueryChars)
	assert.Contains(t, q, " OR ")
	assert.Contains(t, q, "life insurance fraud")
	assert.Contains(t, q, "-property insurance")
	assert.Contains(t, q, "-auto insurance")
}

func TestBuildQuery_FallbackWithinBudget(t *testing.T) {
	assert.LessOrEqual(t, len(fallbackQuery), maxQueryChars)
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("massive fraud scheme uncovered", caseKeywords))
	assert.False(t, containsAny("quarterly earnings call", caseKeywords))
}

func TestFilterHits(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		kept    bool
	}{
		{
			name:    "concrete case",
			title:   "Agent convicted of fraud in life policy scheme",
			content: "A life insurance fraud case ended this week with sentencing.",
			kept:    true,
		},
		{
			name:    "market commentary dropped",
			title:   "Insurance fraud market report 2026",
			content: "Global market size and forecast for fraud detection.",
			kept:    false,
		},
		{
			name:    "excluded line dropped",
			title:   "Staged crash ring charged with fraud",
			content: "An auto insurance fraud case involving staged collisions.",
			kept:    false,
		},
		{
			name:    "no case keyword dropped",
			title:   "Insurer announces new product",
			content: "The company launched a new life insurance product line.",
			kept:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := filterHits([]tavily.Result{{
				URL:     "https://example.org/a",
				Title:   tt.title,
				Content: tt.content,
				Score:   0.9,
			}})
			if tt.kept {
				assert.Len(t, hits, 1)
			} else {
				assert.Empty(t, hits)
			}
		})
	}
}

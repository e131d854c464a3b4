// Package dedup detects already-harvested cases by exact source URL and by
// fuzzy similarity between a candidate title and stored event summaries.
package dedup

import (
	"context"
	"fmt"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gifia/fraud-intel/internal/store"
)

// similarityThreshold is exclusive: a candidate is a duplicate only when its
// title similarity is strictly greater than this value.
const similarityThreshold = 0.85

// recentWindow bounds how many stored records the fuzzy pass compares
// against.
const recentWindow = 100

// Index answers duplicate queries against the case store.
type Index struct {
	store store.Store
}

// NewIndex builds a duplicate index over the given store.
func NewIndex(st store.Store) *Index {
	return &Index{store: st}
}

// Check reports whether a candidate URL/title pair duplicates a stored case.
// The reason names which rule matched. Store failures degrade to
// not-duplicate so one flaky query does not stall a harvest run.
func (i *Index) Check(ctx context.Context, url, title string) (bool, string) {
	_, err := i.store.GetCaseByURL(ctx, url)
	switch {
	case err == nil:
		return true, "URL exact match"
	case !eris.Is(err, store.ErrNotFound):
		zap.L().Warn("dedup: url lookup failed, treating as new",
			zap.String("url", url), zap.Error(err))
		return false, ""
	}

	if strings.TrimSpace(title) == "" {
		return false, ""
	}

	recent, err := i.store.ListRecent(ctx, recentWindow)
	if err != nil {
		zap.L().Warn("dedup: recent window query failed, treating as new",
			zap.Error(err))
		return false, ""
	}

	for idx := range recent {
		sim := Similarity(title, recent[idx].Event)
		if sim > similarityThreshold {
			return true, fmt.Sprintf("标题相似度 %.0f%%", sim*100)
		}
	}
	return false, ""
}

// Similarity returns a 0..1 similarity between two strings, case-insensitive.
func Similarity(a, b string) float64 {
	return levenshtein.Similarity(strings.ToLower(a), strings.ToLower(b), nil)
}

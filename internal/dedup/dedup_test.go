package dedup

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gifia/fraud-intel/internal/model"
	"github.com/gifia/fraud-intel/internal/store"
)

// mockStore serves canned records for dedup lookups.
type mockStore struct {
	byURL     map[string]*model.CaseRecord
	recent    []model.CaseRecord
	urlErr    error
	recentErr error
}

func (m *mockStore) SaveCase(context.Context, *model.CaseRecord) (string, error) {
	return "", nil
}

func (m *mockStore) GetCaseByURL(_ context.Context, url string) (*model.CaseRecord, error) {
	if m.urlErr != nil {
		return nil, m.urlErr
	}
	if rec, ok := m.byURL[url]; ok {
		return rec, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListRecent(context.Context, int) ([]model.CaseRecord, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	return m.recent, nil
}

func (m *mockStore) ListSourceURLs(context.Context, int) ([]string, error) { return nil, nil }
func (m *mockStore) Migrate(context.Context) error                        { return nil }
func (m *mockStore) Close() error                                         { return nil }

func TestCheck_ExactURLMatch(t *testing.T) {
	idx := NewIndex(&mockStore{byURL: map[string]*model.CaseRecord{
		"https://example.org/case": {SourceURL: "https://example.org/case"},
	}})

	dup, reason := idx.Check(context.Background(), "https://example.org/case", "any title")

	assert.True(t, dup)
	assert.Equal(t, "URL exact match", reason)
}

func TestCheck_SimilarTitleIsDuplicate(t *testing.T) {
	idx := NewIndex(&mockStore{recent: []model.CaseRecord{
		{Event: "Nurse convicted in life insurance murder fraud scheme"},
	}})

	dup, reason := idx.Check(context.Background(),
		"https://example.org/new",
		"Nurse convicted in life insurance murder fraud schemes")

	assert.True(t, dup)
	assert.NotEmpty(t, reason)
}

func TestCheck_ThresholdIsExclusive(t *testing.T) {
	recent := []model.CaseRecord{{Event: "abcdefghij1234567890"}}
	idx := NewIndex(&mockStore{recent: recent})

	// 17 of 20 characters shared: similarity 0.85 exactly, not a duplicate.
	title := "abcdefghij1234567xyz"
	require.InDelta(t, 0.85, Similarity(title, recent[0].Event), 0.001)

	dup, _ := idx.Check(context.Background(), "https://example.org/new", title)
	assert.False(t, dup)

	// 18 of 20 shared: similarity 0.90, duplicate.
	title = "abcdefghij12345678yz"
	require.InDelta(t, 0.90, Similarity(title, recent[0].Event), 0.001)

	dup, _ = idx.Check(context.Background(), "https://example.org/new", title)
	assert.True(t, dup)
}

func TestCheck_DistinctTitleIsNew(t *testing.T) {
	idx := NewIndex(&mockStore{recent: []model.CaseRecord{
		{Event: "Doctor billed for phantom surgeries in Florida"},
	}})

	dup, _ := idx.Check(context.Background(),
		"https://example.org/new",
		"Agent forged death certificate in Tokyo life policy claim")

	assert.False(t, dup)
}

func TestCheck_StoreErrorDegradesToNew(t *testing.T) {
	idx := NewIndex(&mockStore{urlErr: eris.New("connection refused")})

	dup, _ := idx.Check(context.Background(), "https://example.org/x", "title")
	assert.False(t, dup)

	idx = NewIndex(&mockStore{recentErr: eris.New("connection refused")})
	dup, _ = idx.Check(context.Background(), "https://example.org/x", "title")
	assert.False(t, dup)
}

func TestCheck_EmptyTitleSkipsFuzzyPass(t *testing.T) {
	idx := NewIndex(&mockStore{recent: []model.CaseRecord{{Event: ""}}})

	dup, _ := idx.Check(context.Background(), "https://example.org/x", "   ")
	assert.False(t, dup)
}

// mostSimilar returns the best fuzzy match for a title across a window.
func mostSimilar(title string, recs []model.CaseRecord) (float64, string) {
	var best float64
	var bestEvent string
	for i := range recs {
		if sim := Similarity(title, recs[i].Event); sim > best {
			best = sim
			bestEvent = recs[i].Event
		}
	}
	return best, bestEvent
}

func TestMostSimilar(t *testing.T) {
	recs := []model.CaseRecord{
		{Event: "health insurance billing fraud"},
		{Event: "life insurance murder plot"},
	}
	sim, event := mostSimilar("life insurance murder plot uncovered", recs)
	assert.Equal(t, "life insurance murder plot", event)
	assert.Greater(t, sim, 0.7)
}

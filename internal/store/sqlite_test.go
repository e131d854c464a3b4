package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gifia/fraud-intel/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testCase(url string) *model.CaseRecord {
	return &model.CaseRecord{
		Time:       "2025年3月",
		Region:     "美国加州",
		Characters: "张某, 某人寿保险公司",
		Event:      "寿险欺诈",
		Process:    "作案经过描述",
		Result:     "判刑五年",
		SourceURL:  url,
		FraudType:  "staged death",
	}
}

func TestSQLite_SaveAndGetCase(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.SaveCase(ctx, testCase("https://example.gov/case1"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	rec, err := st.GetCaseByURL(ctx, "https://example.gov/case1")
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "寿险欺诈", rec.Event)
	assert.Equal(t, "staged death", rec.FraudType)
	assert.False(t, rec.IsSeedCase)
	assert.Nil(t, rec.LastShownAt)
}

func TestSQLite_SaveCase_DuplicateURL(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.SaveCase(ctx, testCase("https://example.gov/case1"))
	require.NoError(t, err)

	_, err = st.SaveCase(ctx, testCase("https://example.gov/case1"))
	assert.ErrorIs(t, err, ErrDuplicateURL)
}

func TestSQLite_GetCaseByURL_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetCaseByURL(context.Background(), "https://nowhere.gov/x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_ListRecent_NewestFirst(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	older := testCase("https://example.gov/old")
	older.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	newer := testCase("https://example.gov/new")
	newer.CreatedAt = time.Now().UTC()

	_, err := st.SaveCase(ctx, older)
	require.NoError(t, err)
	_, err = st.SaveCase(ctx, newer)
	require.NoError(t, err)

	recs, err := st.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "https://example.gov/new", recs[0].SourceURL)
	assert.Equal(t, "https://example.gov/old", recs[1].SourceURL)
}

func TestSQLite_ListRecent_RespectsLimit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := testCase("https://example.gov/case" + string(rune('a'+i)))
		rec.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
		_, err := st.SaveCase(ctx, rec)
		require.NoError(t, err)
	}

	recs, err := st.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestSQLite_ListSourceURLs(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.SaveCase(ctx, testCase("https://a.gov/1"))
	require.NoError(t, err)
	_, err = st.SaveCase(ctx, testCase("https://b.org/2"))
	require.NoError(t, err)

	urls, err := st.ListSourceURLs(ctx, 100)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"https://a.gov/1", "https://b.org/2"}, urls)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	assert.Error(t, err)
}

func TestOpen_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "open.db")
	st, err := Open(context.Background(), "sqlite", dbPath)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Migrate(context.Background()))
}

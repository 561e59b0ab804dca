package sources

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a test source store
func createTestSourceStore(t *testing.T) *SourceStore {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")
	store, err := NewSourceStore(dbPath)
	require.NoError(t, err, "should create source store")
	t.Cleanup(func() { store.Close() })
	return store
}

// TestDefaultSources verifies the built-in feed list
func TestDefaultSources(t *testing.T) {
	defaults := DefaultSources()

	require.Len(t, defaults, 3)
	assert.Equal(t, "CoinDesk", defaults[0].Name)
	assert.Equal(t, "CryptoSlate", defaults[1].Name)
	assert.Equal(t, "Cointelegraph", defaults[2].Name)
	for _, s := range defaults {
		assert.NotEmpty(t, s.URL)
	}
}

// TestNewSourceStore_InitializesSchema verifies schema creation
func TestNewSourceStore_InitializesSchema(t *testing.T) {
	store := createTestSourceStore(t)

	statuses, err := store.ListStatuses()
	require.NoError(t, err, "source_status table should exist")
	assert.NotNil(t, statuses)
	assert.Empty(t, statuses)
}

// TestNewSourceStore_InMemory verifies the in-memory database keeps its
// schema across calls
func TestNewSourceStore_InMemory(t *testing.T) {
	store, err := NewSourceStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Sync(DefaultSources()))

	statuses, err := store.ListStatuses()
	require.NoError(t, err)
	assert.Len(t, statuses, 3)
}

// TestSync_ConfiguredOrder verifies statuses come back in configured order
func TestSync_ConfiguredOrder(t *testing.T) {
	store := createTestSourceStore(t)

	sources := []Source{
		{Name: "Zeta", URL: "http://zeta.example.com/rss"},
		{Name: "Alpha", URL: "http://alpha.example.com/rss"},
	}
	require.NoError(t, store.Sync(sources))

	statuses, err := store.ListStatuses()
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "Zeta", statuses[0].Name)
	assert.Equal(t, "Alpha", statuses[1].Name)
	assert.Equal(t, 0, statuses[0].FetchErrorCount)
	assert.Nil(t, statuses[0].LastFetchedAt)
}

// TestSync_KeepsHealthAndRemovesStale verifies resyncing updates URLs, keeps
// health and drops sources that are no longer configured
func TestSync_KeepsHealthAndRemovesStale(t *testing.T) {
	store := createTestSourceStore(t)

	require.NoError(t, store.Sync([]Source{
		{Name: "One", URL: "http://one.example.com/rss"},
		{Name: "Two", URL: "http://two.example.com/rss"},
	}))
	require.NoError(t, store.RecordFailure("One", errors.New("boom"), time.Now()))

	require.NoError(t, store.Sync([]Source{
		{Name: "One", URL: "http://one.example.com/feed"},
	}))

	statuses, err := store.ListStatuses()
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "http://one.example.com/feed", statuses[0].URL)
	assert.Equal(t, 1, statuses[0].FetchErrorCount, "health should survive a resync")

	_, err = store.GetStatus("Two")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

// TestRecordFailure_IncrementsErrorCount verifies consecutive failures are
// counted and the last error kept
func TestRecordFailure_IncrementsErrorCount(t *testing.T) {
	store := createTestSourceStore(t)
	require.NoError(t, store.Sync(DefaultSources()))

	first := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	second := first.Add(5 * time.Minute)
	require.NoError(t, store.RecordFailure("CoinDesk", errors.New("connection refused"), first))
	require.NoError(t, store.RecordFailure("CoinDesk", errors.New("HTTP 503"), second))

	status, err := store.GetStatus("CoinDesk")
	require.NoError(t, err)
	assert.Equal(t, 2, status.FetchErrorCount)
	require.NotNil(t, status.LastError)
	assert.Equal(t, "HTTP 503", *status.LastError)
	require.NotNil(t, status.LastFetchedAt)
	assert.True(t, second.Equal(*status.LastFetchedAt))
	assert.Nil(t, status.LastSuccessAt, "never succeeded")
}

// TestRecordSuccess_ResetsErrorCount verifies a success clears failure state
func TestRecordSuccess_ResetsErrorCount(t *testing.T) {
	store := createTestSourceStore(t)
	require.NoError(t, store.Sync(DefaultSources()))

	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordFailure("CryptoSlate", errors.New("timeout"), at))
	require.NoError(t, store.RecordSuccess("CryptoSlate", 12, at.Add(time.Minute)))

	status, err := store.GetStatus("CryptoSlate")
	require.NoError(t, err)
	assert.Equal(t, 0, status.FetchErrorCount)
	assert.Nil(t, status.LastError)
	assert.Equal(t, 12, status.ArticleCount)
	require.NotNil(t, status.LastSuccessAt)
	assert.True(t, at.Add(time.Minute).Equal(*status.LastSuccessAt))

	require.NoError(t, store.RecordFailure("CryptoSlate", errors.New("timeout"), at.Add(2*time.Minute)))
	status, err = store.GetStatus("CryptoSlate")
	require.NoError(t, err)
	assert.Equal(t, 0, status.ArticleCount, "a failed source contributes no articles")
	require.NotNil(t, status.LastSuccessAt, "last success should be kept")
}

// TestRecord_UnknownSource verifies updates for unknown names fail
func TestRecord_UnknownSource(t *testing.T) {
	store := createTestSourceStore(t)

	err := store.RecordSuccess("Nope", 1, time.Now())
	assert.ErrorIs(t, err, ErrSourceNotFound)

	err = store.RecordFailure("Nope", errors.New("x"), time.Now())
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

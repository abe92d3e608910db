// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/report-engine/pkg/types"
)

func testConfig() types.CacheConfig {
	return types.CacheConfig{
		TTL:                 24 * time.Hour,
		MaxSize:             1000,
		SimilarityThreshold: 0.75,
	}
}

func sources(urls ...string) []types.SourceRecord {
	var out []types.SourceRecord
	for _, u := range urls {
		out = append(out, types.SourceRecord{Title: u, URL: u, Content: "content for " + u})
	}
	return out
}

func TestLookup_ExactHit(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	want := sources("https://example.com/a")
	require.NoError(t, c.Store("golang concurrency patterns", want, "go programming", "default"))

	got, ok := c.Lookup("golang concurrency patterns", "go programming", "default")
	require.True(t, ok)
	assert.Equal(t, want, got)

	s := c.Stats()
	assert.Equal(t, 1, s.TotalQueries)
	assert.Equal(t, 1, s.CacheHits)
	assert.Equal(t, 0, s.CacheMisses)
}

func TestLookup_ReturnsCopyOfCachedResults(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, c.Store("query about caching", sources("https://example.com/a"), "", ""))

	got, ok := c.Lookup("query about caching", "", "")
	require.True(t, ok)
	got[0].Content = "mutated by caller"

	again, ok := c.Lookup("query about caching", "", "")
	require.True(t, ok)
	assert.Equal(t, "content for https://example.com/a", again[0].Content)
}

func TestLookup_ExactHitNormalizesCase(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, c.Store("Golang Concurrency", sources("u"), "Go", ""))

	_, ok := c.Lookup("  golang concurrency  ", "go", "")
	assert.True(t, ok)
}

func TestLookup_SimilarHit(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	want := sources("https://example.com/a")
	require.NoError(t, c.Store("golang concurrency patterns", want, "go programming", ""))

	// Near-duplicate wording: exact key differs, similarity clears 0.75.
	got, ok := c.Lookup("golang concurrency pattern", "go programming", "")
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, c.Stats().CacheHits)
}

func TestLookup_DissimilarMiss(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, c.Store("golang concurrency patterns", sources("u"), "go programming", ""))

	_, ok := c.Lookup("quantum computing hardware", "physics", "")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Stats().CacheMisses)
}

func TestLookup_BestMatchWins(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	farther := sources("https://example.com/far")
	closer := sources("https://example.com/close")
	require.NoError(t, c.Store("kubernetes cluster scaling strategies", farther, "", ""))
	require.NoError(t, c.Store("kubernetes cluster scaling strategy", closer, "", ""))

	got, ok := c.Lookup("kubernetes cluster scaling strategy today", "", "")
	require.True(t, ok)
	assert.Equal(t, closer, got)
}

func TestLookup_ExpiredEntryNeverHits(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	base := time.Now()
	c.now = func() time.Time { return base }
	require.NoError(t, c.Store("golang concurrency patterns", sources("u"), "go", ""))

	// Age the entry past the TTL.
	c.now = func() time.Time { return base.Add(25 * time.Hour) }

	if _, ok := c.Lookup("golang concurrency patterns", "go", ""); ok {
		t.Fatal("expired entry returned as exact hit")
	}
	if _, ok := c.Lookup("golang concurrency pattern", "go", ""); ok {
		t.Fatal("expired entry returned as similarity hit")
	}
	// Expired exact match was evicted on discovery.
	assert.Equal(t, 0, c.Stats().CacheSize)
}

func TestLookup_TopicBonusLiftsBorderlineMatch(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, c.Store("transformer model training costs", sources("u"), "machine learning", ""))

	// Similar query under the same topic: the topic bonus pushes the
	// combined score over the threshold.
	_, withTopic := c.Lookup("transformer models training cost", "machine learning", "")
	assert.True(t, withTopic)
}

func TestStore_EmptyResultsNotCached(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, c.Store("some query", nil, "", ""))
	assert.Equal(t, 0, c.Stats().CacheSize)
}

func TestStore_EvictsLowestDecile(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSize = 10
	c, err := New(cfg, nil)
	require.NoError(t, err)

	base := time.Now()
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	queries := []string{
		"alpha", "bravo", "charlie", "delta", "echo",
		"foxtrot", "hotel", "india", "juliet", "kilo",
	}
	for _, q := range queries {
		require.NoError(t, c.Store(q, sources("https://example.com/"+q), "", ""))
	}

	// Give every entry except "alpha" a hit so the zero-hit oldest entry
	// is the eviction candidate.
	for _, q := range queries[1:] {
		_, ok := c.Lookup(q, "", "")
		require.True(t, ok)
	}

	require.NoError(t, c.Store("lima", sources("https://example.com/lima"), "", ""))

	assert.Equal(t, 10, c.Stats().CacheSize)
	_, survived := c.entries[cacheKey("alpha", "")]
	assert.False(t, survived, "lowest hit-count entry should have been evicted")
	_, kept := c.entries[cacheKey("lima", "")]
	assert.True(t, kept)
}

func TestClearExpired(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	base := time.Now()
	c.now = func() time.Time { return base }
	require.NoError(t, c.Store("old query", sources("a"), "", ""))

	c.now = func() time.Time { return base.Add(23 * time.Hour) }
	require.NoError(t, c.Store("fresh query", sources("b"), "", ""))

	c.now = func() time.Time { return base.Add(25 * time.Hour) }
	removed := c.ClearExpired()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Stats().CacheSize)
}

func TestClear_ResetsEverything(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, c.Store("query", sources("a"), "", ""))
	_, _ = c.Lookup("query", "", "")

	require.NoError(t, c.Clear())

	s := c.Stats()
	assert.Equal(t, Stats{}, s)
}

func TestStats_CountersAccumulate(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, c.Store("stored query about databases", sources("a"), "", ""))

	_, _ = c.Lookup("stored query about databases", "", "") // hit
	_, _ = c.Lookup("entirely unrelated topic", "", "")     // miss
	_, _ = c.Lookup("stored query about databases", "", "") // hit

	s := c.Stats()
	assert.Equal(t, 3, s.TotalQueries)
	assert.Equal(t, 2, s.CacheHits)
	assert.Equal(t, 1, s.CacheMisses)
	assert.InDelta(t, 66.7, s.HitRate(), 0.1)

	// Hit count accumulated on the entry itself.
	e := c.entries[cacheKey("stored query about databases", "")]
	require.NotNil(t, e)
	assert.Equal(t, 2, e.HitCount)
}

func TestEntries_InsertionOrderSnapshot(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, c.Store("first query about compilers", sources("a"), "", ""))
	require.NoError(t, c.Store("second query about linkers", sources("b"), "", ""))

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "first query about compilers", entries[0].Query)
	assert.Equal(t, "second query about linkers", entries[1].Query)

	// Mutating the snapshot must not touch the cache.
	entries[0].Query = "mutated"
	fresh := c.Entries()
	assert.Equal(t, "first query about compilers", fresh[0].Query)
}

// --- persistence ---

func TestSQLiteStore_Roundtrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewSQLiteStore(dir)
	require.NoError(t, err)

	cfg := testConfig()
	c, err := New(cfg, store)
	require.NoError(t, err)

	want := sources("https://example.com/a", "https://example.com/b")
	require.NoError(t, c.Store("golang generics tutorial", want, "go", "default"))
	require.NoError(t, store.Close())

	// Reopen: the entry must survive the restart.
	store2, err := NewSQLiteStore(dir)
	require.NoError(t, err)
	defer store2.Close()

	c2, err := New(cfg, store2)
	require.NoError(t, err)

	got, ok := c2.Lookup("golang generics tutorial", "go", "")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSQLiteStore_ExpiredEntriesDeletedOnLoad(t *testing.T) {
	dir := t.TempDir()

	store, err := NewSQLiteStore(dir)
	require.NoError(t, err)
	defer store.Close()

	stale := &Entry{
		Query:     "stale query",
		Results:   sources("a"),
		Timestamp: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, store.Put(cacheKey("stale query", ""), stale))

	c, err := New(testConfig(), store)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Stats().CacheSize)

	// The expired row is gone from storage too.
	remaining, err := store.ListAll()
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store, err := NewSQLiteStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	key := cacheKey("q", "")
	require.NoError(t, store.Put(key, &Entry{Query: "q", Results: sources("a"), Timestamp: time.Now()}))
	require.NoError(t, store.Delete(key))
	require.NoError(t, store.Delete(key)) // idempotent

	all, err := store.ListAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

// --- similarity ---

func TestCombinedSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "golang tutorial", "golang tutorial", 1.0, 1.0},
		{"identical after normalization", "  Golang Tutorial ", "golang tutorial", 1.0, 1.0},
		{"near duplicate", "golang concurrency patterns", "golang concurrency pattern", 0.75, 1.0},
		{"unrelated", "quantum computing", "italian cooking recipes", 0.0, 0.5},
		{"both empty", "", "", 1.0, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := combinedSimilarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("combinedSimilarity(%q, %q) = %f, want [%f, %f]", tt.a, tt.b, got, tt.min, tt.max)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"both empty", nil, nil, 0.0},
		{"one empty", []string{"a"}, nil, 0.0},
		{"disjoint", []string{"a", "b"}, []string{"c"}, 0.0},
		{"half overlap", []string{"a", "b"}, []string{"b", "c"}, 1.0 / 3.0},
		{"identical", []string{"a", "b"}, []string{"a", "b"}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jaccard(tt.a, tt.b); got != tt.want {
				t.Errorf("jaccard(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSequenceRatio(t *testing.T) {
	if got := sequenceRatio("abc", "abc"); got != 1.0 {
		t.Errorf("identical strings: got %f", got)
	}
	if got := sequenceRatio("abc", "xyz"); got != 0.0 {
		t.Errorf("fully distinct strings: got %f", got)
	}
	got := sequenceRatio("kitten", "sitting")
	if got < 0.5 || got > 0.7 {
		t.Errorf("kitten/sitting: got %f, want ~0.57", got)
	}
}

func TestCacheKey_Stable(t *testing.T) {
	k1 := cacheKey("Query A", "Topic")
	k2 := cacheKey("  query a ", "topic")
	if k1 != k2 {
		t.Error("normalized keys should match")
	}
	if k1 == cacheKey("query a", "other topic") {
		t.Error("different topics must produce different keys")
	}
}

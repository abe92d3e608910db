// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes web search results by exact and approximate query
// similarity. LLM-generated queries repeat with small wording changes across
// report sections; approximate matching reuses prior results for near
// duplicates and cuts external call volume, at the accepted cost of
// occasionally serving a near-but-not-identical result set.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/report-engine/pkg/types"
)

const (
	defaultTTL       = 24 * time.Hour
	defaultMaxSize   = 1000
	defaultThreshold = 0.75

	// topicBonusGate is the minimum topic similarity before the topic
	// bonus applies; topicBonusWeight scales the bonus.
	topicBonusGate   = 0.3
	topicBonusWeight = 0.2
)

// Entry is one cached query with its results and bookkeeping. Entries are
// created on miss, bumped on every hit, and destroyed on expiry or eviction.
type Entry struct {
	Query       string               `json:"query" yaml:"query"`
	Results     []types.SourceRecord `json:"results" yaml:"results"`
	Timestamp   time.Time            `json:"timestamp" yaml:"timestamp"`
	Topic       string               `json:"topic" yaml:"topic"`
	SectionType string               `json:"section_type" yaml:"section_type"`
	HitCount    int                  `json:"hit_count" yaml:"hit_count"`
}

// Expired reports whether the entry's age exceeds ttl.
func (e *Entry) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.Timestamp) > ttl
}

// Stats holds cache performance counters. All counters except CacheSize are
// monotonically non-decreasing until an explicit Clear.
type Stats struct {
	TotalQueries int `json:"total_queries" yaml:"total_queries"`
	CacheHits    int `json:"cache_hits" yaml:"cache_hits"`
	CacheMisses  int `json:"cache_misses" yaml:"cache_misses"`
	CacheSize    int `json:"cache_size" yaml:"cache_size"`
}

// HitRate returns the hit percentage, 0 when no queries have been made.
func (s Stats) HitRate() float64 {
	if s.TotalQueries == 0 {
		return 0.0
	}
	return float64(s.CacheHits) / float64(s.TotalQueries) * 100
}

// Storage is the durable backing for cache entries: a key to blob store.
type Storage interface {
	Put(key string, e *Entry) error
	ListAll() (map[string]*Entry, error)
	Delete(key string) error
}

// Cache is an in-memory search result cache with optional durable storage.
// A single mutex serializes all access; section workers share one instance.
type Cache struct {
	mu        sync.Mutex
	ttl       time.Duration
	maxSize   int
	threshold float64
	storage   Storage // nil disables persistence

	entries map[string]*Entry
	order   []string // keys in insertion order, for stable scans and sorts
	stats   Stats

	// now is stubbed in expiry tests.
	now func() time.Time
}

// New creates a Cache from cfg. A non-nil storage is loaded immediately:
// unexpired entries populate memory, already-expired entries are deleted
// from storage instead.
func New(cfg types.CacheConfig, storage Storage) (*Cache, error) {
	c := &Cache{
		ttl:       cfg.TTL,
		maxSize:   cfg.MaxSize,
		threshold: cfg.SimilarityThreshold,
		storage:   storage,
		entries:   make(map[string]*Entry),
		now:       time.Now,
	}
	if c.ttl <= 0 {
		c.ttl = defaultTTL
	}
	if c.maxSize <= 0 {
		c.maxSize = defaultMaxSize
	}
	if c.threshold <= 0 {
		c.threshold = defaultThreshold
	}

	if storage != nil {
		if err := c.load(); err != nil {
			return nil, fmt.Errorf("loading cache storage: %w", err)
		}
	}
	return c, nil
}

func (c *Cache) load() error {
	stored, err := c.storage.ListAll()
	if err != nil {
		return err
	}

	// Deterministic insertion order for the loaded set.
	keys := make([]string, 0, len(stored))
	for k := range stored {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := c.now()
	for _, key := range keys {
		e := stored[key]
		if e.Expired(c.ttl, now) {
			if err := c.storage.Delete(key); err != nil {
				return err
			}
			continue
		}
		c.entries[key] = e
		c.order = append(c.order, key)
	}
	c.stats.CacheSize = len(c.entries)
	return nil
}

// cacheKey derives the stable key for a query within a topic.
func cacheKey(query, topic string) string {
	normalized := strings.ToLower(strings.TrimSpace(query)) + ":" + strings.ToLower(strings.TrimSpace(topic))
	return fmt.Sprintf("%x", sha256.Sum256([]byte(normalized)))
}

// Lookup returns cached results for a query, trying an exact key match
// first and an approximate similarity scan second. An expired exact match
// is evicted on discovery before the similarity scan runs. The section type
// is recorded on stored entries but does not affect matching.
func (c *Cache) Lookup(query, topic, sectionType string) ([]types.SourceRecord, bool) {
	_ = sectionType

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.TotalQueries++
	now := c.now()

	key := cacheKey(query, topic)
	if e, ok := c.entries[key]; ok {
		if !e.Expired(c.ttl, now) {
			e.HitCount++
			c.stats.CacheHits++
			return copyResults(e.Results), true
		}
		c.remove(key)
	}

	if e := c.findSimilar(query, topic, now); e != nil {
		e.HitCount++
		c.stats.CacheHits++
		return copyResults(e.Results), true
	}

	c.stats.CacheMisses++
	return nil, false
}

// copyResults shields the cached slice from caller mutation.
func copyResults(results []types.SourceRecord) []types.SourceRecord {
	out := make([]types.SourceRecord, len(results))
	copy(out, results)
	return out
}

// findSimilar scans all unexpired entries in insertion order and returns
// the single best match at or above the threshold. Ties keep the
// earliest-found entry (strictly-greater comparison).
func (c *Cache) findSimilar(query, topic string, now time.Time) *Entry {
	var best *Entry
	bestScore := 0.0

	for _, key := range c.order {
		e := c.entries[key]
		if e.Expired(c.ttl, now) {
			continue
		}

		score := combinedSimilarity(query, e.Query)
		if topic != "" && e.Topic != "" {
			topicScore := combinedSimilarity(topic, e.Topic)
			if topicScore > topicBonusGate {
				score += topicBonusWeight * topicScore
			}
		}

		if score >= c.threshold && score > bestScore {
			bestScore = score
			best = e
		}
	}
	return best
}

// Store caches search results under the query's key and persists the entry
// when durable storage is configured. Empty result sets are not cached.
// A storage write failure is returned but the in-memory entry stays valid.
func (c *Cache) Store(query string, results []types.SourceRecord, topic, sectionType string) error {
	if len(results) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(query, topic)
	e := &Entry{
		Query:       query,
		Results:     results,
		Timestamp:   c.now(),
		Topic:       topic,
		SectionType: sectionType,
	}

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = e

	if len(c.entries) > c.maxSize {
		c.evictDecile()
	}
	c.stats.CacheSize = len(c.entries)

	if c.storage != nil {
		if err := c.storage.Put(key, e); err != nil {
			return fmt.Errorf("persisting cache entry: %w", err)
		}
	}
	return nil
}

// evictDecile removes the lowest-value tenth of entries (at least one),
// ordered by hit count then creation time ascending. The sort is stable
// over insertion order, so equal entries evict oldest-inserted first.
func (c *Cache) evictDecile() {
	keys := make([]string, len(c.order))
	copy(keys, c.order)

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := c.entries[keys[i]], c.entries[keys[j]]
		if a.HitCount != b.HitCount {
			return a.HitCount < b.HitCount
		}
		return a.Timestamp.Before(b.Timestamp)
	})

	n := len(keys) / 10
	if n < 1 {
		n = 1
	}
	for _, key := range keys[:n] {
		c.remove(key)
	}
}

// remove deletes an entry from memory and, best-effort, from storage.
// Callers hold the mutex.
func (c *Cache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if c.storage != nil {
		_ = c.storage.Delete(key)
	}
	c.stats.CacheSize = len(c.entries)
}

// ClearExpired removes all expired entries and returns how many were removed.
func (c *Cache) ClearExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expired []string
	for _, key := range c.order {
		if c.entries[key].Expired(c.ttl, now) {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		c.remove(key)
	}
	return len(expired)
}

// Clear removes every entry from memory and storage and resets statistics.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.storage != nil {
		for _, key := range c.order {
			if err := c.storage.Delete(key); err != nil {
				return fmt.Errorf("deleting cache entry: %w", err)
			}
		}
	}
	c.entries = make(map[string]*Entry)
	c.order = nil
	c.stats = Stats{}
	return nil
}

// Entries returns a copy of every cached entry in insertion order.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, *c.entries[key])
	}
	return out
}

// Stats returns a snapshot of the performance counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Report formats a human-readable performance summary.
func (c *Cache) Report() string {
	s := c.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "Search cache: %d entries\n", s.CacheSize)
	fmt.Fprintf(&b, "  queries: %d, hits: %d, misses: %d (%.1f%% hit rate)\n",
		s.TotalQueries, s.CacheHits, s.CacheMisses, s.HitRate())
	fmt.Fprintf(&b, "  external calls saved: %d", s.CacheHits)
	return b.String()
}

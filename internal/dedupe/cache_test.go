package dedupe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/speakerlens/quote-radar/internal/dedupe"
)

func TestCacheSeenDuplicate(t *testing.T) {
	cache := dedupe.NewCache(10, time.Minute)
	require.False(t, cache.IsSeen("2015-08-31-000271"))
	cache.MarkSeen("2015-08-31-000271")
	require.True(t, cache.IsSeen("2015-08-31-000271"))
	require.Equal(t, 1, cache.Len())
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := dedupe.NewCache(10, 20*time.Millisecond)
	cache.MarkSeen("expiring")
	require.True(t, cache.IsSeen("expiring"))
	time.Sleep(25 * time.Millisecond)
	require.False(t, cache.IsSeen("expiring"))
}

func TestCacheCapacityEvictsOldest(t *testing.T) {
	cache := dedupe.NewCache(1, time.Minute)
	cache.MarkSeen("first")
	cache.MarkSeen("second")

	require.False(t, cache.IsSeen("first"))
	require.True(t, cache.IsSeen("second"))
	require.Equal(t, 1, cache.Len())
}

func TestCacheRefreshSurvivesStaleEviction(t *testing.T) {
	cache := dedupe.NewCache(2, time.Minute)
	cache.MarkSeen("a")
	cache.MarkSeen("b")
	// Refreshing "a" must not let the stale order entry evict it later.
	cache.MarkSeen("a")
	cache.MarkSeen("c")

	require.True(t, cache.IsSeen("a"))
	require.True(t, cache.IsSeen("c"))
}

package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dionysia/internal/memo"
)

func seedCache(t *testing.T, path string) {
	t.Helper()
	store, err := memo.Open(path, nil)
	if err != nil {
		t.Fatalf("memo.Open: %v", err)
	}
	defer store.Close()
	ctx := context.Background()
	if err := store.Put(ctx, "radarr.movies", "", []byte(`[]`), time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "jsonfeed.imdb_ids", "feed", []byte(`[]`), time.Nanosecond); err != nil {
		t.Fatalf("put: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
}

func TestCacheStatsEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Cache file: "+env.cacheFile)
	requireContains(t, out, "Cached entries: none")
}

func TestCachePruneAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCache(t, env.cacheFile)

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "radarr.movies")
	requireContains(t, out, "jsonfeed.imdb_ids")

	out, _, err = runCLI(t, []string{"cache", "prune"}, env.configPath)
	if err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	requireContains(t, out, "Pruned 1 expired entries")

	out, _, err = runCLI(t, []string{"cache", "prune"}, env.configPath)
	if err != nil {
		t.Fatalf("cache prune again: %v", err)
	}
	requireContains(t, out, "No cache entries pruned")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 entries")
}

func TestCacheFileFlagOverridesConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	other := filepath.Join(env.baseDir, "other.db")
	out, _, err := runCLI(t, []string{"--cachefile", other, "cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Cache file: "+other)
}

package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkaraca/briefly/internal/models"
)

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

func testArticle(url, title string) models.Article {
	return models.Article{
		URL:   url,
		Title: title,
		Body:  "some content for " + title,
		Kind:  models.SourceWeb,
	}
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *FileStore) {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "cache.json"))
	return New(store, ttl), store
}

func TestSetThenGet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, 30*time.Minute)

	want := testArticle("https://example.com/a", "Article A")
	c.Set(ctx, want.URL, want)

	got, ok := c.Get(ctx, want.URL)
	if !ok {
		t.Fatal("expected cache hit immediately after Set")
	}
	if got.Title != want.Title || got.Body != want.Body {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestExpiredEntryIsEvictedAndStaysGone(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, 30*time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", testArticle("k", "Old"))

	// Advance past the TTL.
	c.now = func() time.Time { return now.Add(31 * time.Minute) }

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss after TTL elapsed")
	}
	// The eviction must not resurrect on a second read.
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expired entry came back on second Get")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache after eviction, have %d entries", c.Len())
	}
}

func TestEntryWithinTTLSurvives(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, 30*time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set(ctx, "k", testArticle("k", "Recent"))

	c.now = func() time.Time { return now.Add(29 * time.Minute) }
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("entry within TTL should still be served")
	}
}

func TestSetOverwrites(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Hour)

	c.Set(ctx, "k", testArticle("k", "v1"))
	c.Set(ctx, "k", testArticle("k", "v2"))

	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Title != "v2" {
		t.Errorf("got title %q, want v2", got.Title)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Hour)

	c.Set(ctx, "a", testArticle("a", "A"))
	c.Set(ctx, "b", testArticle("b", "B"))
	c.Clear(ctx)

	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("expected miss after Clear")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, have %d entries", c.Len())
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")

	first := New(NewFileStore(path), time.Hour)
	first.Set(ctx, "k", testArticle("k", "Persisted"))

	// A second cache over the same file sees the entry.
	second := New(NewFileStore(path), time.Hour)
	got, ok := second.Get(ctx, "k")
	if !ok {
		t.Fatal("expected entry to survive reload from disk")
	}
	if got.Title != "Persisted" {
		t.Errorf("got title %q, want Persisted", got.Title)
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := writeFile(path, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	// Load failure must be non-fatal.
	c := New(NewFileStore(path), time.Hour)
	if c.Len() != 0 {
		t.Errorf("expected empty cache after corrupt load, have %d entries", c.Len())
	}

	// And the cache must still be writable afterwards.
	ctx := context.Background()
	c.Set(ctx, "k", testArticle("k", "After corruption"))
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("cache unusable after corrupt load")
	}
}

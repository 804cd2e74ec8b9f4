package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/schoolscope/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("page", "https://example.com/a")
	if !strings.HasPrefix(a, "schoolscope:v1:page:") {
		t.Errorf("unexpected key prefix: %s", a)
	}
	if a == Key("search", "https://example.com/a") {
		t.Error("kinds must not collide")
	}
	if a != Key("page", "https://example.com/a") {
		t.Error("keys must be stable")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	value := []byte("hello")
	_ = c.Set("k", value, 0)
	value[0] = 'j'

	got, ok := c.Get("k")
	if !ok || string(got) != "hello" {
		t.Errorf("Get = %q, %v; want stored copy", got, ok)
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	key := Key("page", "https://a.com")
	if err := c.Set(key, []byte("page text"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, ok := c.Get(key); !ok || string(got) != "page text" {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	now = now.Add(2 * time.Hour)
	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 0 {
		t.Errorf("expired entry should be removed, found %d files", len(files))
	}
}

func TestDiskCache_Prune(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set("short", []byte("a"), time.Minute)
	_ = c.Set("long", []byte("b"), 24*time.Hour)
	_ = os.WriteFile(filepath.Join(dir, "junk.cache"), []byte("{not json"), 0644)

	now = now.Add(time.Hour)
	n, err := c.Prune()
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 pruned entries, got %d", n)
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("live entry should survive pruning")
	}

	if n, err := NewDiskCache(filepath.Join(dir, "missing"), time.Hour).Prune(); err != nil || n != 0 {
		t.Errorf("pruning a missing dir should be a no-op, got %d, %v", n, err)
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	// A fresh layered cache over the same directory starts with empty memory.
	fresh := NewLayeredCache(time.Minute, dir, time.Hour)
	if got, ok := fresh.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("expected disk hit, got %q, %v", got, ok)
	}
	if fresh.memory.Len() != 1 {
		t.Error("disk hit should be promoted to memory")
	}

	if err := fresh.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := fresh.Get("k"); ok {
		t.Error("expected miss after clear")
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(model.CacheConfig{Enabled: false}).(Noop); !ok {
		t.Error("disabled cache should be a no-op")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("enabled cache should be layered")
	}
}

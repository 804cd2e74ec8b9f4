// Package cache stores fetched research material (search results and page
// text) so repeated runs do not hit the network again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/schoolscope/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const keyPrefix = "schoolscope:v1:"

// Key generates a cache key for a kind of entry ("page", "search") and
// its source, usually a URL or query.
func Key(kind, source string) string {
	hash := sha256.Sum256([]byte(source))
	return keyPrefix + kind + ":" + hex.EncodeToString(hash[:])
}

// New returns the cache described by cfg: memory in front of disk, or a
// no-op cache when caching is disabled.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return Noop{}
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(string) ([]byte, bool) {
	return nil, false
}

func (Noop) Set(string, []byte, time.Duration) error {
	return nil
}

func (Noop) Delete(string) error {
	return nil
}

func (Noop) Clear() error {
	return nil
}

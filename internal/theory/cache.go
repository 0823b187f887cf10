package theory

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Flyweight caches for the immutable domain objects. Eviction only costs a
// rebuild; callers compare with Equal rather than pointer identity.
const (
	modeCacheSize  = 2048
	keyCacheSize   = 512
	chordCacheSize = 8192
)

var (
	modeCache  = mustCache[modeKey, *Mode](modeCacheSize)
	keyCache   = mustCache[keyKey, *Key](keyCacheSize)
	chordCache = mustCache[chordKey, *Chord](chordCacheSize)
)

func mustCache[K comparable, V any](size int) *lru.Cache[K, V] {
	c, err := lru.New[K, V](size)
	if err != nil {
		panic(err)
	}
	return c
}

// CacheStats reports the current number of cached modes, keys and chords.
func CacheStats() (modes, keys, chords int) {
	return modeCache.Len(), keyCache.Len(), chordCache.Len()
}

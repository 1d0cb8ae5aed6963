package cache

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is a TTL cache shared by the map services. It is passed to each
// service explicitly; there is no package-level instance. Concurrent misses
// for the same key may recompute and overwrite each other, which is benign
// because all writes for a key are derived from the same inputs.
type Store struct {
	c *gocache.Cache
}

// NewStore creates a cache store. cleanupInterval controls how often expired
// entries are swept out of memory.
func NewStore(cleanupInterval time.Duration) *Store {
	return &Store{c: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Get returns the cached value for a key, if present and not expired.
func (s *Store) Get(key string) (interface{}, bool) {
	return s.c.Get(key)
}

// Put stores a value under a key with the given TTL.
func (s *Store) Put(key string, value interface{}, ttl time.Duration) {
	s.c.Set(key, value, ttl)
}

// DeletePrefix evicts every entry whose key starts with the prefix and
// returns the number of evicted entries. Used for tile/heatmap invalidation
// when project data changes ahead of TTL expiry.
func (s *Store) DeletePrefix(prefix string) int {
	n := 0
	for key := range s.c.Items() {
		if strings.HasPrefix(key, prefix) {
			s.c.Delete(key)
			n++
		}
	}
	return n
}

// Len returns the number of live entries, expired ones included until swept.
func (s *Store) Len() int {
	return s.c.ItemCount()
}

// TileKeyPrefix is the key prefix covering every cached tile of an organization.
func TileKeyPrefix(orgID int64) string {
	return fmt.Sprintf("tile:org:%d:", orgID)
}

// TileKey builds the composite cache key for one tile request.
func TileKey(orgID int64, z, x, y int, layer string, filterHash uint64) string {
	return fmt.Sprintf("%sz%d:x%d:y%d:l:%s:f:%x", TileKeyPrefix(orgID), z, x, y, layer, filterHash)
}

// HeatmapKeyPrefix is the key prefix covering every cached heatmap of an organization.
func HeatmapKeyPrefix(orgID int64) string {
	return fmt.Sprintf("heatmap:org:%d:", orgID)
}

// HeatmapKey builds the composite cache key for one heatmap request.
func HeatmapKey(orgID int64, metric string, zoom int, boundsHash, filterHash uint64) string {
	return fmt.Sprintf("%sm:%s:z%d:b:%x:f:%x", HeatmapKeyPrefix(orgID), metric, zoom, boundsHash, filterHash)
}

// DensityKey builds the composite cache key for one density-map request.
func DensityKey(orgID int64, boundsHash uint64) string {
	return fmt.Sprintf("%sdensity:b:%x", HeatmapKeyPrefix(orgID), boundsHash)
}

// Hash reduces an arbitrary fingerprint (serialized bounds, filters) to a
// stable 64-bit key component. Each part is written with a delimiter and the
// part count is mixed in, so an empty value in one position cannot collide
// with the same value in another.
func Hash(parts ...interface{}) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|", len(parts))
	for _, part := range parts {
		fmt.Fprintf(h, "%v|", part)
	}
	return h.Sum64()
}

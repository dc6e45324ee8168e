package world

import (
	"errors"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"terrainstream/internal/chunk"
	"terrainstream/internal/metrics"
)

var (
	// ErrAlreadyCached is returned by Insert when the coordinate already has data.
	ErrAlreadyCached = errors.New("chunk already cached")
	// ErrStaleEpoch is returned by Insert for data built under an older generation epoch.
	ErrStaleEpoch = errors.New("chunk built for a stale generation epoch")
)

type cacheEntry struct {
	mesh *chunk.MeshData
	// pinned while a live surface is built from this entry; pinned entries
	// are never evicted, which keeps spawned ⊆ cached
	pinned bool
}

// Cache maps chunk coordinates to generated meshes. It is the only hand-off
// between the streaming goroutine and the foreground. Entries are write-once
// within an epoch; a Reset starts a new epoch.
type Cache struct {
	mu      sync.Mutex
	entries map[chunk.Coord]*cacheEntry
	epoch   uint64
	metrics *metrics.Metrics
}

// NewCache creates an empty cache at epoch 0. m may be nil.
func NewCache(m *metrics.Metrics) *Cache {
	return &Cache{
		entries: make(map[chunk.Coord]*cacheEntry),
		metrics: m,
	}
}

// Contains reports whether coord has data.
func (c *Cache) Contains(coord chunk.Coord) bool {
	c.mu.Lock()
	_, ok := c.entries[coord]
	c.mu.Unlock()
	return ok
}

// Get returns the mesh for coord, if present.
func (c *Cache) Get(coord chunk.Coord) (*chunk.MeshData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[coord]
	if !ok {
		return nil, false
	}
	return e.mesh, true
}

// Insert stores mesh under coord if the coordinate is empty and epoch is current.
func (c *Cache) Insert(coord chunk.Coord, mesh *chunk.MeshData, epoch uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		return ErrStaleEpoch
	}
	if _, ok := c.entries[coord]; ok {
		return ErrAlreadyCached
	}
	c.entries[coord] = &cacheEntry{mesh: mesh}
	c.metrics.SetCacheEntries(len(c.entries))
	return nil
}

// Acquire returns the mesh for coord and pins it against eviction.
// The caller must Release the coordinate when its surface is destroyed.
func (c *Cache) Acquire(coord chunk.Coord) (*chunk.MeshData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[coord]
	if !ok {
		return nil, false
	}
	e.pinned = true
	return e.mesh, true
}

// Release unpins coord. Releasing an absent coordinate is a no-op.
func (c *Cache) Release(coord chunk.Coord) {
	c.mu.Lock()
	if e, ok := c.entries[coord]; ok {
		e.pinned = false
	}
	c.mu.Unlock()
}

// Evict removes unpinned entries whose chunk center is farther than radius
// from pos. Returns the number of removed entries.
func (c *Cache) Evict(pos mgl32.Vec3, radius, size float64) int {
	rSq := radius * radius
	removed := 0

	c.mu.Lock()
	defer c.mu.Unlock()
	for coord, e := range c.entries {
		if e.pinned {
			continue
		}
		if coord.DistanceSq(pos, size) > rSq {
			delete(c.entries, coord)
			removed++
		}
	}
	if removed > 0 {
		c.metrics.ChunksEvicted(removed)
		c.metrics.SetCacheEntries(len(c.entries))
	}
	return removed
}

// Clear drops every unpinned entry and keeps the epoch. Entries backing live
// surfaces stay until they are released.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for coord, e := range c.entries {
		if !e.pinned {
			delete(c.entries, coord)
			removed++
		}
	}
	c.metrics.SetCacheEntries(len(c.entries))
	return removed
}

// Reset drops every entry, pinned or not, and moves the cache to epoch.
// Inserts tagged with any other epoch are rejected afterwards. Callers
// destroy the surfaces built from pinned entries first.
func (c *Cache) Reset(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[chunk.Coord]*cacheEntry)
	c.epoch = epoch
	c.metrics.SetCacheEntries(0)
}

// Epoch returns the current generation epoch.
func (c *Cache) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Len returns the number of cached chunks.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Coords returns all cached coordinates in no particular order.
func (c *Cache) Coords() []chunk.Coord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chunk.Coord, 0, len(c.entries))
	for coord := range c.entries {
		out = append(out, coord)
	}
	return out
}

// Pinned reports whether coord is pinned by a live surface.
func (c *Cache) Pinned(coord chunk.Coord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[coord]
	return ok && e.pinned
}

package text

import (
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gogpu/lumen"
	"github.com/gogpu/lumen/internal/cache"
)

// Key identifies one cached glyph batch. Every field that changes the
// rasterized output participates, so two runs collide only when their
// pixels would be identical.
//
// The element ID is part of the key: two elements with equal text keep
// separate entries so invalidating one never evicts the other.
type Key struct {
	ID          uint64
	ContentHash uint64
	SizePx      uint32 // float32 bits
	ColorRGBA   uint32 // quantized sRGB, enough to key on
	DPIKey      uint16 // DPI in 1/16 steps
	ProviderTag string
	Dynamic     bool
	MaxWidth    int32 // wrap width in whole pixels
	SubpixelX   uint8 // origin X fraction quantized to quarters
	SubpixelY   uint8 // baseline Y fraction quantized to quarters
}

// KeyFor builds the cache key for a run at a given origin. The origin
// only contributes its subpixel fraction; whole-pixel movement reuses
// the cached batch.
func KeyFor(id uint64, req Request, tag string, dynamic bool, origin lumen.Point) Key {
	h := fnv.New64a()
	h.Write([]byte(req.Text))
	dpi := req.DPI
	if dpi <= 0 {
		dpi = 1
	}
	return Key{
		ID:          id,
		ContentHash: h.Sum64(),
		SizePx:      math.Float32bits(req.SizePx),
		ColorRGBA:   packColor(req.Color),
		DPIKey:      uint16(dpi * 16),
		ProviderTag: tag,
		Dynamic:     dynamic,
		MaxWidth:    int32(req.MaxWidth),
		SubpixelX:   quantizeFraction(origin.X),
		SubpixelY:   quantizeFraction(origin.Y),
	}
}

// quantizeFraction maps a coordinate's fraction to one of four subpixel
// bins. Finer phases rarely change the rendered mask enough to justify
// the extra cache entries.
func quantizeFraction(v float32) uint8 {
	f := v - float32(math.Floor(float64(v)))
	return uint8(f*4) & 3
}

func packColor(c lumen.Color) uint32 {
	r, g, b, a := c.ToSRGB8()
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a)
}

// Stats counts cache traffic. Rasterizations counts provider calls, the
// expensive work the cache exists to avoid.
type Stats struct {
	Hits           uint64
	Misses         uint64
	Rasterizations uint64
	Invalidations  uint64
}

// Cache memoizes shaped and rasterized glyph batches behind an LRU
// bound. It also tracks per-element edit lifecycle: an element gaining
// focus drops its cached batches so edits rasterize fresh, and losing
// focus freezes the final batch for cheap reuse.
type Cache struct {
	lru *cache.LRU[Key, *GlyphBatch]

	mu      sync.Mutex
	byID    map[uint64]map[Key]struct{}
	editing map[uint64]bool

	hits           atomic.Uint64
	misses         atomic.Uint64
	rasterizations atomic.Uint64
	invalidations  atomic.Uint64
}

// NewCache creates a glyph cache bounded to capacity entries.
func NewCache(capacity int) *Cache {
	c := &Cache{
		byID:    make(map[uint64]map[Key]struct{}),
		editing: make(map[uint64]bool),
	}
	c.lru = cache.NewLRU[Key, *GlyphBatch](capacity)
	c.lru.OnEvict = func(k Key, _ *GlyphBatch) { c.forgetKey(k) }
	return c
}

// Batch returns the glyph batch for a key, invoking the provider on a
// miss. Provider errors are wrapped in lumen.ErrProviderFailure and
// nothing is cached for the failed key.
func (c *Cache) Batch(p Provider, key Key, req Request) (*GlyphBatch, error) {
	if batch, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return batch, nil
	}
	c.misses.Add(1)

	batch, err := p.ShapeAndRasterize(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", lumen.ErrProviderFailure, err)
	}
	c.rasterizations.Add(1)

	c.lru.Put(key, batch)
	c.rememberKey(key)
	return batch, nil
}

// FocusGained marks an element as under edit and invalidates its cached
// batches, so the first paint after focus re-rasterizes from live
// content.
func (c *Cache) FocusGained(id uint64) {
	c.mu.Lock()
	c.editing[id] = true
	keys := c.byID[id]
	delete(c.byID, id)
	c.mu.Unlock()

	for k := range keys {
		if c.lru.Delete(k) {
			c.invalidations.Add(1)
		}
	}
}

// FocusLost freezes an element: its most recent batch stays cached and
// subsequent paints reuse it until the next invalidation.
func (c *Cache) FocusLost(id uint64) {
	c.mu.Lock()
	delete(c.editing, id)
	c.mu.Unlock()
}

// Editing reports whether the element is currently under edit.
func (c *Cache) Editing(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing[id]
}

// Invalidate drops every cached batch for one element, for content
// changes outside the focus lifecycle (style updates, data binding).
func (c *Cache) Invalidate(id uint64) {
	c.mu.Lock()
	keys := c.byID[id]
	delete(c.byID, id)
	c.mu.Unlock()

	for k := range keys {
		if c.lru.Delete(k) {
			c.invalidations.Add(1)
		}
	}
}

// Clear drops every cached batch.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.byID = make(map[uint64]map[Key]struct{})
	c.mu.Unlock()
	c.lru.Clear()
}

// Len returns the number of cached batches.
func (c *Cache) Len() int { return c.lru.Len() }

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:           c.hits.Load(),
		Misses:         c.misses.Load(),
		Rasterizations: c.rasterizations.Load(),
		Invalidations:  c.invalidations.Load(),
	}
}

func (c *Cache) rememberKey(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.byID[k.ID]
	if set == nil {
		set = make(map[Key]struct{})
		c.byID[k.ID] = set
	}
	set[k] = struct{}{}
}

func (c *Cache) forgetKey(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if set := c.byID[k.ID]; set != nil {
		delete(set, k)
		if len(set) == 0 {
			delete(c.byID, k.ID)
		}
	}
}

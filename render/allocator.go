// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/lumen"
)

// TextureUsage flags how a pooled texture will be used. Combine with
// bitwise OR.
type TextureUsage uint32

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

// TextureDescriptor describes a texture request. Requests with equal
// descriptors are interchangeable, which is what makes pooling by
// descriptor sound.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format gputypes.TextureFormat
	Usage  TextureUsage
}

// poolKey is the pooling identity of a descriptor: everything except
// the label.
type poolKey struct {
	width  uint32
	height uint32
	format gputypes.TextureFormat
	usage  TextureUsage
}

func (d TextureDescriptor) key() poolKey {
	return poolKey{width: d.Width, height: d.Height, format: d.Format, usage: d.Usage}
}

// byteSize estimates the texture's memory footprint.
func (d TextureDescriptor) byteSize() uint64 {
	bpp := uint64(4)
	switch d.Format {
	case gputypes.TextureFormatRGBA16Float:
		bpp = 8
	case gputypes.TextureFormatR8Unorm:
		bpp = 1
	}
	return uint64(d.Width) * uint64(d.Height) * bpp
}

// TextureResource is a pooled GPU resource. The GPU path backs it with
// a wgpu texture, the software path with a LinearTarget.
type TextureResource interface {
	Descriptor() TextureDescriptor
	Destroy()
}

// TextureFactory creates backing resources for the allocator. Injected
// so the allocator logic is testable without a device.
type TextureFactory func(desc TextureDescriptor) (TextureResource, error)

// Handle is a reference to a pooled texture. Release marks the handle,
// and Resource returns nil from then on, so a stale holder reads nil
// rather than corrupting whoever received the recycled texture. The
// generation records the allocator frame the handle was acquired in.
type Handle struct {
	resource   TextureResource
	generation uint32
	released   bool
}

// Resource returns the backing resource, or nil if the handle was
// released.
func (h *Handle) Resource() TextureResource {
	if h == nil || h.released {
		return nil
	}
	return h.resource
}

// Generation returns the allocator frame the handle was acquired in.
// EndFrame advances the frame, so two handles to the same recycled
// texture from different frames carry different generations.
func (h *Handle) Generation() uint32 { return h.generation }

// Descriptor returns the descriptor the handle was acquired with.
func (h *Handle) Descriptor() TextureDescriptor {
	if h == nil || h.resource == nil {
		return TextureDescriptor{}
	}
	return h.resource.Descriptor()
}

// AllocatorStats counts allocator traffic across its lifetime.
type AllocatorStats struct {
	Created   uint64 // textures created by the factory
	PoolHits  uint64 // acquisitions served from the pool
	Destroyed uint64 // textures destroyed (budget or shutdown)
	InUse     int    // handles currently outstanding
	Pooled    int    // idle textures in pools
	Bytes     uint64 // memory held by in-use plus pooled textures
}

// Allocator pools textures by descriptor.
//
// Release does not return a texture to its pool immediately: released
// handles retire at the next EndFrame, so a texture can never be
// recycled into the same frame that is still sampling it. Acquire
// fails with lumen.ErrResourceExhausted once the memory budget cannot
// admit a new texture even after evicting idle pool entries.
type Allocator struct {
	mu      sync.Mutex
	factory TextureFactory
	pools   map[poolKey][]TextureResource
	pending []TextureResource // released this frame, retired at EndFrame
	budget  uint64            // bytes; 0 disables the budget

	generation uint32
	stats      AllocatorStats
}

// NewAllocator creates an allocator with a memory budget in megabytes.
// A budget of 0 disables the limit.
func NewAllocator(factory TextureFactory, budgetMB int) *Allocator {
	return &Allocator{
		factory: factory,
		pools:   make(map[poolKey][]TextureResource),
		budget:  uint64(budgetMB) * 1024 * 1024,
	}
}

// Acquire returns a texture matching the descriptor, reusing a pooled
// one when available.
func (a *Allocator) Acquire(desc TextureDescriptor) (*Handle, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("lumen/render: zero-area texture %q", desc.Label)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := desc.key()
	if pool := a.pools[key]; len(pool) > 0 {
		res := pool[len(pool)-1]
		a.pools[key] = pool[:len(pool)-1]
		a.stats.PoolHits++
		a.stats.Pooled--
		a.stats.InUse++
		return &Handle{resource: res, generation: a.generation}, nil
	}

	size := desc.byteSize()
	if a.budget > 0 && a.stats.Bytes+size > a.budget {
		a.evictIdleLocked(size)
		if a.stats.Bytes+size > a.budget {
			return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use",
				lumen.ErrResourceExhausted, size, a.stats.Bytes, a.budget)
		}
	}

	res, err := a.factory(desc)
	if err != nil {
		return nil, fmt.Errorf("lumen/render: create texture %q: %w", desc.Label, err)
	}
	a.stats.Created++
	a.stats.InUse++
	a.stats.Bytes += size

	lumen.Logger().Debug("texture created",
		"label", desc.Label, "width", desc.Width, "height", desc.Height, "bytes", size)

	return &Handle{resource: res, generation: a.generation}, nil
}

// Release marks a handle's texture for return to the pool at the next
// EndFrame. Releasing twice is a no-op.
func (a *Allocator) Release(h *Handle) {
	if h == nil || h.released {
		return
	}
	h.released = true

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.InUse--
	a.pending = append(a.pending, h.resource)
}

// EndFrame retires the frame's released textures into their pools and
// advances the generation.
func (a *Allocator) EndFrame() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, res := range a.pending {
		key := res.Descriptor().key()
		a.pools[key] = append(a.pools[key], res)
		a.stats.Pooled++
	}
	a.pending = a.pending[:0]
	a.generation++
}

// evictIdleLocked destroys idle pooled textures until need bytes fit
// under the budget, oldest pools first. Caller holds mu.
func (a *Allocator) evictIdleLocked(need uint64) {
	for key, pool := range a.pools {
		for len(pool) > 0 && a.stats.Bytes+need > a.budget {
			res := pool[len(pool)-1]
			pool = pool[:len(pool)-1]
			a.destroyLocked(res)
		}
		a.pools[key] = pool
	}
}

func (a *Allocator) destroyLocked(res TextureResource) {
	size := res.Descriptor().byteSize()
	res.Destroy()
	a.stats.Destroyed++
	a.stats.Pooled--
	if a.stats.Bytes >= size {
		a.stats.Bytes -= size
	}
}

// Shutdown destroys every pooled texture. Outstanding handles keep
// their resources; callers release them first.
func (a *Allocator) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, res := range a.pending {
		key := res.Descriptor().key()
		a.pools[key] = append(a.pools[key], res)
		a.stats.Pooled++
	}
	a.pending = a.pending[:0]

	for key, pool := range a.pools {
		for _, res := range pool {
			a.destroyLocked(res)
		}
		delete(a.pools, key)
	}
}

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() AllocatorStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// SoftwareTextureFactory backs pooled textures with CPU LinearTargets,
// the factory the software executor and the tests use.
func SoftwareTextureFactory(desc TextureDescriptor) (TextureResource, error) {
	return &softwareTexture{
		desc:   desc,
		target: NewLinearTarget(int(desc.Width), int(desc.Height)),
	}, nil
}

type softwareTexture struct {
	desc   TextureDescriptor
	target *LinearTarget
}

func (t *softwareTexture) Descriptor() TextureDescriptor { return t.desc }
func (t *softwareTexture) Destroy()                      { t.target = nil }

// Target returns the CPU buffer backing a software texture, or nil for
// non-software resources.
func (t *softwareTexture) Target() *LinearTarget { return t.target }

// TargetOf extracts the CPU buffer from a handle backed by the software
// factory.
func TargetOf(h *Handle) *LinearTarget {
	if h == nil {
		return nil
	}
	if st, ok := h.Resource().(*softwareTexture); ok {
		return st.target
	}
	return nil
}

package gpu

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/lumen/render"
)

// Texture wraps a hal texture and its default view as a pooled frame
// resource. Destroy is idempotent; double destroys from allocator
// eviction and shutdown paths must not reach the driver twice.
type Texture struct {
	device hal.Device

	tex  hal.Texture
	view hal.TextureView

	desc      render.TextureDescriptor
	destroyed atomic.Bool
}

// NewTextureFactory returns a render.TextureFactory backed by the given
// device. The allocator owns pooling and budget; this factory only
// creates and destroys.
func NewTextureFactory(device hal.Device) render.TextureFactory {
	return func(desc render.TextureDescriptor) (render.TextureResource, error) {
		return createTexture(device, desc)
	}
}

func createTexture(device hal.Device, desc render.TextureDescriptor) (render.TextureResource, error) {
	if device == nil {
		return nil, ErrNotInitialized
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         toWGPUUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %q: %w", desc.Label, err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        desc.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create texture view %q: %w", desc.Label, err)
	}

	return &Texture{
		device: device,
		tex:    tex,
		view:   view,
		desc:   desc,
	}, nil
}

// Descriptor returns the descriptor the texture was created with.
func (t *Texture) Descriptor() render.TextureDescriptor {
	return t.desc
}

// Destroy releases the view and texture. Safe to call more than once.
func (t *Texture) Destroy() {
	if !t.destroyed.CompareAndSwap(false, true) {
		return
	}
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// HALTexture exposes the underlying texture for pass encoding.
// Returns nil after Destroy.
func (t *Texture) HALTexture() hal.Texture {
	if t.destroyed.Load() {
		return nil
	}
	return t.tex
}

// HALView exposes the default view for attachment and binding.
// Returns nil after Destroy.
func (t *Texture) HALView() hal.TextureView {
	if t.destroyed.Load() {
		return nil
	}
	return t.view
}

// toWGPUUsage maps allocator usage flags onto wgpu usage bits.
func toWGPUUsage(u render.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&render.TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if u&render.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&render.TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&render.TextureUsageStorageBinding != 0 {
		out |= gputypes.TextureUsageStorageBinding
	}
	if u&render.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

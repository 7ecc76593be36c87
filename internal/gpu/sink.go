package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/lumen/render"
)

// sinkFormat is the encoding of presented frames; engine output is
// sRGB-encoded 8-bit, so the sink surface matches.
const sinkFormat = gputypes.TextureFormatRGBA8UnormSrgb

// FrameSink bundles the GPU collaborators a host hands to
// render.EngineOptions: a device handle, a pooled texture factory, and
// a Present function that pushes each encoded frame through the blit
// pipeline into a GPU surface texture. Windowed hosts swap the sink
// surface for their swapchain view; headless hosts keep the offscreen
// texture.
type FrameSink struct {
	backend   *Backend
	provider  *Provider
	pipelines *Pipelines
	presenter *Presenter
	staging   *render.Allocator
	factory   render.TextureFactory

	mu      sync.Mutex
	surface *Texture
}

// NewFrameSink builds the present path on an initialized backend and
// creates the initial surface texture at the given size.
func NewFrameSink(b *Backend, width, height int) (*FrameSink, error) {
	if b == nil || !b.IsInitialized() {
		return nil, ErrNotInitialized
	}

	pipelines, err := NewPipelines(b.Device(), sinkFormat)
	if err != nil {
		return nil, err
	}
	factory := NewTextureFactory(b.Device())
	staging := render.NewAllocator(factory, 0)

	presenter, err := NewPresenter(b.Device(), b.Queue(), pipelines, staging)
	if err != nil {
		pipelines.Destroy()
		return nil, err
	}

	s := &FrameSink{
		backend:   b,
		provider:  NewProvider(b, sinkFormat),
		pipelines: pipelines,
		presenter: presenter,
		staging:   staging,
		factory:   factory,
	}
	if err := s.ensureSurfaceLocked(width, height); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// DeviceHandle returns the handle for render.EngineOptions.Device.
func (s *FrameSink) DeviceHandle() render.DeviceHandle { return s.provider }

// Factory returns the texture factory for render.EngineOptions.Factory.
func (s *FrameSink) Factory() render.TextureFactory { return s.factory }

// Present satisfies render.PresentFunc: it uploads the frame and blits
// it onto the sink surface, growing the surface when the frame did.
func (s *FrameSink) Present(frame *render.Surface) error {
	if frame == nil {
		return fmt.Errorf("gpu: present nil frame")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface == nil {
		return ErrNotInitialized
	}
	if err := s.ensureSurfaceLocked(frame.Width(), frame.Height()); err != nil {
		return err
	}
	return s.presenter.Present(frame, s.surface.HALView(), false)
}

func (s *FrameSink) ensureSurfaceLocked(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gpu: sink surface %dx%d is not positive", width, height)
	}
	if s.surface != nil {
		d := s.surface.Descriptor()
		if d.Width == uint32(width) && d.Height == uint32(height) {
			return nil
		}
		s.surface.Destroy()
		s.surface = nil
	}

	res, err := s.factory(render.TextureDescriptor{
		Label:  "sink_surface",
		Width:  uint32(width),
		Height: uint32(height),
		Format: sinkFormat,
		Usage:  render.TextureUsageRenderAttachment | render.TextureUsageCopySrc,
	})
	if err != nil {
		return err
	}
	s.surface = res.(*Texture)
	return nil
}

// Surface exposes the current sink texture, for hosts that read the
// presented pixels back or hand the texture on.
func (s *FrameSink) Surface() *Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface
}

// Close releases the surface, presenter, pooled staging textures, and
// pipelines. The backend stays open; it belongs to the caller.
func (s *FrameSink) Close() {
	s.mu.Lock()
	if s.surface != nil {
		s.surface.Destroy()
		s.surface = nil
	}
	s.mu.Unlock()

	if s.presenter != nil {
		s.presenter.Destroy()
		s.presenter = nil
	}
	if s.staging != nil {
		s.staging.Shutdown()
	}
	if s.pipelines != nil {
		s.pipelines.Destroy()
		s.pipelines = nil
	}
}

package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/lumen/render"
)

// Provider adapts a Backend to gpucontext.DeviceProvider, the handle
// the engine receives its device through. The hal device and queue
// satisfy the gpucontext type tokens directly.
type Provider struct {
	backend *Backend
	format  gputypes.TextureFormat
}

var _ render.DeviceHandle = (*Provider)(nil)

// NewProvider wraps an initialized backend. surfaceFormat is what
// SurfaceFormat reports; pass TextureFormatUndefined for headless use.
func NewProvider(b *Backend, surfaceFormat gputypes.TextureFormat) *Provider {
	return &Provider{backend: b, format: surfaceFormat}
}

// Device implements gpucontext.DeviceProvider.
func (p *Provider) Device() gpucontext.Device {
	if !p.backend.IsInitialized() {
		return nil
	}
	return p.backend.Device()
}

// Queue implements gpucontext.DeviceProvider.
func (p *Provider) Queue() gpucontext.Queue {
	if !p.backend.IsInitialized() {
		return nil
	}
	return p.backend.Queue()
}

// Adapter implements gpucontext.DeviceProvider. The hal layer does not
// keep the adapter open past device creation.
func (p *Provider) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat implements gpucontext.DeviceProvider.
func (p *Provider) SurfaceFormat() gputypes.TextureFormat { return p.format }

// AdapterInfo implements gpucontext.DeviceProvider.
func (p *Provider) AdapterInfo() gpucontext.AdapterInfo {
	info := p.backend.Info()
	return gpucontext.AdapterInfo{
		Name: info.Name,
		Type: adapterTypeOf(info.DeviceType),
	}
}

// adapterTypeOf maps the hal device type onto gpucontext's adapter
// taxonomy.
func adapterTypeOf(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	}
	return gpucontext.AdapterTypeUnknown
}

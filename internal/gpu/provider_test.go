package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/lumen/render"
)

func TestProviderWithoutDevice(t *testing.T) {
	p := NewProvider(NewBackend(), gputypes.TextureFormatRGBA8UnormSrgb)

	if p.Device() != nil || p.Queue() != nil {
		t.Error("uninitialized backend must expose no device or queue")
	}
	if render.HasDevice(p) {
		t.Error("HasDevice must be false before Init")
	}
	if got := p.AdapterInfo().Type; got != gpucontext.AdapterTypeUnknown {
		t.Errorf("AdapterInfo().Type = %v, want unknown", got)
	}
	if got := p.SurfaceFormat(); got != gputypes.TextureFormatRGBA8UnormSrgb {
		t.Errorf("SurfaceFormat = %v, want the configured format", got)
	}
}

func TestAdapterTypeOf(t *testing.T) {
	cases := []struct {
		name string
		in   gputypes.DeviceType
		want gpucontext.AdapterType
	}{
		{"discrete", gputypes.DeviceTypeDiscreteGPU, gpucontext.AdapterTypeDiscrete},
		{"integrated", gputypes.DeviceTypeIntegratedGPU, gpucontext.AdapterTypeIntegrated},
		{"cpu", gputypes.DeviceTypeCPU, gpucontext.AdapterTypeSoftware},
		{"other", gputypes.DeviceTypeOther, gpucontext.AdapterTypeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := adapterTypeOf(tc.in); got != tc.want {
				t.Errorf("adapterTypeOf(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestFrameSinkRequiresInitializedBackend(t *testing.T) {
	if _, err := NewFrameSink(NewBackend(), 100, 100); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("NewFrameSink on a cold backend = %v, want ErrNotInitialized", err)
	}
	if _, err := NewFrameSink(nil, 100, 100); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("NewFrameSink(nil) = %v, want ErrNotInitialized", err)
	}
}

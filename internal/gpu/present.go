package gpu

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/lumen/render"
)

// presentWait bounds how long a frame submission may block.
const presentWait = 5 * time.Second

// Presenter pushes encoded sRGB frames to a swapchain view. The frame
// pixels are uploaded into a pooled staging texture, then drawn over
// the surface with the blit pipeline. Rasterization itself happens
// upstream; the presenter only moves finished pixels.
type Presenter struct {
	device    hal.Device
	queue     hal.Queue
	pipelines *Pipelines
	alloc     *render.Allocator

	sampler hal.Sampler
}

// NewPresenter creates a presenter that pools its staging textures
// through the given allocator. The allocator must be built with this
// package's texture factory.
func NewPresenter(device hal.Device, queue hal.Queue, pipelines *Pipelines, alloc *render.Allocator) (*Presenter, error) {
	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "present_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create present sampler: %w", err)
	}
	return &Presenter{
		device:    device,
		queue:     queue,
		pipelines: pipelines,
		alloc:     alloc,
		sampler:   sampler,
	}, nil
}

// Destroy releases the sampler. Pooled textures belong to the allocator.
func (p *Presenter) Destroy() {
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
}

// Present uploads the frame and draws it to the surface view, scaling
// when the surface outgrew the frame mid-resize. flipY compensates for
// surfaces with a bottom-left origin.
func (p *Presenter) Present(frame *render.Surface, surfaceView hal.TextureView, flipY bool) error {
	if frame == nil || surfaceView == nil {
		return fmt.Errorf("gpu: present needs a frame and a surface view")
	}

	w, h := uint32(frame.Width()), uint32(frame.Height())
	handle, err := p.alloc.Acquire(render.TextureDescriptor{
		Label:  "present_staging",
		Width:  w,
		Height: h,
		Format: gputypes.TextureFormatRGBA8UnormSrgb,
		Usage:  render.TextureUsageCopyDst | render.TextureUsageTextureBinding,
	})
	if err != nil {
		return err
	}
	defer p.alloc.Release(handle)

	staging, ok := handle.Resource().(*Texture)
	if !ok {
		return fmt.Errorf("gpu: allocator is not backed by GPU textures")
	}

	err = p.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: staging.HALTexture(), MipLevel: 0},
		frame.Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("gpu: upload frame pixels: %w", err)
	}

	params := make([]byte, 16)
	if flipY {
		binary.LittleEndian.PutUint32(params[0:4], 1)
	}
	uniformBuf, err := p.createAndUploadBuffer("present_params", params,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer p.device.DestroyBuffer(uniformBuf)

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "present_bind",
		Layout: p.pipelines.blitLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uint64(len(params)),
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: staging.HALView().NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: p.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create present bind group: %w", err)
	}
	defer p.device.DestroyBindGroup(bindGroup)

	return p.encodeBlit(surfaceView, bindGroup)
}

func (p *Presenter) encodeBlit(surfaceView hal.TextureView, bindGroup hal.BindGroup) error {
	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "present_encoder",
	})
	if err != nil {
		return fmt.Errorf("gpu: create present encoder: %w", err)
	}
	if err := encoder.BeginEncoding("present"); err != nil {
		return fmt.Errorf("gpu: begin present encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "present_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       surfaceView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	rp.SetPipeline(p.pipelines.Blit)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end present encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	idx, err := p.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("gpu: submit present: %w", err)
	}
	return waitForSubmission(p.queue, idx, presentWait)
}

// waitForSubmission polls the queue until the submission index completes
// or the timeout elapses. The hal queue tracks its own synchronization;
// PollCompleted is the only completion signal it exposes.
func waitForSubmission(q hal.Queue, idx uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for q.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("gpu: submission %d not completed after %v", idx, timeout)
		}
		time.Sleep(100 * time.Microsecond)
	}
	return nil
}

func (p *Presenter) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s: %w", label, err)
	}
	if err := p.queue.WriteBuffer(buf, 0, data); err != nil {
		p.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("gpu: upload %s: %w", label, err)
	}
	return buf, nil
}

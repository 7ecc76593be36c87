package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/lumen"
)

// Sentinel errors for GPU bring-up and use.
var (
	// ErrNoGPU indicates no usable GPU adapter was found.
	ErrNoGPU = errors.New("gpu: no GPU adapter available")

	// ErrNotInitialized indicates the backend was used before Init.
	ErrNotInitialized = errors.New("gpu: backend not initialized")
)

// AdapterInfo describes the selected GPU adapter.
type AdapterInfo struct {
	Name       string
	DeviceType gputypes.DeviceType
}

func (i AdapterInfo) String() string {
	return fmt.Sprintf("%s (%v)", i.Name, i.DeviceType)
}

// Backend owns the hal instance, device, and queue for the lifetime of
// the engine. The host may also hand in an already-open device via
// NewBackendWithDevice, in which case Close leaves the device alone.
type Backend struct {
	mu sync.RWMutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	info     AdapterInfo

	// ownsDevice is false when the device came from the host.
	ownsDevice  bool
	initialized bool
}

// NewBackend creates an uninitialized backend. Call Init before use.
func NewBackend() *Backend {
	return &Backend{}
}

// NewBackendWithDevice wraps a device and queue owned by the host
// application. Close will not destroy them.
func NewBackendWithDevice(device hal.Device, queue hal.Queue) *Backend {
	return &Backend{
		device:      device,
		queue:       queue,
		initialized: device != nil && queue != nil,
	}
}

// Init creates the instance, selects an adapter, and opens a device.
// Discrete and integrated GPUs are preferred over software adapters.
// Init is idempotent.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("%w: vulkan backend unavailable", lumen.ErrNoDevice)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return fmt.Errorf("%w: %w", lumen.ErrNoDevice, ErrNoGPU)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("gpu: open device: %w", err)
	}

	b.instance = instance
	b.device = openDev.Device
	b.queue = openDev.Queue
	b.info = AdapterInfo{
		Name:       selected.Info.Name,
		DeviceType: selected.Info.DeviceType,
	}
	b.ownsDevice = true
	b.initialized = true

	lumen.Logger().Info("gpu backend initialized", "adapter", b.info.String())
	return nil
}

// Close releases the device and instance in reverse creation order.
// Devices handed in by the host are left untouched.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}
	if b.ownsDevice && b.device != nil {
		b.device.Destroy()
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
	b.device = nil
	b.queue = nil
	b.initialized = false
}

// IsInitialized reports whether a device is available.
func (b *Backend) IsInitialized() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialized
}

// Device returns the hal device, or nil before Init.
func (b *Backend) Device() hal.Device {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.device
}

// Queue returns the hal queue, or nil before Init.
func (b *Backend) Queue() hal.Queue {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.queue
}

// Info returns details of the selected adapter.
func (b *Backend) Info() AdapterInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.info
}

package gpu

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// CompileToSPIRV compiles WGSL source to SPIR-V words via naga.
// SPIR-V is little-endian 32-bit words.
func CompileToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}
	return spirvWords(spirvBytes), nil
}

func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}

// newShaderModule compiles WGSL through naga and creates the hal module
// from SPIR-V. Backends that reject SPIR-V get the WGSL source directly.
func newShaderModule(device hal.Device, label, wgsl string) (hal.ShaderModule, error) {
	if wgsl == "" {
		return nil, fmt.Errorf("gpu: %s shader source is empty", label)
	}
	code, err := CompileToSPIRV(wgsl)
	if err != nil {
		// Fall back to handing the backend raw WGSL.
		return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  label,
			Source: hal.ShaderSource{WGSL: wgsl},
		})
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: code},
	})
}

package gpu

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// compileShaderToSPIRV compiles WGSL source to a SPIR-V uint32 slice.
// SPIR-V is little-endian 32-bit words.
func compileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}

	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	return spirvCode, nil
}

// createShaderModule creates a HAL shader module from WGSL source,
// preferring an ahead-of-time SPIR-V compile via naga. Backends that want
// WGSL directly get the source as a fallback when naga rejects it.
func createShaderModule(device hal.Device, label, wgslSource string) (hal.ShaderModule, error) {
	if wgslSource == "" {
		return nil, fmt.Errorf("%s shader source is empty", label)
	}

	spirv, err := compileShaderToSPIRV(wgslSource)
	if err == nil {
		module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  label,
			Source: hal.ShaderSource{SPIRV: spirv},
		})
		if err == nil {
			return module, nil
		}
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: wgslSource},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", label, err)
	}
	return module, nil
}

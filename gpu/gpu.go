// Package gpu enables GPU-accelerated rendering for smwrender.
//
// Importing this package registers the wgpu accelerator:
//
//	import _ "github.com/SMW-Editor/smw-render/gpu"
//
// If no usable GPU adapter is found, registration is skipped and the
// renderers keep using the CPU path. Call Register directly to observe the
// initialization error.
package gpu

import (
	"log/slog"

	"github.com/SMW-Editor/smw-render"
	"github.com/SMW-Editor/smw-render/internal/gpu"
)

func init() {
	if err := Register(); err != nil {
		smwrender.Logger().Warn("gpu: accelerator unavailable, using CPU rendering",
			slog.String("error", err.Error()))
	}
}

// Register creates and registers the wgpu accelerator. It replaces any
// previously registered accelerator. Returns the GPU initialization error,
// in which case the previous accelerator stays registered.
func Register() error {
	return smwrender.RegisterAccelerator(gpu.New())
}

// Package gpu implements the wgpu-backed rendering accelerator for
// smwrender.
//
// The package drives gogpu/wgpu at the HAL level: it owns a device and
// queue, two WGSL render pipelines (tile decode and palette grid), and the
// GPU copies of the graphics and color tables. Draws render into an
// offscreen BGRA8 texture cleared to transparent, which is read back and
// composited over the caller's RGBA raster, so discarded fragments leave
// target pixels untouched exactly like the CPU path.
//
// All failures here are either fatal at pipeline construction (surfaced
// once from Init) or per-draw errors that make the renderers fall back to
// the CPU path.
package gpu

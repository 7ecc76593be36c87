// Package gpu holds the wgpu-backed rendering path: device bring-up,
// frame texture allocation, WGSL pass pipelines, and readback.
//
// The package talks to the hardware through the wgpu hal layer. Shaders
// are authored in WGSL, embedded at build time, and compiled either
// directly (backends that accept WGSL) or through naga to SPIR-V.
//
// Everything here is plumbing for the render package: the public
// surface of the engine never exposes hal types.
package gpu

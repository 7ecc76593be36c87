// Package lumen is a GPU-native 2D rendering engine.
//
// lumen turns a declarative display list of draw commands into
// color-managed pixels on a presentable surface. It is built around a
// small number of invariants that hold through the whole pipeline:
//
//   - Every internal color is premultiplied and linear. Gamma encoding
//     and un-premultiplication happen exactly once, at the output pass.
//   - Compositing follows the premultiplied source-over law
//     result = src + dst*(1-src.alpha).
//   - GPU resources are pooled and handle-based; nothing is destroyed
//     while a submitted frame may still reference it.
//   - Expensive work (layout, shaping, geometry upload) is decoupled from
//     per-pixel resize events by an intermediate target, a cheap blit
//     pass, and a debounced layout width.
//
// The package layout mirrors the pipeline: the root package holds colors,
// brushes and geometry; scene holds the display list and its builder;
// text holds the glyph cache and the shaping provider boundary; render
// holds the allocator, the pass manager and the resize strategy; the
// internal packages hold blending, filtering and the wgpu plumbing.
//
// lumen does not open windows, load fonts from disk, or run an event
// loop. The host hands it a GPU device (via gpucontext.DeviceProvider),
// a text shaping provider, and a surface to present to.
package lumen

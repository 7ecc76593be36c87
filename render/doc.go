// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render executes display lists.
//
// A frame flows through a fixed pass sequence: acquire target, fill,
// gradient, shadow, text, composite, output, present. The PassManager
// enforces that sequence; the Allocator pools the GPU textures the
// passes render into; the SoftwareExecutor is the CPU reference
// implementation of every pass and the path unit tests assert against.
//
// All intermediate rendering happens in premultiplied linear float
// color. The output pass performs the single linear-to-sRGB encode of
// the pipeline.
package render

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/lumen"
	"github.com/gogpu/lumen/scene"
)

// Pass identifies one stage of the frame sequence.
type Pass uint8

const (
	PassIdle Pass = iota
	PassAcquire
	PassFill
	PassGradient
	PassShadow
	PassText
	PassComposite
	PassOutput
	PassPresent
)

// String returns the pass name for logs and errors.
func (p Pass) String() string {
	switch p {
	case PassIdle:
		return "idle"
	case PassAcquire:
		return "acquire"
	case PassFill:
		return "fill"
	case PassGradient:
		return "gradient"
	case PassShadow:
		return "shadow"
	case PassText:
		return "text"
	case PassComposite:
		return "composite"
	case PassOutput:
		return "output"
	case PassPresent:
		return "present"
	}
	return "unknown"
}

// FrameStats summarizes one frame's work.
type FrameStats struct {
	Commands      int
	FillDraws     int
	GradientDraws int
	ShadowDraws   int
	TextDraws     int
	Direct        bool // frame took the direct-to-surface path
	Skipped       bool // zero-area surface, nothing rendered
}

// PassManager sequences the passes of one frame.
//
// Passes run strictly forward: acquire, fill, gradient, shadow, text,
// composite, output, present. Skipping a pass is allowed (a frame with
// no text skips the text pass), running one twice or out of order is a
// programming error and fails loudly.
//
// The direct-to-surface path legally skips composite: BeginFrame only
// grants it when the display list is opaque solid fills edge to edge,
// so no blending against prior content can occur.
type PassManager struct {
	phase  Pass
	direct bool
	stats  FrameStats
}

// NewPassManager creates an idle pass manager, reusable across frames.
func NewPassManager() *PassManager {
	return &PassManager{}
}

// BeginFrame starts a frame for a display list and surface size.
//
// A zero-area surface skips the frame: the returned skip flag is set
// and no pass may run. When wantDirect is set, the direct path is
// granted only if the list satisfies the opaque-solid precondition;
// otherwise the frame silently falls back to the offscreen path.
func (m *PassManager) BeginFrame(list *scene.DisplayList, surfaceW, surfaceH int, wantDirect bool) (skip bool, err error) {
	if m.phase != PassIdle {
		return false, fmt.Errorf("lumen/render: BeginFrame during %s pass", m.phase)
	}
	if surfaceW <= 0 || surfaceH <= 0 {
		m.stats = FrameStats{Skipped: true}
		return true, nil
	}

	m.direct = wantDirect && list.OpaqueSolidOnly()
	if wantDirect && !m.direct {
		lumen.Logger().Debug("direct-to-surface refused, list not opaque solid")
	}
	m.stats = FrameStats{Commands: len(list.Commands), Direct: m.direct}
	m.phase = PassAcquire
	return false, nil
}

// Direct reports whether the current frame renders straight to the
// surface.
func (m *PassManager) Direct() bool { return m.direct }

// Advance moves to the given pass. The target must be later than the
// current pass; earlier or repeated passes are rejected.
func (m *PassManager) Advance(to Pass) error {
	if m.phase == PassIdle {
		return fmt.Errorf("lumen/render: %s pass outside a frame", to)
	}
	if to <= m.phase {
		return fmt.Errorf("lumen/render: %s pass after %s", to, m.phase)
	}
	if m.direct && to == PassComposite {
		return fmt.Errorf("lumen/render: composite pass on the direct path")
	}
	if !m.direct && to == PassPresent && m.phase < PassOutput {
		return fmt.Errorf("lumen/render: present before output")
	}
	m.phase = to
	return nil
}

// Phase returns the current pass.
func (m *PassManager) Phase() Pass { return m.phase }

// CountDraw accumulates per-pass draw counters for the frame stats.
func (m *PassManager) CountDraw(p Pass, n int) {
	switch p {
	case PassFill:
		m.stats.FillDraws += n
	case PassGradient:
		m.stats.GradientDraws += n
	case PassShadow:
		m.stats.ShadowDraws += n
	case PassText:
		m.stats.TextDraws += n
	}
}

// EndFrame closes the frame and returns its stats. Valid from any
// phase so aborted frames also reset cleanly.
func (m *PassManager) EndFrame() FrameStats {
	stats := m.stats
	m.phase = PassIdle
	m.direct = false
	return stats
}

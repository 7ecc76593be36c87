// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var h DeviceHandle = NullDeviceHandle{}

	if HasDevice(h) {
		t.Error("NullDeviceHandle must not report a device")
	}
	if h.Device() != nil || h.Queue() != nil || h.Adapter() != nil {
		t.Error("null handle accessors must all return nil")
	}
	if got := h.SurfaceFormat(); got != gputypes.TextureFormatUndefined {
		t.Errorf("SurfaceFormat = %v, want undefined", got)
	}
	if got := h.AdapterInfo().Type; got != gpucontext.AdapterTypeUnknown {
		t.Errorf("AdapterInfo().Type = %v, want unknown", got)
	}
}

func TestHasDeviceNil(t *testing.T) {
	if HasDevice(nil) {
		t.Error("nil handle must not report a device")
	}
}

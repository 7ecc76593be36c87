package gpu

import (
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// stubQueue implements hal.Queue with a settable completion watermark.
type stubQueue struct {
	completed atomic.Uint64
	submitted atomic.Uint64
}

var _ hal.Queue = (*stubQueue)(nil)

func (q *stubQueue) Submit(buffers []hal.CommandBuffer) (uint64, error) {
	return q.submitted.Add(1), nil
}

func (q *stubQueue) PollCompleted() uint64 { return q.completed.Load() }

func (q *stubQueue) WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error { return nil }

func (q *stubQueue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	return nil
}

func (q *stubQueue) Present(surface hal.Surface, texture hal.SurfaceTexture, damageRects []image.Rectangle) error {
	return nil
}

func (q *stubQueue) GetTimestampPeriod() float32       { return 1 }
func (q *stubQueue) SupportsCommandBufferCopies() bool { return false }
func (q *stubQueue) SetSwapchainSuppressed(bool)       {}

func TestWaitForSubmissionCompletes(t *testing.T) {
	q := &stubQueue{}
	idx, err := q.Submit(nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	q.completed.Store(idx)

	if err := waitForSubmission(q, idx, time.Second); err != nil {
		t.Errorf("waitForSubmission on a completed index: %v", err)
	}
}

func TestWaitForSubmissionTimesOut(t *testing.T) {
	q := &stubQueue{}
	idx, _ := q.Submit(nil)

	// The watermark never reaches idx.
	err := waitForSubmission(q, idx, 5*time.Millisecond)
	if err == nil {
		t.Fatal("waitForSubmission must fail when the GPU never completes")
	}
}

func TestWaitForSubmissionLaterWatermark(t *testing.T) {
	q := &stubQueue{}
	idx, _ := q.Submit(nil)
	// A later submission completing covers earlier ones.
	q.completed.Store(idx + 3)

	if err := waitForSubmission(q, idx, time.Second); err != nil {
		t.Errorf("waitForSubmission with a later watermark: %v", err)
	}
}

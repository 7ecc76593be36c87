package lumen

import "errors"

// Engine-level errors. Frame-scoped failures (resource exhaustion,
// surface loss) abort only the current frame; the caller decides whether
// to retry on the next one. Build-time failures (a malformed display
// list) are rejected before any GPU work is issued.
var (
	// ErrResourceExhausted is returned when the allocator cannot satisfy
	// a request. The current frame is abandoned; the engine never
	// retries silently.
	ErrResourceExhausted = errors.New("lumen: GPU resource exhausted")

	// ErrSurfaceUnavailable is returned when the presentable surface
	// cannot be acquired (for example after device loss). A zero-area
	// surface is not an error and skips the frame instead.
	ErrSurfaceUnavailable = errors.New("lumen: surface unavailable")

	// ErrMalformedDisplayList is returned by the builder when the
	// clip or transform stack is unbalanced at Finish.
	ErrMalformedDisplayList = errors.New("lumen: malformed display list")

	// ErrProviderFailure is returned when the text shaping provider
	// fails for a run. The run is dropped or drawn as a placeholder and
	// the frame continues.
	ErrProviderFailure = errors.New("lumen: text provider failure")

	// ErrNoDevice is returned at construction when no usable GPU device
	// is supplied. This is the only fatal configuration-time failure.
	ErrNoDevice = errors.New("lumen: no GPU device")
)

package video

import "errors"

// Sentinel errors for video controller operations.
var (
	// ErrUnavailableFeature indicates the engine build has no video
	// decoders, so video output is unsupported in this deployment.
	// This is permanent, not a transient fault.
	ErrUnavailableFeature = errors.New("video: engine reports no video decoders")

	// ErrUnsupportedOperation indicates a capability this platform variant
	// does not implement.
	ErrUnsupportedOperation = errors.New("video: operation not supported on this platform")

	// ErrDisposed is returned when operating on a disposed controller.
	ErrDisposed = errors.New("video: controller disposed")
)

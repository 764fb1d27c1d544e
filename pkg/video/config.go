package video

// Config configures video output for one player.
type Config struct {
	// Scale is the display scale factor converting logical video pixels to
	// physical surface pixels. Zero means 1.0.
	Scale float64

	// VO explicitly selects the engine's video output driver. When both VO
	// and Hwdec are empty, driver activation is deferred: the engine starts
	// with the null driver and the real driver is enabled once the first
	// complete dimension pair arrives.
	VO string

	// Hwdec explicitly selects the engine's hardware decoding mode.
	Hwdec string

	// EnableHardwareAcceleration requests hardware decoding when Hwdec is
	// not set explicitly. Forced off on emulated hosts, where hardware
	// decoders are known to misbehave.
	EnableHardwareAcceleration bool
}

func (c Config) scale() float64 {
	if c.Scale <= 0 {
		return 1.0
	}
	return c.Scale
}

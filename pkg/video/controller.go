package video

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/go-drift/mediakit/pkg/engine"
	"github.com/go-drift/mediakit/pkg/errors"
	"github.com/go-drift/mediakit/pkg/platform"
)

// defaultVO is the output driver activated once the first complete
// dimension pair arrives, unless the caller selected one explicitly.
const defaultVO = "gpu"

// coordinatedDrivers are output drivers that render into the shared
// compositing surface and therefore require explicit surface-size
// coordination before they may draw. Drivers that manage their own native
// window are excluded; "null" is the parked state used while driver
// activation is deferred.
var coordinatedDrivers = map[string]bool{
	"null":     true,
	"gpu":      true,
	"gpu-next": true,
}

// rectQueueDepth bounds the merged-rect queue. Dimension bursts beyond this
// depth block the producer until the consumer catches up, preserving strict
// ordering.
const rectQueueDepth = 16

// Controller synchronizes the engine's reported video size with the host
// platform's native surface. It observes the width and height properties,
// merges them into complete rects, and for each rect resizes the platform
// surface and updates the engine's output options before reaffirming the
// output driver — the surface must be sized before the driver renders into
// it, or the first frame targets a stale 1x1 backing store.
//
// Create controllers through [Service.Create]; creation is idempotent per
// player handle. All methods are safe for concurrent use.
type Controller struct {
	handle int64
	eng    *engine.Engine
	svc    *Service
	scale  float64

	displayID int64
	windowRef int64

	targetVO    string
	targetHwdec string

	// mu serializes the two dimension feeds into the pending accumulator.
	mu      sync.Mutex
	pending pendingSize

	rects    chan Rect
	quit     chan struct{}
	loopDone chan struct{}

	rectMu  sync.RWMutex
	current Rect

	// OnRectChanged is called when the externally-visible rect changes.
	// A zero rect marks the surface as in transition between sizes.
	// Called on the UI thread via [platform.Dispatch].
	// Set this before dimension events can arrive (i.e. right after
	// creation) to avoid missing updates.
	OnRectChanged func(Rect)

	firstFrame *firstFrameSignal

	unobserveWidth  func()
	unobserveHeight func()

	disposed atomic.Bool
}

// Create returns the video surface controller for the player, creating it
// if none is registered yet. Creation fails with [ErrUnavailableFeature]
// when the engine build has no video decoders.
//
// On emulated hosts, hardware acceleration is forced off regardless of the
// configuration. When the configuration names neither an output driver nor
// a hardware decode mode, driver activation is deferred: the engine starts
// with the null driver and the real one is enabled by the first complete
// dimension pair.
func (s *Service) Create(player *engine.Player, cfg Config) (*Controller, error) {
	handle, err := player.Handle()
	if err != nil {
		return nil, fmt.Errorf("video: resolve player handle: %w", err)
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	if existing, ok := s.Controller(handle); ok {
		return existing, nil
	}

	eng := player.Engine()

	hasVideo, err := eng.HasVideoDecoder(handle)
	if err != nil {
		return nil, fmt.Errorf("video: query decoders: %w", err)
	}
	if !hasVideo {
		return nil, ErrUnavailableFeature
	}

	hardware := cfg.EnableHardwareAcceleration
	if hardware && s.isEmulator() {
		hardware = false
	}

	displayID, windowRef, err := s.createSurface(handle)
	if err != nil {
		return nil, fmt.Errorf("video: %w", err)
	}

	c := &Controller{
		handle:     handle,
		eng:        eng,
		svc:        s,
		scale:      cfg.scale(),
		displayID:  displayID,
		windowRef:  windowRef,
		pending:    newPendingSize(),
		rects:      make(chan Rect, rectQueueDepth),
		quit:       make(chan struct{}),
		loopDone:   make(chan struct{}),
		firstFrame: newFirstFrameSignal(),
	}
	c.targetVO = cfg.VO
	if c.targetVO == "" {
		c.targetVO = defaultVO
	}
	c.targetHwdec = cfg.Hwdec
	if c.targetHwdec == "" {
		if hardware {
			c.targetHwdec = "auto-safe"
		} else {
			c.targetHwdec = "no"
		}
	}

	if err := c.applyInitialOptions(cfg, hardware); err != nil {
		if derr := s.disposeSurface(handle); derr != nil {
			errors.Report(&errors.KitError{
				Op:      "video.Service.Create",
				Kind:    errors.KindSurface,
				Handle:  handle,
				Channel: videoChannelName,
				Err:     derr,
			})
		}
		return nil, fmt.Errorf("video: configure engine: %w", err)
	}

	player.OnDispose(c.Dispose)

	c.unobserveWidth = eng.Observe(handle, "width", c.onWidth)
	c.unobserveHeight = eng.Observe(handle, "height", c.onHeight)
	go c.rectLoop()

	s.register(handle, c)
	return c, nil
}

// applyInitialOptions sets the engine's initial output configuration and
// the fixed tuning profile.
func (c *Controller) applyInitialOptions(cfg Config, hardware bool) error {
	if cfg.VO == "" && cfg.Hwdec == "" {
		// Deferred activation: park the output on the null driver until
		// the first complete dimension pair sizes the surface.
		if err := c.eng.SetProperty(c.handle, "vo", "null"); err != nil {
			return err
		}
		if err := c.eng.SetProperty(c.handle, "hwdec", c.targetHwdec); err != nil {
			return err
		}
	} else {
		if err := c.eng.SetProperty(c.handle, "wid", strconv.FormatInt(c.windowRef, 10)); err != nil {
			return err
		}
		if err := c.eng.SetProperty(c.handle, "vo", c.targetVO); err != nil {
			return err
		}
		if err := c.eng.SetProperty(c.handle, "hwdec", c.targetHwdec); err != nil {
			return err
		}
	}

	c.svc.mu.RLock()
	profile := c.svc.profile
	c.svc.mu.RUnlock()
	return c.eng.ApplyProfile(c.handle, profile)
}

// Handle returns the native player handle this controller serves.
func (c *Controller) Handle() int64 {
	return c.handle
}

// DisplayID returns the platform display id of the output surface.
func (c *Controller) DisplayID() int64 {
	return c.displayID
}

// WindowRef returns the native window reference the engine renders into.
func (c *Controller) WindowRef() int64 {
	return c.windowRef
}

// Rect returns the externally-visible surface rect. A zero rect means the
// surface is in transition and consumers should not sample it.
func (c *Controller) Rect() Rect {
	c.rectMu.RLock()
	defer c.rectMu.RUnlock()
	return c.current
}

// FirstFrame returns a channel closed once the platform reports the first
// rendered frame for this controller's surface.
func (c *Controller) FirstFrame() <-chan struct{} {
	return c.firstFrame.Done()
}

// SetSize requests a fixed output size. This platform variant always sizes
// the surface from the decoded video's dimensions, so the request fails
// with [ErrUnsupportedOperation] rather than being silently ignored, or
// with [ErrDisposed] once the controller has been torn down.
func (c *Controller) SetSize(width, height int) error {
	if c.disposed.Load() {
		return ErrDisposed
	}
	return ErrUnsupportedOperation
}

func (c *Controller) onWidth(value any) {
	c.onDimension(value, (*pendingSize).setWidth)
}

func (c *Controller) onHeight(value any) {
	c.onDimension(value, (*pendingSize).setHeight)
}

// onDimension folds one dimension event into the pending accumulator and
// enqueues the completed rect, if any. Both feeds funnel through one mutex
// so a width and height update cannot interleave partially.
func (c *Controller) onDimension(value any, set func(*pendingSize, int64)) {
	if c.disposed.Load() {
		return
	}
	dim, ok := platform.ToInt64(value)
	if !ok {
		errors.Report(&errors.KitError{
			Op:     "video.Controller.onDimension",
			Kind:   errors.KindParsing,
			Handle: c.handle,
			Err:    &errors.ParseError{Channel: "mediakit/mpv/properties", DataType: "dimension", Got: value},
		})
		return
	}

	c.mu.Lock()
	set(&c.pending, dim)
	rect, complete := c.pending.take(c.scale)
	c.mu.Unlock()

	if !complete {
		return
	}
	select {
	case c.rects <- rect:
	case <-c.quit:
	}
}

// rectLoop consumes completed rects strictly one at a time, in emission
// order. The handler performs a multi-step native negotiation that must not
// be interleaved with itself.
func (c *Controller) rectLoop() {
	defer close(c.loopDone)
	for {
		select {
		case <-c.quit:
			return
		case rect := <-c.rects:
			c.applyRect(rect)
		}
	}
}

// applyRect pushes one completed rect to the platform surface and the
// engine. Negotiation failures are reported and swallowed: a failed resize
// must not crash playback, and the next dimension change retries.
func (c *Controller) applyRect(rect Rect) {
	// Mark the surface as in transition so consumers stop sampling the old
	// backing store.
	c.publishRect(Rect{})

	if err := c.negotiateSurface(rect); err != nil {
		errors.Report(&errors.KitError{
			Op:     "video.Controller.applyRect",
			Kind:   errors.KindSurface,
			Handle: c.handle,
			Err:    err,
		})
	}

	// The new rect becomes visible regardless of whether negotiation ran.
	c.publishRect(rect)
}

// negotiateSurface performs the sizing protocol for drivers that render
// into the shared compositing surface: resize the platform surface, tell
// the engine the new surface size, then reaffirm the output driver — in
// that order. Communicating the size after (re)enabling the driver lets the
// first frame render into the stale default backing store.
func (c *Controller) negotiateSurface(rect Rect) error {
	vo, err := c.eng.GetPropertyString(c.handle, "vo")
	if err != nil {
		return err
	}
	if !coordinatedDrivers[vo] {
		return nil
	}

	width := int64(rect.Width)
	height := int64(rect.Height)

	if err := c.svc.resizeSurface(c.handle, width, height); err != nil {
		return err
	}
	if err := c.eng.SetOption(c.handle, "android-surface-size", fmt.Sprintf("%dx%d", width, height)); err != nil {
		return err
	}
	if err := c.eng.SetProperty(c.handle, "wid", strconv.FormatInt(c.windowRef, 10)); err != nil {
		return err
	}
	return c.eng.SetProperty(c.handle, "vo", c.targetVO)
}

func (c *Controller) publishRect(rect Rect) {
	c.rectMu.Lock()
	c.current = rect
	c.rectMu.Unlock()

	if c.OnRectChanged != nil {
		platform.Dispatch(func() {
			if cb := c.OnRectChanged; cb != nil {
				cb(rect)
			}
		})
	}
}

// Dispose tears the controller down: dimension observers are canceled, the
// rect consumer is stopped, the registry entry is removed, and the native
// surface is released. Every step runs even if an earlier one fails.
// Dispose is idempotent.
func (c *Controller) Dispose() {
	if !c.disposed.CompareAndSwap(false, true) {
		return
	}

	c.unobserveWidth()
	c.unobserveHeight()

	close(c.quit)
	<-c.loopDone

	c.svc.unregister(c.handle)

	if err := c.svc.disposeSurface(c.handle); err != nil {
		errors.Report(&errors.KitError{
			Op:      "video.Controller.Dispose",
			Kind:    errors.KindSurface,
			Handle:  c.handle,
			Channel: videoChannelName,
			Err:     err,
		})
	}
}

// Package video coordinates the engine's video output with the host
// platform's native surface. Its core is the surface sizing protocol: the
// controller observes the decoded video's width and height, computes a
// target surface rect, and pushes size updates to both the platform surface
// and the engine's output options before the output driver is (re)enabled,
// so the first frame never renders into a stale backing store.
package video

import (
	"fmt"
	"sync"

	"github.com/go-drift/mediakit/pkg/engine"
	"github.com/go-drift/mediakit/pkg/errors"
	"github.com/go-drift/mediakit/pkg/platform"
)

const (
	videoChannelName = "mediakit/video"
	videoEventsName  = "mediakit/video/events"
)

// Service is the host platform collaborator for video: it allocates and
// releases native output surfaces, resizes their backing buffers, detects
// emulated environments, and routes first-frame notifications. It also owns
// the handle-to-controller registry; all controller creation and disposal
// goes through it.
//
// Create one Service per process and pass it to every call site that
// creates or looks up controllers.
type Service struct {
	channel *platform.MethodChannel
	events  *platform.EventChannel
	profile engine.Profile

	mu          sync.RWMutex
	controllers map[int64]*Controller

	// createMu serializes Create so two concurrent calls for the same
	// handle cannot both miss the registry check and allocate two surfaces.
	createMu sync.Mutex
}

// NewService creates the video platform service with the default engine
// tuning profile.
func NewService() *Service {
	s := &Service{
		channel:     platform.NewMethodChannel(videoChannelName),
		profile:     engine.DefaultProfile(),
		controllers: make(map[int64]*Controller),
	}
	s.events = platform.NewEventChannel(videoEventsName)
	s.events.Listen(platform.EventHandler{
		OnEvent: s.handleEvent,
		OnError: func(err error) {
			errors.Report(&errors.KitError{
				Op:      "video.Service.eventStream",
				Kind:    errors.KindPlatform,
				Channel: videoEventsName,
				Err:     err,
			})
		},
	})
	return s
}

// UseProfile replaces the engine tuning profile applied to controllers
// created after this call.
func (s *Service) UseProfile(profile engine.Profile) {
	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
}

// Controller returns the controller registered for the given handle.
func (s *Service) Controller(handle int64) (*Controller, bool) {
	s.mu.RLock()
	c, ok := s.controllers[handle]
	s.mu.RUnlock()
	return c, ok
}

// handleEvent processes one inbound platform event. Failures are reported
// and swallowed per event; unknown methods are silently ignored so newer
// native code can emit events this plugin version does not know about.
func (s *Service) handleEvent(data any) {
	defer errors.Recover("video.Service.handleEvent")

	m := platform.ParseMap(data)
	if m == nil {
		errors.Report(&errors.KitError{
			Op:      "video.Service.handleEvent",
			Kind:    errors.KindParsing,
			Channel: videoEventsName,
			Err:     &errors.ParseError{Channel: videoEventsName, DataType: "video event", Got: data},
		})
		return
	}

	switch platform.ParseString(m["method"]) {
	case "onFirstFrame":
		handle, ok := platform.ToInt64(m["handle"])
		if !ok {
			return
		}
		// Unknown or already-disposed handles are ignored without error.
		s.mu.RLock()
		c := s.controllers[handle]
		s.mu.RUnlock()
		if c != nil {
			c.firstFrame.Complete()
		}
	}
}

func (s *Service) register(handle int64, c *Controller) {
	s.mu.Lock()
	s.controllers[handle] = c
	s.mu.Unlock()
}

func (s *Service) unregister(handle int64) {
	s.mu.Lock()
	delete(s.controllers, handle)
	s.mu.Unlock()
}

// createSurface allocates a native output surface for the handle and
// returns its display id and native window reference.
func (s *Service) createSurface(handle int64) (displayID, windowRef int64, err error) {
	result, err := s.channel.Invoke("createSurface", map[string]any{
		"handle": handle,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("create surface: %w", err)
	}
	m := platform.ParseMap(result)
	if m == nil {
		return 0, 0, &errors.ParseError{Channel: videoChannelName, DataType: "surface ids", Got: result}
	}
	displayID, okD := platform.ToInt64(m["displayId"])
	windowRef, okW := platform.ToInt64(m["windowRef"])
	if !okD || !okW {
		return 0, 0, &errors.ParseError{Channel: videoChannelName, DataType: "surface ids", Got: result}
	}
	return displayID, windowRef, nil
}

// resizeSurface resizes the backing buffer of the handle's surface to the
// given pixel dimensions.
func (s *Service) resizeSurface(handle, width, height int64) error {
	_, err := s.channel.Invoke("resizeSurface", map[string]any{
		"handle": handle,
		"width":  width,
		"height": height,
	})
	if err != nil {
		return fmt.Errorf("resize surface to %dx%d: %w", width, height, err)
	}
	return nil
}

// disposeSurface releases the handle's native surface object.
func (s *Service) disposeSurface(handle int64) error {
	_, err := s.channel.Invoke("disposeSurface", map[string]any{
		"handle": handle,
	})
	if err != nil {
		return fmt.Errorf("dispose surface: %w", err)
	}
	return nil
}

// isEmulator reports whether the host is an emulated or virtualized
// environment. Detection failures are reported and treated as "not
// emulated".
func (s *Service) isEmulator() bool {
	result, err := s.channel.Invoke("isEmulator", nil)
	if err != nil {
		errors.Report(&errors.KitError{
			Op:      "video.Service.isEmulator",
			Kind:    errors.KindPlatform,
			Channel: videoChannelName,
			Err:     err,
		})
		return false
	}
	return platform.ParseBool(result)
}

// Package engine provides the Go-side client for the native media engine
// (libmpv). All calls cross the platform boundary through method channels;
// property-change notifications arrive on an event channel and are routed
// to observers by player handle and property name.
package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-drift/mediakit/pkg/errors"
	"github.com/go-drift/mediakit/pkg/platform"
)

const (
	channelName  = "mediakit/mpv"
	propertyName = "mediakit/mpv/properties"
)

// observerKey identifies an observed property on a specific player.
type observerKey struct {
	handle int64
	name   string
}

type propertyObserver struct {
	fn       func(value any)
	canceled atomic.Bool
}

// Engine is the client for the native media engine. Create one per process
// with New and share it between players and controllers.
//
// All methods are safe for concurrent use.
type Engine struct {
	channel    *platform.MethodChannel
	properties *platform.EventChannel

	mu        sync.Mutex
	observers map[observerKey][]*propertyObserver
}

// New creates the engine client and starts listening for property events.
func New() *Engine {
	e := &Engine{
		channel:   platform.NewMethodChannel(channelName),
		observers: make(map[observerKey][]*propertyObserver),
	}
	e.properties = platform.NewEventChannel(propertyName)
	e.properties.Listen(platform.EventHandler{
		OnEvent: e.routePropertyEvent,
		OnError: func(err error) {
			errors.Report(&errors.KitError{
				Op:      "engine.propertyStream",
				Kind:    errors.KindPlatform,
				Channel: propertyName,
				Err:     err,
			})
		},
	})
	return e
}

// GetProperty reads an engine property for the given player handle.
func (e *Engine) GetProperty(handle int64, name string) (any, error) {
	result, err := e.channel.Invoke("getProperty", map[string]any{
		"handle": handle,
		"name":   name,
	})
	if err != nil {
		return nil, fmt.Errorf("get property %q: %w", name, err)
	}
	return result, nil
}

// GetPropertyString reads an engine property as a string. Non-string values
// are returned as the empty string.
func (e *Engine) GetPropertyString(handle int64, name string) (string, error) {
	result, err := e.GetProperty(handle, name)
	if err != nil {
		return "", err
	}
	return platform.ParseString(result), nil
}

// SetProperty writes an engine property for the given player handle.
func (e *Engine) SetProperty(handle int64, name string, value any) error {
	_, err := e.channel.Invoke("setProperty", map[string]any{
		"handle": handle,
		"name":   name,
		"value":  value,
	})
	if err != nil {
		return fmt.Errorf("set property %q: %w", name, err)
	}
	return nil
}

// SetOption sets an engine option for the given player handle. Options differ
// from properties in that some only take effect before engine initialization.
func (e *Engine) SetOption(handle int64, name, value string) error {
	_, err := e.channel.Invoke("setOption", map[string]any{
		"handle": handle,
		"name":   name,
		"value":  value,
	})
	if err != nil {
		return fmt.Errorf("set option %q: %w", name, err)
	}
	return nil
}

// Command executes an engine command (e.g. loadfile, seek) for the given
// player handle.
func (e *Engine) Command(handle int64, args ...string) error {
	_, err := e.channel.Invoke("command", map[string]any{
		"handle": handle,
		"args":   args,
	})
	if err != nil {
		return fmt.Errorf("command %v: %w", args, err)
	}
	return nil
}

// Observe subscribes to change notifications for the named property on the
// given player handle. The returned function cancels the observation. The
// callback runs on the event delivery goroutine; keep it short or hand off.
//
// The native observation is started on the first observer for a
// (handle, property) pair and stopped when the last one cancels.
func (e *Engine) Observe(handle int64, name string, fn func(value any)) (unobserve func()) {
	key := observerKey{handle: handle, name: name}
	obs := &propertyObserver{fn: fn}

	e.mu.Lock()
	first := len(e.observers[key]) == 0
	e.observers[key] = append(e.observers[key], obs)
	e.mu.Unlock()

	if first {
		if _, err := e.channel.Invoke("observeProperty", map[string]any{
			"handle": handle,
			"name":   name,
		}); err != nil {
			errors.Report(&errors.KitError{
				Op:      "engine.Observe",
				Kind:    errors.KindEngine,
				Handle:  handle,
				Channel: channelName,
				Err:     err,
			})
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { e.removeObserver(key, obs) })
	}
}

func (e *Engine) removeObserver(key observerKey, obs *propertyObserver) {
	e.mu.Lock()
	list := e.observers[key]
	for i, o := range list {
		if o == obs {
			o.canceled.Store(true)
			e.observers[key] = append(list[:i], list[i+1:]...)
			break
		}
	}
	last := len(e.observers[key]) == 0
	if last {
		delete(e.observers, key)
	}
	e.mu.Unlock()

	if last {
		if _, err := e.channel.Invoke("unobserveProperty", map[string]any{
			"handle": key.handle,
			"name":   key.name,
		}); err != nil {
			errors.Report(&errors.KitError{
				Op:      "engine.unobserve",
				Kind:    errors.KindEngine,
				Handle:  key.handle,
				Channel: channelName,
				Err:     err,
			})
		}
	}
}

// routePropertyEvent delivers a property-change event to the matching
// observers. Events for unobserved properties are dropped.
func (e *Engine) routePropertyEvent(data any) {
	m := platform.ParseMap(data)
	if m == nil {
		errors.Report(&errors.KitError{
			Op:      "engine.routePropertyEvent",
			Kind:    errors.KindParsing,
			Channel: propertyName,
			Err:     &errors.ParseError{Channel: propertyName, DataType: "property event", Got: data},
		})
		return
	}
	handle, ok := platform.ToInt64(m["handle"])
	if !ok {
		return
	}
	name := platform.ParseString(m["name"])
	value := m["value"]

	key := observerKey{handle: handle, name: name}
	e.mu.Lock()
	list := e.observers[key]
	observers := make([]*propertyObserver, len(list))
	copy(observers, list)
	e.mu.Unlock()

	for _, obs := range observers {
		if !obs.canceled.Load() {
			obs.fn(value)
		}
	}
}

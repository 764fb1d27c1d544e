package engine

import (
	"errors"
	"sync"

	kiterrors "github.com/go-drift/mediakit/pkg/errors"
	"github.com/go-drift/mediakit/pkg/platform"
)

// ErrPlayerDisposed is returned when operating on a disposed player.
var ErrPlayerDisposed = errors.New("engine: player disposed")

// Player owns a native player instance. The native handle is resolved
// asynchronously after construction; Handle blocks until it is available.
//
// Controllers register teardown callbacks with OnDispose so that disposing
// the player tears them down as well.
type Player struct {
	eng   *Engine
	ready chan struct{}

	mu        sync.Mutex
	handle    int64
	createErr error
	hooks     []func()
	disposed  bool
}

// NewPlayer allocates a native player instance. The handle is resolved in
// the background; use Handle to wait for it.
func (e *Engine) NewPlayer() *Player {
	p := &Player{
		eng:   e,
		ready: make(chan struct{}),
	}

	go func() {
		defer close(p.ready)
		result, err := e.channel.Invoke("create", map[string]any{})
		if err != nil {
			p.mu.Lock()
			p.createErr = err
			p.mu.Unlock()
			kiterrors.Report(&kiterrors.KitError{
				Op:      "engine.NewPlayer",
				Kind:    kiterrors.KindInit,
				Channel: channelName,
				Err:     err,
			})
			return
		}
		handle, ok := platform.ToInt64(result)
		if !ok || handle == 0 {
			p.mu.Lock()
			p.createErr = &kiterrors.ParseError{Channel: channelName, DataType: "player handle", Got: result}
			p.mu.Unlock()
			return
		}
		p.mu.Lock()
		p.handle = handle
		p.mu.Unlock()
	}()

	return p
}

// Engine returns the engine client that owns this player.
func (p *Player) Engine() *Engine {
	return p.eng
}

// Handle returns the native player handle, blocking until it has been
// resolved. It returns an error if native player creation failed or the
// player has been disposed.
func (p *Player) Handle() (int64, error) {
	<-p.ready
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return 0, ErrPlayerDisposed
	}
	if p.createErr != nil {
		return 0, p.createErr
	}
	return p.handle, nil
}

// OnDispose registers a callback to run when the player is disposed.
// Callbacks run in registration order. Registering on a disposed player
// runs the callback immediately.
func (p *Player) OnDispose(hook func()) {
	if hook == nil {
		return
	}
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		hook()
		return
	}
	p.hooks = append(p.hooks, hook)
	p.mu.Unlock()
}

// Dispose tears down the player: disposal callbacks run first (controllers,
// surfaces), then the native player is destroyed. Dispose is idempotent.
func (p *Player) Dispose() {
	<-p.ready
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	hooks := p.hooks
	p.hooks = nil
	handle := p.handle
	p.mu.Unlock()

	for _, hook := range hooks {
		func() {
			defer kiterrors.Recover("engine.Player.Dispose")
			hook()
		}()
	}

	if handle != 0 {
		if _, err := p.eng.channel.Invoke("destroy", map[string]any{"handle": handle}); err != nil {
			kiterrors.Report(&kiterrors.KitError{
				Op:      "engine.Player.Dispose",
				Kind:    kiterrors.KindEngine,
				Handle:  handle,
				Channel: channelName,
				Err:     err,
			})
		}
	}
}

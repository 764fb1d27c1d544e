package engine

import (
	"errors"
	"testing"
)

func TestPlayerHandleResolution(t *testing.T) {
	bridge := &fakeBridge{
		respond: func(channel, method string, args map[string]any) (any, error) {
			if method == "create" {
				return 42, nil
			}
			return nil, nil
		},
	}
	e := setupEngine(t, bridge)

	p := e.NewPlayer()
	handle, err := p.Handle()
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if handle != 42 {
		t.Errorf("handle: got %d, want 42", handle)
	}
}

func TestPlayerCreateFailure(t *testing.T) {
	createErr := errors.New("native create failed")
	bridge := &fakeBridge{
		respond: func(channel, method string, args map[string]any) (any, error) {
			if method == "create" {
				return nil, createErr
			}
			return nil, nil
		},
	}
	e := setupEngine(t, bridge)

	p := e.NewPlayer()
	if _, err := p.Handle(); err == nil {
		t.Fatal("expected Handle to fail when native creation fails")
	}
}

func TestPlayerDisposeRunsHooksThenDestroys(t *testing.T) {
	bridge := &fakeBridge{
		respond: func(channel, method string, args map[string]any) (any, error) {
			if method == "create" {
				return 42, nil
			}
			return nil, nil
		},
	}
	e := setupEngine(t, bridge)

	p := e.NewPlayer()
	if _, err := p.Handle(); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var order []string
	p.OnDispose(func() { order = append(order, "first") })
	p.OnDispose(func() { order = append(order, "second") })

	p.Dispose()

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("hook order: got %v", order)
	}
	if n := len(bridge.methodCalls("destroy")); n != 1 {
		t.Errorf("expected 1 destroy call, got %d", n)
	}

	// Idempotent: a second Dispose neither reruns hooks nor destroys again.
	p.Dispose()
	if len(order) != 2 {
		t.Error("hooks ran again on second Dispose")
	}
	if n := len(bridge.methodCalls("destroy")); n != 1 {
		t.Errorf("destroy called again, got %d calls", n)
	}

	if _, err := p.Handle(); !errors.Is(err, ErrPlayerDisposed) {
		t.Errorf("expected ErrPlayerDisposed, got %v", err)
	}
}

func TestPlayerHookSurvivesPanic(t *testing.T) {
	bridge := &fakeBridge{
		respond: func(channel, method string, args map[string]any) (any, error) {
			if method == "create" {
				return 42, nil
			}
			return nil, nil
		},
	}
	e := setupEngine(t, bridge)

	p := e.NewPlayer()
	if _, err := p.Handle(); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	ran := false
	p.OnDispose(func() { panic("teardown failed") })
	p.OnDispose(func() { ran = true })

	p.Dispose()
	if !ran {
		t.Error("later hook did not run after earlier hook panicked")
	}
}

func TestOnDisposeAfterDisposal(t *testing.T) {
	bridge := &fakeBridge{
		respond: func(channel, method string, args map[string]any) (any, error) {
			if method == "create" {
				return 42, nil
			}
			return nil, nil
		},
	}
	e := setupEngine(t, bridge)

	p := e.NewPlayer()
	if _, err := p.Handle(); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	p.Dispose()

	ran := false
	p.OnDispose(func() { ran = true })
	if !ran {
		t.Error("hook registered after disposal should run immediately")
	}
}

package platform

import (
	"errors"
	"testing"
)

// recordingBridge records invocations and replies with canned results.
type recordingBridge struct {
	calls   []recordedCall
	results map[string]any
	started []string
	stopped []string
}

type recordedCall struct {
	channel string
	method  string
	args    any
}

func (b *recordingBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	decoded, err := DefaultCodec.Decode(args)
	if err != nil {
		return nil, err
	}
	b.calls = append(b.calls, recordedCall{channel: channel, method: method, args: decoded})
	if b.results != nil {
		if result, ok := b.results[method]; ok {
			return DefaultCodec.Encode(result)
		}
	}
	return DefaultCodec.Encode(nil)
}

func (b *recordingBridge) StartEventStream(channel string) error {
	b.started = append(b.started, channel)
	return nil
}

func (b *recordingBridge) StopEventStream(channel string) error {
	b.stopped = append(b.stopped, channel)
	return nil
}

func TestMethodChannelInvoke(t *testing.T) {
	t.Cleanup(ResetForTest)
	bridge := &recordingBridge{results: map[string]any{"getProperty": "gpu"}}
	SetNativeBridge(bridge)

	ch := NewMethodChannel("mediakit/test")
	result, err := ch.Invoke("getProperty", map[string]any{"name": "vo"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result != "gpu" {
		t.Errorf("result: got %v, want %q", result, "gpu")
	}
	if len(bridge.calls) != 1 {
		t.Fatalf("expected 1 bridge call, got %d", len(bridge.calls))
	}
	if bridge.calls[0].channel != "mediakit/test" || bridge.calls[0].method != "getProperty" {
		t.Errorf("unexpected call: %+v", bridge.calls[0])
	}
}

func TestMethodChannelInvokeWithoutBridge(t *testing.T) {
	t.Cleanup(ResetForTest)

	ch := NewMethodChannel("mediakit/test")
	_, err := ch.Invoke("anything", nil)
	if !errors.Is(err, ErrBridgeUnavailable) {
		t.Errorf("expected ErrBridgeUnavailable, got %v", err)
	}
}

func TestHandleMethodCall(t *testing.T) {
	SetupTestBridge(t.Cleanup, nil)

	ch := NewMethodChannel("mediakit/test")
	ch.SetHandler(func(method string, args any) (any, error) {
		if method == "ping" {
			return "pong", nil
		}
		return nil, ErrMethodNotFound
	})

	argsData, _ := DefaultCodec.Encode(nil)
	resultData, err := HandleMethodCall("mediakit/test", "ping", argsData)
	if err != nil {
		t.Fatalf("HandleMethodCall: %v", err)
	}
	result, _ := DefaultCodec.Decode(resultData)
	if result != "pong" {
		t.Errorf("result: got %v, want %q", result, "pong")
	}

	if _, err := HandleMethodCall("mediakit/missing", "ping", argsData); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("expected ErrChannelNotFound, got %v", err)
	}
}

func TestEventChannelDispatch(t *testing.T) {
	SetupTestBridge(t.Cleanup, nil)

	ch := NewEventChannel("mediakit/test/events")

	var received []any
	sub := ch.Listen(EventHandler{
		OnEvent: func(data any) { received = append(received, data) },
	})

	data, _ := DefaultCodec.Encode(map[string]any{"value": 42})
	if err := HandleEvent("mediakit/test/events", data); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}

	sub.Cancel()
	if !sub.IsCanceled() {
		t.Error("expected subscription to be canceled")
	}
	if err := HandleEvent("mediakit/test/events", data); err != nil {
		t.Fatalf("HandleEvent after cancel: %v", err)
	}
	if len(received) != 1 {
		t.Errorf("canceled subscription received event")
	}
}

func TestEventChannelStartStopStream(t *testing.T) {
	t.Cleanup(ResetForTest)
	bridge := &recordingBridge{}
	SetNativeBridge(bridge)

	ch := NewEventChannel("mediakit/test/events")
	first := ch.Listen(EventHandler{})
	second := ch.Listen(EventHandler{})

	if len(bridge.started) != 1 {
		t.Fatalf("expected stream started once, got %d", len(bridge.started))
	}

	first.Cancel()
	if len(bridge.stopped) != 0 {
		t.Error("stream stopped while a listener remains")
	}
	second.Cancel()
	if len(bridge.stopped) != 1 {
		t.Errorf("expected stream stopped once, got %d", len(bridge.stopped))
	}
}

func TestEventChannelDeferredStart(t *testing.T) {
	t.Cleanup(ResetForTest)

	ch := NewEventChannel("mediakit/test/events")
	ch.Listen(EventHandler{})

	bridge := &recordingBridge{}
	SetNativeBridge(bridge)

	if len(bridge.started) != 1 {
		t.Errorf("expected pre-bridge subscription to start stream on install, got %d", len(bridge.started))
	}
}

func TestHandleEventUnknownChannel(t *testing.T) {
	t.Cleanup(ResetForTest)

	data, _ := DefaultCodec.Encode(nil)
	if err := HandleEvent("mediakit/nowhere", data); !errors.Is(err, ErrChannelNotRegistered) {
		t.Errorf("expected ErrChannelNotRegistered, got %v", err)
	}
}

func TestDispatch(t *testing.T) {
	t.Cleanup(ResetForTest)

	if Dispatch(func() {}) {
		t.Error("Dispatch should fail with no registered function")
	}

	ran := false
	RegisterDispatch(func(cb func()) { cb() })
	if !Dispatch(func() { ran = true }) {
		t.Fatal("Dispatch should succeed")
	}
	if !ran {
		t.Error("callback did not run")
	}
}

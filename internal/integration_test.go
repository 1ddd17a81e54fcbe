package internal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/hub-io/internal/button"
	"github.com/sweeney/hub-io/internal/gpio"
	"github.com/sweeney/hub-io/internal/mqtt"
)

// harness wires a FakeLine-backed engine to a FakePublisher the way the
// daemon loop does, with a millisecond counter standing in for real time.
type harness struct {
	ms   uint32
	line *gpio.FakeLine
	eng  *button.Engine
	pub  *mqtt.FakePublisher
}

func newHarness(t *testing.T, cfg button.Config) *harness {
	t.Helper()

	h := &harness{
		line: gpio.NewFakeLine(cfg.ActiveLow), // idle level
		pub:  mqtt.NewFakePublisher(),
	}

	clock := func() uint32 { return h.ms }
	sampler := func() bool {
		level, err := h.line.Level()
		if err != nil {
			t.Fatalf("fake line level: %v", err)
		}
		return level
	}

	eng, err := button.New(cfg, clock, sampler)
	if err != nil {
		t.Fatalf("button.New: %v", err)
	}
	h.eng = eng

	if cfg.EdgeDriven {
		h.line.SetHandler(eng.HandleEdge)
	}

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	publish := func(gesture button.Gesture, durationMs uint32) {
		event := button.Event{
			Timestamp:  start.Add(time.Duration(h.ms) * time.Millisecond),
			Pin:        cfg.Pin,
			Gesture:    gesture,
			DurationMs: durationMs,
			State:      eng.State(),
		}
		if err := h.pub.Publish(event); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	eng.OnDown(func() { publish(button.GestureDown, 0) })
	eng.OnUp(func() { publish(button.GestureUp, 0) })
	eng.OnPressed(func(heldMs uint32) { publish(button.GesturePress, heldMs) })
	eng.OnDoublePressed(func(gapMs uint32) { publish(button.GestureDoublePress, gapMs) })
	eng.OnLongPressed(func(heldMs uint32) { publish(button.GestureLongPress, heldMs) })

	return h
}

// runUntil ticks the engine once per millisecond up to and including target.
func (h *harness) runUntil(target uint32) {
	for h.ms < target {
		h.ms++
		h.eng.Tick()
	}
}

func (h *harness) setPressed(pressed bool, cfg button.Config) {
	level := pressed != cfg.ActiveLow
	if cfg.EdgeDriven {
		h.line.TriggerEdge(level)
	} else {
		h.line.CurrentLevel = level
	}
}

func (h *harness) gestures() []button.Gesture {
	out := make([]button.Gesture, len(h.pub.Events))
	for i, e := range h.pub.Events {
		out[i] = e.Gesture
	}
	return out
}

func assertGestures(t *testing.T, got, want []button.Gesture) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("gestures: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("gesture %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

// TestIntegrationSinglePressFlow runs a full press-release cycle through the
// fake line, the engine and the fake publisher.
func TestIntegrationSinglePressFlow(t *testing.T) {
	cfg := button.DefaultConfig(17)
	h := newHarness(t, cfg)

	h.runUntil(50)
	h.setPressed(true, cfg)
	h.runUntil(150)
	h.setPressed(false, cfg)
	h.runUntil(600)

	assertGestures(t, h.gestures(), []button.Gesture{
		button.GestureDown, button.GestureUp, button.GesturePress,
	})

	// Verify JSON payloads are well formed and carry the pin.
	for i, payload := range h.pub.Payloads {
		var parsed mqtt.Payload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Errorf("payload %d: invalid JSON: %v", i, err)
		}
		if parsed.Button.Pin != 17 {
			t.Errorf("payload %d: pin %d, want 17", i, parsed.Button.Pin)
		}
		if parsed.Button.Timestamp == "" {
			t.Errorf("payload %d: missing timestamp", i)
		}
	}
}

// TestIntegrationDoublePressFlow verifies two quick presses publish a
// double-press instead of two singles.
func TestIntegrationDoublePressFlow(t *testing.T) {
	cfg := button.DefaultConfig(17)
	h := newHarness(t, cfg)

	h.runUntil(50)
	h.setPressed(true, cfg)
	h.runUntil(150)
	h.setPressed(false, cfg)
	h.runUntil(225)
	h.setPressed(true, cfg)
	h.runUntil(300)
	h.setPressed(false, cfg)
	h.runUntil(800)

	assertGestures(t, h.gestures(), []button.Gesture{
		button.GestureDown, button.GestureUp,
		button.GestureDown, button.GestureUp,
		button.GestureDoublePress,
	})
}

// TestIntegrationEdgeDrivenFlow runs the same cycle with edge acquisition:
// levels arrive through the line's edge handler, never through sampling.
func TestIntegrationEdgeDrivenFlow(t *testing.T) {
	cfg := button.DefaultConfig(17)
	cfg.EdgeDriven = true
	h := newHarness(t, cfg)

	h.runUntil(50)
	h.setPressed(true, cfg)
	h.runUntil(150)
	h.setPressed(false, cfg)
	h.runUntil(600)

	assertGestures(t, h.gestures(), []button.Gesture{
		button.GestureDown, button.GestureUp, button.GesturePress,
	})
}

// TestIntegrationBounceRejection verifies contact bounce shorter than the
// debounce window publishes nothing.
func TestIntegrationBounceRejection(t *testing.T) {
	cfg := button.DefaultConfig(17)
	h := newHarness(t, cfg)

	h.runUntil(50)
	for i := 0; i < 5; i++ {
		h.setPressed(true, cfg)
		h.runUntil(h.ms + 5)
		h.setPressed(false, cfg)
		h.runUntil(h.ms + 5)
	}
	h.runUntil(600)

	if len(h.pub.Events) != 0 {
		t.Errorf("expected no events for bounce, got %v", h.gestures())
	}
}

// TestIntegrationLineError verifies a read failure surfaces through the
// sampler path. The daemon's sampler holds the last known level on error;
// here the harness just confirms the fake reports it.
func TestIntegrationLineError(t *testing.T) {
	line := gpio.NewFakeLine(true)
	line.LevelError = errors.New("simulated level failure")

	if _, err := line.Level(); err == nil {
		t.Fatal("expected level error")
	}
}

// TestIntegrationShutdownEvent verifies the lifecycle event path end to end.
func TestIntegrationShutdownEvent(t *testing.T) {
	pub := mqtt.NewFakePublisher()

	event := mqtt.SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
		Retained:  true,
	}
	if err := pub.PublishSystem(event); err != nil {
		t.Fatalf("publish system: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(pub.SystemPayloads[0]) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", pub.SystemPayloads[0], expected)
	}
}

// TestIntegrationPayloadFormat verifies the exact JSON structure for a
// gesture event.
func TestIntegrationPayloadFormat(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	pub.Publish(button.Event{
		Timestamp:  time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Pin:        17,
		Gesture:    button.GestureLongPress,
		DurationMs: 950,
		State:      button.Released,
	})

	expected := `{"button":{"timestamp":"2026-02-02T22:18:12Z","pin":17,"gesture":"LONG_PRESS","duration_ms":950,"state":"RELEASED"}}`
	if string(pub.Payloads[0]) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", pub.Payloads[0], expected)
	}
}

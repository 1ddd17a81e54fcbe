// Package button turns raw, possibly noisy pin level changes into a small
// vocabulary of press gestures.
//
// An Engine owns one physical button. The caller drives it by calling Tick
// from a tight non-blocking loop; each Tick takes one raw sample (polled or
// edge-driven), debounces it, detects stable transitions and classifies
// completed press-release cycles as a single, double or long press. The
// Engine never touches hardware itself — acquisition is injected.
package button

import (
	"errors"
	"sync/atomic"
)

// State is the debounced, classifier-visible state of the button.
type State string

const (
	Released State = "RELEASED"
	Pressed  State = "PRESSED"
)

// Config holds the per-button configuration. It is immutable after New.
type Config struct {
	// Pin is the pin identifier. Used for labelling events and status only;
	// the Engine does no hardware I/O.
	Pin int

	// DebounceMs is the minimum time a raw reading must stay stable before
	// it is trusted as a real level change.
	DebounceMs uint32

	// LongPressMs is the hold duration at or above which a completed press
	// classifies as a long press.
	LongPressMs uint32

	// DoublePressMs is the window after a release within which a second
	// press start makes the pair a double press.
	DoublePressMs uint32

	// ActiveLow is true when the circuit pulls the pin to ground on press,
	// i.e. a low physical level means pressed.
	ActiveLow bool

	// EdgeDriven selects asynchronous acquisition: raw levels arrive via
	// HandleEdge and Tick never calls the sampler, so Tick is safe at
	// arbitrary frequency without re-triggering hardware reads.
	EdgeDriven bool
}

// DefaultConfig returns the documented defaults: 25ms debounce, 800ms long
// press, 300ms double press, active-low polarity, polled acquisition.
func DefaultConfig(pin int) Config {
	return Config{
		Pin:           pin,
		DebounceMs:    25,
		LongPressMs:   800,
		DoublePressMs: 300,
		ActiveLow:     true,
	}
}

// Engine is the debounce and gesture state machine for one button.
//
// All mutable state is owned by Tick's caller, with one exception: the raw
// sample cell shared with the edge notifier, which is a single atomic value.
type Engine struct {
	cfg    Config
	clock  Clock
	sample func() bool

	// rawPressed is the sole cell shared between HandleEdge (possibly an
	// interrupt-like context) and Tick. Written only by HandleEdge, read
	// only by Tick.
	rawPressed atomic.Bool

	state          State
	stateEnteredAt uint32
	prevStateMs    uint32 // duration of the state before the current one
	candidate      State
	candidateSince uint32

	lastPressAt     uint32
	lastReleaseAt   uint32
	haveRelease     bool // lastReleaseAt is a real release, eligible to anchor a double press
	prevReleaseAt   uint32
	havePrevRelease bool
	classified      bool // the current released period's gesture has been dispatched

	onDown          func()
	onUp            func()
	onPressed       func(heldMs uint32)
	onDoublePressed func(gapMs uint32)
	onLongPressed   func(heldMs uint32)
}

// New creates an Engine. sample must return the raw physical pin level
// (true = high); it is required in polled mode and ignored when
// cfg.EdgeDriven is set. The initial stable state is Released.
func New(cfg Config, clock Clock, sample func() bool) (*Engine, error) {
	if clock == nil {
		return nil, errors.New("button: clock is required")
	}
	if !cfg.EdgeDriven && sample == nil {
		return nil, errors.New("button: polled acquisition requires a sampler")
	}

	now := clock()
	return &Engine{
		cfg:            cfg,
		clock:          clock,
		sample:         sample,
		state:          Released,
		candidate:      Released,
		stateEnteredAt: now,
		candidateSince: now,
		classified:     true, // nothing pending at boot
	}, nil
}

// HandleEdge records a raw level change from an asynchronous edge notifier.
// level is the physical pin level (true = high); polarity normalization
// happens here so Tick sees the same value space in both acquisition modes.
// Repeated notifications of an already-current level are no-ops. Safe to
// call concurrently with Tick.
func (e *Engine) HandleEdge(level bool) {
	pressed := level != e.cfg.ActiveLow
	if e.rawPressed.Load() == pressed {
		return
	}
	e.rawPressed.Store(pressed)
}

// Tick advances the engine one step: classifies any pending gesture, takes
// one raw sample, debounces it and promotes a stable transition. It never
// blocks. Call it at least a few times per debounce window; under-calling
// degrades timing accuracy but never corrupts state.
func (e *Engine) Tick() {
	now := e.clock()

	// Classification runs before promotion so a press landing exactly on
	// the double-press window boundary cannot swallow the pending single.
	if e.state == Released && !e.classified {
		e.classify(now)
	}

	var pressed bool
	if e.cfg.EdgeDriven {
		pressed = e.rawPressed.Load()
	} else {
		pressed = e.sample() != e.cfg.ActiveLow
	}
	reading := Released
	if pressed {
		reading = Pressed
	}

	if reading != e.candidate {
		e.candidate = reading
		e.candidateSince = now
	}

	if e.candidate != e.state && now-e.candidateSince >= e.cfg.DebounceMs {
		e.promote(e.candidate, now)
	}
}

// promote confirms a debounced transition and fires the edge callbacks.
func (e *Engine) promote(next State, now uint32) {
	e.prevStateMs = now - e.stateEnteredAt
	e.stateEnteredAt = now
	e.state = next

	if next == Pressed {
		e.lastPressAt = now
		if e.onDown != nil {
			e.onDown()
		}
		return
	}

	e.prevReleaseAt = e.lastReleaseAt
	e.havePrevRelease = e.haveRelease
	e.lastReleaseAt = now
	e.haveRelease = true
	e.classified = false
	if e.onUp != nil {
		e.onUp()
	}
}

// classify decides, at most once per released period, whether the completed
// press was a long press, half of a double press, or a plain single press.
// First match wins. The double-press anchor is the gap between the previous
// cycle's release and the current cycle's press start.
func (e *Engine) classify(now uint32) {
	if e.prevStateMs >= e.cfg.LongPressMs {
		// A long hold is never the first half of a double press.
		e.classified = true
		e.haveRelease = false
		if e.onLongPressed != nil {
			e.onLongPressed(e.prevStateMs)
		}
		return
	}

	if e.havePrevRelease {
		gap := e.lastPressAt - e.prevReleaseAt
		if gap > 0 && gap < e.cfg.DoublePressMs {
			// Consumes the earlier press: its single-press obligation was
			// still pending when this press began. Clearing haveRelease
			// keeps a third quick press from chaining another double.
			e.classified = true
			e.haveRelease = false
			if e.onDoublePressed != nil {
				e.onDoublePressed(gap)
			}
			return
		}
	}

	// Single press confirms only after the double-press window has expired
	// with no follow-up press; an earlier second press would have produced
	// a double instead. The release anchor is consumed here too: a press
	// arriving a full clock cycle later must not alias into the window.
	if now-e.stateEnteredAt >= e.cfg.DoublePressMs {
		e.classified = true
		e.haveRelease = false
		if e.onPressed != nil {
			e.onPressed(e.prevStateMs)
		}
	}
}

// IsPressed reports whether the debounced state is Pressed.
func (e *Engine) IsPressed() bool { return e.state == Pressed }

// IsReleased reports whether the debounced state is Released.
func (e *Engine) IsReleased() bool { return e.state == Released }

// State returns the current debounced state.
func (e *Engine) State() State { return e.state }

// TimeInState returns how long, in milliseconds, the button has been in its
// current stable state.
func (e *Engine) TimeInState() uint32 { return e.clock() - e.stateEnteredAt }

// TimeInPreviousState returns how long, in milliseconds, the button spent in
// the state immediately before the current one. Meaningful right after a
// transition; frozen until the next one.
func (e *Engine) TimeInPreviousState() uint32 { return e.prevStateMs }

// OnDown registers the callback fired once per debounced press transition.
// Registering replaces any prior callback; nil disables.
func (e *Engine) OnDown(f func()) { e.onDown = f }

// OnUp registers the callback fired once per debounced release transition.
func (e *Engine) OnUp(f func()) { e.onUp = f }

// OnPressed registers the single-press callback. It receives the hold
// duration in milliseconds.
func (e *Engine) OnPressed(f func(heldMs uint32)) { e.onPressed = f }

// OnDoublePressed registers the double-press callback. It receives the gap
// in milliseconds between the first cycle's release and the second press.
func (e *Engine) OnDoublePressed(f func(gapMs uint32)) { e.onDoublePressed = f }

// OnLongPressed registers the long-press callback. It receives the hold
// duration in milliseconds.
func (e *Engine) OnLongPressed(f func(heldMs uint32)) { e.onLongPressed = f }

package gpio

import "errors"

// FakeLine is a test double for a button input line. Its level is set by
// the test; TriggerEdge simulates a hardware edge event.
type FakeLine struct {
	// CurrentLevel is the raw level returned by Level.
	CurrentLevel bool

	// Closed tracks if Close was called.
	Closed bool

	// LevelError, if set, will be returned by Level.
	LevelError error

	handler EdgeHandler
}

// NewFakeLine creates a FakeLine at the given initial level.
func NewFakeLine(level bool) *FakeLine {
	return &FakeLine{CurrentLevel: level}
}

// SetHandler attaches an edge handler, standing in for the hardware edge
// subscription the real line sets up at request time.
func (f *FakeLine) SetHandler(h EdgeHandler) {
	f.handler = h
}

// Level returns the current scripted level.
func (f *FakeLine) Level() (bool, error) {
	if f.LevelError != nil {
		return false, f.LevelError
	}
	return f.CurrentLevel, nil
}

// TriggerEdge sets the level and delivers an edge event to the handler,
// if one is attached.
func (f *FakeLine) TriggerEdge(level bool) {
	f.CurrentLevel = level
	if f.handler != nil {
		f.handler(level)
	}
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.Closed = true
	return nil
}

// FakePin is a test double for an output pin that records every level
// written to it.
type FakePin struct {
	// Writes contains every value passed to Set, in order.
	Writes []bool

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, will be returned by Set.
	SetError error
}

// NewFakePin creates an empty FakePin.
func NewFakePin() *FakePin {
	return &FakePin{}
}

// Set records the written value.
func (f *FakePin) Set(value bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Writes = append(f.Writes, value)
	return nil
}

// Last returns the most recent written value, or an error if nothing was
// written yet.
func (f *FakePin) Last() (bool, error) {
	if len(f.Writes) == 0 {
		return false, errors.New("no writes recorded")
	}
	return f.Writes[len(f.Writes)-1], nil
}

// Close marks the pin as closed.
func (f *FakePin) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded writes.
func (f *FakePin) Reset() {
	f.Writes = nil
	f.Closed = false
	f.SetError = nil
}

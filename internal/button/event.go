package button

import "time"

// Gesture names a dispatched button event. Down and Up are edge events;
// the other three are the mutually exclusive classifications of a completed
// press-release cycle.
type Gesture string

const (
	GestureDown        Gesture = "DOWN"
	GestureUp          Gesture = "UP"
	GesturePress       Gesture = "PRESS"
	GestureDoublePress Gesture = "DOUBLE_PRESS"
	GestureLongPress   Gesture = "LONG_PRESS"
)

// Event is a dispatched gesture, as consumed by publishers and the status
// tracker. The Engine itself only fires callbacks; callers build Events.
type Event struct {
	Timestamp time.Time
	Pin       int
	Gesture   Gesture
	// DurationMs is the hold duration for PRESS and LONG_PRESS, the
	// release-to-press gap for DOUBLE_PRESS, and 0 for DOWN and UP.
	DurationMs uint32
	State      State
}

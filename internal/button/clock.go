package button

import "time"

// Clock returns the current time in milliseconds. The value wraps roughly
// every 49.7 days; all Engine arithmetic is modular uint32, so wraparound
// never produces spurious durations.
type Clock func() uint32

// WallClock returns a Clock backed by the process monotonic clock.
func WallClock() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}

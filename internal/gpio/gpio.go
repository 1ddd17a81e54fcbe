// Package gpio provides the hardware pin abstraction for the hub.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Line is a single digital input line.
type Line interface {
	// Level returns the raw physical level of the line (true = high).
	Level() (bool, error)

	// Close releases the line.
	Close() error
}

// Pin is a single digital output pin.
type Pin interface {
	// Set drives the pin high (true) or low (false).
	Set(value bool) error

	// Close releases the pin.
	Close() error
}

// EdgeHandler receives raw physical levels from hardware edge events.
// It may be invoked from the event-delivery goroutine, concurrent with
// the polling loop.
type EdgeHandler func(level bool)

// DefaultChip is the GPIO character device used on Raspberry Pi boards.
const DefaultChip = "gpiochip0"

// DefaultButtonPin is the BCM pin number for the hub button.
const DefaultButtonPin = 17

//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealLine is not available on non-Linux platforms.
type RealLine struct{}

// NewRealLine returns an error on non-Linux platforms.
func NewRealLine(chipName string, pin int, activeLow bool, handler EdgeHandler) (*RealLine, error) {
	return nil, errUnsupported
}

// Level is not implemented on non-Linux platforms.
func (l *RealLine) Level() (bool, error) {
	return false, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (l *RealLine) Close() error {
	return nil
}

// RealPin is not available on non-Linux platforms.
type RealPin struct{}

// NewRealPin returns an error on non-Linux platforms.
func NewRealPin(chipName string, pin int, initial bool) (*RealPin, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (p *RealPin) Set(value bool) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (p *RealPin) Close() error {
	return nil
}

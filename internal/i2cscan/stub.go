//go:build !linux

package i2cscan

import "errors"

var errUnsupported = errors.New("i2cscan: not supported on this platform (requires Linux)")

// RealBus is not available on non-Linux platforms.
type RealBus struct{}

// OpenRealBus returns an error on non-Linux platforms.
func OpenRealBus(name string) (*RealBus, error) {
	return nil, errUnsupported
}

// Probe is not implemented on non-Linux platforms.
func (b *RealBus) Probe(addr uint16) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (b *RealBus) Close() error {
	return nil
}

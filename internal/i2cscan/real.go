//go:build linux

package i2cscan

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// RealBus probes addresses on a periph.io I2C bus.
type RealBus struct {
	bus i2c.BusCloser
}

// OpenRealBus initialises the host drivers and opens the named bus.
// An empty name selects the first available bus.
func OpenRealBus(name string) (*RealBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	return &RealBus{bus: bus}, nil
}

// Probe attempts a one-byte read; devices that ACK their address answer.
func (b *RealBus) Probe(addr uint16) error {
	var buf [1]byte
	return b.bus.Tx(addr, nil, buf[:])
}

// Close releases the bus.
func (b *RealBus) Close() error {
	return b.bus.Close()
}

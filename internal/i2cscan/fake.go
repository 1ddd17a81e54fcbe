package i2cscan

import "errors"

var errNoDevice = errors.New("no device")

// FakeBus answers probes for a scripted set of addresses.
type FakeBus struct {
	// Present holds the addresses that answer probes.
	Present map[uint16]bool

	// Probes records every probed address, in order.
	Probes []uint16
}

// Probe records the address and answers per Present.
func (f *FakeBus) Probe(addr uint16) error {
	f.Probes = append(f.Probes, addr)
	if f.Present[addr] {
		return nil
	}
	return errNoDevice
}

// Package i2cscan probes the I2C bus for responding devices, the way the
// classic i2cdetect tool does but with hub-friendly output.
package i2cscan

import (
	"fmt"
	"io"
)

// 7-bit address space, excluding the reserved ranges at both ends.
const (
	FirstAddress uint16 = 0x08
	LastAddress  uint16 = 0x77
)

// Bus probes a single address. Probe returns nil when a device answers.
type Bus interface {
	Probe(addr uint16) error
}

// Scan probes every valid 7-bit address and writes one line per
// responding device to w. It returns the number of devices found.
func Scan(bus Bus, w io.Writer) int {
	found := 0
	for addr := FirstAddress; addr <= LastAddress; addr++ {
		if err := bus.Probe(addr); err != nil {
			continue
		}
		fmt.Fprintf(w, "- ADDR: 0x%02X (%d)\n", addr, addr)
		found++
	}
	if found == 0 {
		fmt.Fprintln(w, "No I2C devices found")
	} else {
		fmt.Fprintf(w, "%d device(s) found\n", found)
	}
	return found
}

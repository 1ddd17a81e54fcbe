package logproxy

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// OpenSerialSink opens a serial port for use as a Proxy sink, so log
// output can be mirrored to an attached console.
func OpenSerialSink(device string, baud int) (io.WriteCloser, error) {
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return port, nil
}

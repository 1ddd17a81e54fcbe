//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealLine reads a button input from actual hardware using the Linux GPIO
// character device.
type RealLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealLine requests the given pin as an input. The pull bias follows the
// button polarity: active-low buttons get a pull-up, active-high a
// pull-down, matching how the board wires its buttons.
// If handler is non-nil the line is also watched for both edges and the
// handler receives the new raw level on every hardware edge event.
func NewRealLine(chipName string, pin int, activeLow bool, handler EdgeHandler) (*RealLine, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput}
	if activeLow {
		opts = append(opts, gpiocdev.WithPullUp)
	} else {
		opts = append(opts, gpiocdev.WithPullDown)
	}
	if handler != nil {
		opts = append(opts,
			gpiocdev.WithBothEdges,
			gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
				handler(evt.Type == gpiocdev.LineEventRisingEdge)
			}))
	}

	line, err := chip.RequestLine(pin, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}

	return &RealLine{chip: chip, line: line}, nil
}

// Level returns the raw physical level of the line.
func (l *RealLine) Level() (bool, error) {
	v, err := l.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v != 0, nil
}

// Close releases the line and the chip.
func (l *RealLine) Close() error {
	var errs []error
	if l.line != nil {
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealPin drives an output pin using the Linux GPIO character device.
type RealPin struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealPin requests the given pin as an output with the given initial level.
func NewRealPin(chipName string, pin int, initial bool) (*RealPin, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	v := 0
	if initial {
		v = 1
	}
	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(v))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}

	return &RealPin{chip: chip, line: line}, nil
}

// Set drives the pin high or low.
func (p *RealPin) Set(value bool) error {
	v := 0
	if value {
		v = 1
	}
	if err := p.line.SetValue(v); err != nil {
		return fmt.Errorf("set output pin: %w", err)
	}
	return nil
}

// Close reconfigures the pin to input (matching Pi boot defaults) before
// releasing, so external hardware is not left driven across a restart.
func (p *RealPin) Close() error {
	var errs []error
	if p.line != nil {
		if err := p.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin: %w", err))
		}
		if err := p.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin: %w", err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// Package motor drives a brushed DC motor through an H-bridge (two
// direction inputs plus a PWM enable input, e.g. an L298 or TB6612).
package motor

import (
	"errors"
	"fmt"
)

// MaxSpeed is the magnitude limit of the signed speed range.
const MaxSpeed = 255

// DigitalPin is a single H-bridge direction input.
type DigitalPin interface {
	Set(value bool) error
}

// PWMPin is the H-bridge enable input. Duty is 0 (off) to 255 (full on).
type PWMPin interface {
	SetDuty(duty uint8) error
}

// OnOff adapts a plain digital pin into a PWMPin that treats any nonzero
// duty as full on. For bridges whose enable input is not wired to a PWM
// source.
func OnOff(pin DigitalPin) PWMPin {
	return onOffPin{pin}
}

type onOffPin struct {
	pin DigitalPin
}

func (p onOffPin) SetDuty(duty uint8) error {
	return p.pin.Set(duty > 0)
}

// Motor holds the pin trio and the last-applied drive state so repeated
// writes of an unchanged speed or direction skip the hardware entirely.
type Motor struct {
	en  PWMPin
	in1 DigitalPin
	in2 DigitalPin

	speed   int16
	lastPWM uint8
	lastDir int8 // -1 reverse, 0 coast, 1 forward
}

// New creates a Motor and puts the bridge into a known coast state:
// both direction inputs low, duty 0.
func New(en PWMPin, in1, in2 DigitalPin) (*Motor, error) {
	if en == nil || in1 == nil || in2 == nil {
		return nil, errors.New("motor: all three pins are required")
	}

	m := &Motor{en: en, in1: in1, in2: in2}
	if err := m.applyPins(0, true); err != nil {
		return nil, fmt.Errorf("init coast state: %w", err)
	}
	return m, nil
}

// SetSpeed sets the signed motor speed, clamped to [-MaxSpeed, MaxSpeed].
// Positive is forward, negative reverse, zero coast. Setting the current
// speed again is a no-op.
func (m *Motor) SetSpeed(speed int) error {
	clamped := int16(clamp(speed, -MaxSpeed, MaxSpeed))
	if clamped == m.speed {
		return nil
	}
	return m.applyPins(clamped, false)
}

// Stop coasts the motor. Pin state is forced even if the motor already
// reads as stopped, so a Stop always leaves the bridge in a known state.
func (m *Motor) Stop() error {
	return m.applyPins(0, true)
}

// Brake actively brakes: both direction inputs high, duty 0. Depending on
// the bridge this shorts the motor terminals.
func (m *Motor) Brake() error {
	if err := m.in1.Set(true); err != nil {
		return fmt.Errorf("brake in1: %w", err)
	}
	if err := m.in2.Set(true); err != nil {
		return fmt.Errorf("brake in2: %w", err)
	}
	if err := m.en.SetDuty(0); err != nil {
		return fmt.Errorf("brake duty: %w", err)
	}
	m.speed = 0
	m.lastPWM = 0
	m.lastDir = 0
	return nil
}

// Speed returns the current signed speed.
func (m *Motor) Speed() int {
	return int(m.speed)
}

// applyPins writes the direction pins (only when the direction changed or
// force is set) and the PWM duty (only when it changed).
func (m *Motor) applyPins(speed int16, force bool) error {
	var dir int8
	if speed > 0 {
		dir = 1
	} else if speed < 0 {
		dir = -1
	}

	if force || dir != m.lastDir {
		switch {
		case dir > 0:
			if err := m.in1.Set(true); err != nil {
				return fmt.Errorf("set in1: %w", err)
			}
			if err := m.in2.Set(false); err != nil {
				return fmt.Errorf("set in2: %w", err)
			}
		case dir < 0:
			if err := m.in1.Set(false); err != nil {
				return fmt.Errorf("set in1: %w", err)
			}
			if err := m.in2.Set(true); err != nil {
				return fmt.Errorf("set in2: %w", err)
			}
		default: // coast
			if err := m.in1.Set(false); err != nil {
				return fmt.Errorf("set in1: %w", err)
			}
			if err := m.in2.Set(false); err != nil {
				return fmt.Errorf("set in2: %w", err)
			}
		}
		m.lastDir = dir
	}

	pwm := uint8(speed)
	if speed < 0 {
		pwm = uint8(-speed)
	}
	if force || pwm != m.lastPWM {
		if err := m.en.SetDuty(pwm); err != nil {
			return fmt.Errorf("set duty: %w", err)
		}
		m.lastPWM = pwm
	}

	m.speed = speed
	return nil
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

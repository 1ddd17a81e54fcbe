// Package shiftreg bit-bangs a chain of 74HC595-style serial-in
// parallel-out shift registers over three GPIO lines.
package shiftreg

import (
	"errors"
	"fmt"
)

// MaxRegisters caps the chain length. Eight registers is 64 outputs,
// which also keeps the whole chain state in a single uint64.
const MaxRegisters = 8

// BitsPerRegister is the output count of one register in the chain.
const BitsPerRegister = 8

// Pin is a single output line used for data, clock or latch.
type Pin interface {
	Set(value bool) error
}

// Register drives the chain. All output state is held locally in val and
// only pushed to the hardware on update, so callers can batch bit changes
// and flush once.
type Register struct {
	data  Pin
	clock Pin
	latch Pin

	numBits int
	val     uint64
	dirty   bool
}

// New creates a Register for a chain of numRegisters devices. The chain
// length is clamped to [1, MaxRegisters]. All three pins are driven low
// and the chain is flushed to all-zero.
func New(data, clock, latch Pin, numRegisters int) (*Register, error) {
	if data == nil || clock == nil || latch == nil {
		return nil, errors.New("shiftreg: all three pins are required")
	}
	if numRegisters < 1 {
		numRegisters = 1
	}
	if numRegisters > MaxRegisters {
		numRegisters = MaxRegisters
	}

	r := &Register{
		data:    data,
		clock:   clock,
		latch:   latch,
		numBits: numRegisters * BitsPerRegister,
	}

	for _, p := range []Pin{data, clock, latch} {
		if err := p.Set(false); err != nil {
			return nil, fmt.Errorf("init pins: %w", err)
		}
	}
	if err := r.update(); err != nil {
		return nil, fmt.Errorf("init chain: %w", err)
	}
	return r, nil
}

// Set sets a single output bit. Index 0 is the first output of the first
// register in the chain. When update is true the whole chain is flushed
// immediately; otherwise the change is held until PushUpdates.
func (r *Register) Set(index int, value, update bool) error {
	if index < 0 || index >= r.numBits {
		return fmt.Errorf("shiftreg: bit %d out of range [0,%d)", index, r.numBits)
	}

	mask := uint64(1) << uint(index)
	old := r.val
	if value {
		r.val |= mask
	} else {
		r.val &^= mask
	}
	if r.val != old {
		r.dirty = true
	}

	if update {
		return r.update()
	}
	return nil
}

// SetAll drives every output to the given value and flushes immediately.
func (r *Register) SetAll(value bool) error {
	if value {
		r.val = (uint64(1) << uint(r.numBits)) - 1
	} else {
		r.val = 0
	}
	return r.update()
}

// Clear drives every output low and flushes immediately.
func (r *Register) Clear() error {
	return r.SetAll(false)
}

// Get returns the locally held value of an output bit. This reflects Set
// calls that have not been flushed yet.
func (r *Register) Get(index int) (bool, error) {
	if index < 0 || index >= r.numBits {
		return false, fmt.Errorf("shiftreg: bit %d out of range [0,%d)", index, r.numBits)
	}
	return r.val&(uint64(1)<<uint(index)) != 0, nil
}

// PushUpdates flushes pending bit changes to the hardware. With force set
// the chain is rewritten even when nothing changed.
func (r *Register) PushUpdates(force bool) error {
	if !r.dirty && !force {
		return nil
	}
	return r.update()
}

// NumBits returns the total output count of the chain.
func (r *Register) NumBits() int {
	return r.numBits
}

// NumRegisters returns the chain length in devices.
func (r *Register) NumRegisters() int {
	return r.numBits / BitsPerRegister
}

// Value returns the full locally held chain state, bit 0 first.
func (r *Register) Value() uint64 {
	return r.val
}

// Dirty reports whether local state has changed since the last flush.
func (r *Register) Dirty() bool {
	return r.dirty
}

// update shifts the full chain out MSB first, so the highest-index bit
// ends up in the register furthest down the chain, then latches.
func (r *Register) update() error {
	if err := r.latch.Set(false); err != nil {
		return fmt.Errorf("latch low: %w", err)
	}

	for i := r.numBits - 1; i >= 0; i-- {
		if err := r.clock.Set(false); err != nil {
			return fmt.Errorf("clock low: %w", err)
		}
		bit := r.val&(uint64(1)<<uint(i)) != 0
		if err := r.data.Set(bit); err != nil {
			return fmt.Errorf("data bit %d: %w", i, err)
		}
		if err := r.clock.Set(true); err != nil {
			return fmt.Errorf("clock high: %w", err)
		}
	}

	if err := r.data.Set(false); err != nil {
		return fmt.Errorf("data idle: %w", err)
	}
	if err := r.latch.Set(true); err != nil {
		return fmt.Errorf("latch high: %w", err)
	}

	r.dirty = false
	return nil
}

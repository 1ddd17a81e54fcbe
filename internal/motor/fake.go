package motor

// FakeDigitalPin records direction pin writes for test assertions.
type FakeDigitalPin struct {
	// Writes contains every value passed to Set, in order.
	Writes []bool

	// SetError, if set, will be returned by Set.
	SetError error
}

// Set records the written value.
func (f *FakeDigitalPin) Set(value bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Writes = append(f.Writes, value)
	return nil
}

// Last returns the most recent written value (false if none).
func (f *FakeDigitalPin) Last() bool {
	if len(f.Writes) == 0 {
		return false
	}
	return f.Writes[len(f.Writes)-1]
}

// FakePWMPin records duty writes for test assertions.
type FakePWMPin struct {
	// Duties contains every duty passed to SetDuty, in order.
	Duties []uint8

	// SetError, if set, will be returned by SetDuty.
	SetError error
}

// SetDuty records the written duty.
func (f *FakePWMPin) SetDuty(duty uint8) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Duties = append(f.Duties, duty)
	return nil
}

// Last returns the most recent duty (0 if none).
func (f *FakePWMPin) Last() uint8 {
	if len(f.Duties) == 0 {
		return 0
	}
	return f.Duties[len(f.Duties)-1]
}

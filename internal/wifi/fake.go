package wifi

// FakeBackend is a scriptable Backend for tests.
type FakeBackend struct {
	// Address is returned by a successful Connect.
	Address string

	// ConnectError, if set, will be returned by Connect.
	ConnectError error

	// DisconnectError, if set, will be returned by Disconnect.
	DisconnectError error

	// Signal is returned by SignalStrength.
	Signal int

	// SignalError, if set, will be returned by SignalStrength.
	SignalError error

	// ConnectCalls records the credentials of every Connect call.
	ConnectCalls []string

	// DisconnectCalls counts Disconnect calls.
	DisconnectCalls int
}

// Connect records the call and returns the scripted result.
func (f *FakeBackend) Connect(ssid, _ string) (string, error) {
	f.ConnectCalls = append(f.ConnectCalls, ssid)
	if f.ConnectError != nil {
		return "", f.ConnectError
	}
	return f.Address, nil
}

// Disconnect records the call and returns the scripted result.
func (f *FakeBackend) Disconnect() error {
	f.DisconnectCalls++
	return f.DisconnectError
}

// SignalStrength returns the scripted RSSI.
func (f *FakeBackend) SignalStrength() (int, error) {
	if f.SignalError != nil {
		return 0, f.SignalError
	}
	return f.Signal, nil
}

package wifi

import (
	"errors"
	"testing"
)

func TestBeginConnects(t *testing.T) {
	backend := &FakeBackend{Address: "192.168.1.50"}
	m := NewManager(backend)

	var gotAddress string
	m.OnConnected(func(address string) { gotAddress = address })

	if err := m.Begin("homenet", "secret"); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	if !m.IsConnected() {
		t.Error("expected connected state")
	}
	if m.Status() != StatusConnected {
		t.Errorf("status: got %v, want %v", m.Status(), StatusConnected)
	}
	if m.Address() != "192.168.1.50" {
		t.Errorf("address: got %q, want 192.168.1.50", m.Address())
	}
	if gotAddress != "192.168.1.50" {
		t.Errorf("callback address: got %q", gotAddress)
	}
	if len(backend.ConnectCalls) != 1 || backend.ConnectCalls[0] != "homenet" {
		t.Errorf("connect calls: got %v", backend.ConnectCalls)
	}
}

func TestBeginRequiresSSID(t *testing.T) {
	m := NewManager(&FakeBackend{})
	if err := m.Begin("", "secret"); err == nil {
		t.Error("expected error for empty ssid")
	}
}

func TestBeginFailureSetsErrorState(t *testing.T) {
	backend := &FakeBackend{ConnectError: errors.New("simulated error")}
	m := NewManager(backend)

	called := false
	m.OnConnected(func(string) { called = true })

	if err := m.Begin("homenet", "secret"); err == nil {
		t.Fatal("expected connect error")
	}
	if m.Status() != StatusError {
		t.Errorf("status: got %v, want %v", m.Status(), StatusError)
	}
	if m.IsConnected() {
		t.Error("must not report connected")
	}
	if called {
		t.Error("connected callback must not fire on failure")
	}
}

func TestDisconnect(t *testing.T) {
	backend := &FakeBackend{Address: "10.0.0.9"}
	m := NewManager(backend)

	dropped := false
	m.OnDisconnected(func() { dropped = true })

	m.Begin("homenet", "secret")
	if err := m.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	if m.Status() != StatusDisconnected {
		t.Errorf("status: got %v, want %v", m.Status(), StatusDisconnected)
	}
	if m.Address() != "" {
		t.Errorf("address: got %q, want empty", m.Address())
	}
	if !dropped {
		t.Error("disconnected callback did not fire")
	}
	if backend.DisconnectCalls != 1 {
		t.Errorf("backend disconnects: got %d, want 1", backend.DisconnectCalls)
	}
}

func TestHandleDisconnectReconnects(t *testing.T) {
	backend := &FakeBackend{Address: "10.0.0.9"}
	m := NewManager(backend)

	drops := 0
	m.OnDisconnected(func() { drops++ })

	m.Begin("homenet", "secret")
	if err := m.HandleDisconnect(); err != nil {
		t.Fatalf("HandleDisconnect: %v", err)
	}

	if drops != 1 {
		t.Errorf("disconnect callbacks: got %d, want 1", drops)
	}
	if !m.IsConnected() {
		t.Error("expected reconnected state")
	}
	if len(backend.ConnectCalls) != 2 {
		t.Errorf("connect calls: got %d, want 2", len(backend.ConnectCalls))
	}
}

func TestHandleDisconnectWithoutAutoReconnect(t *testing.T) {
	backend := &FakeBackend{Address: "10.0.0.9"}
	m := NewManager(backend)
	m.SetAutoReconnect(false)

	m.Begin("homenet", "secret")
	if err := m.HandleDisconnect(); err != nil {
		t.Fatalf("HandleDisconnect: %v", err)
	}

	if m.Status() != StatusDisconnected {
		t.Errorf("status: got %v, want %v", m.Status(), StatusDisconnected)
	}
	if len(backend.ConnectCalls) != 1 {
		t.Errorf("connect calls: got %d, want 1", len(backend.ConnectCalls))
	}
}

func TestHandleDisconnectBeforeBegin(t *testing.T) {
	backend := &FakeBackend{}
	m := NewManager(backend)

	if err := m.HandleDisconnect(); err != nil {
		t.Fatalf("HandleDisconnect: %v", err)
	}
	if len(backend.ConnectCalls) != 0 {
		t.Error("must not reconnect without stored credentials")
	}
}

func TestRefreshUpdatesAddress(t *testing.T) {
	backend := &FakeBackend{Address: "10.0.0.9"}
	m := NewManager(backend)

	m.Begin("homenet", "secret")
	backend.Address = "10.0.0.17" // DHCP renewal moved us

	m.Refresh()

	if m.Address() != "10.0.0.17" {
		t.Errorf("address: got %q, want 10.0.0.17", m.Address())
	}
	if !m.IsConnected() {
		t.Error("refresh of a live link must stay connected")
	}
}

func TestRefreshRunsDisconnectPathOnDrop(t *testing.T) {
	backend := &FakeBackend{Address: "10.0.0.9"}
	m := NewManager(backend)

	drops := 0
	m.OnDisconnected(func() { drops++ })

	m.Begin("homenet", "secret")
	backend.ConnectError = errors.New("link lost")

	m.Refresh()

	if drops != 1 {
		t.Errorf("disconnect callbacks: got %d, want 1", drops)
	}
	// Begin, the failed probe, and the failed reconnect retry.
	if len(backend.ConnectCalls) != 3 {
		t.Errorf("connect calls: got %d, want 3", len(backend.ConnectCalls))
	}
	if m.Status() != StatusError {
		t.Errorf("status after failed reconnect: got %v, want %v", m.Status(), StatusError)
	}
}

func TestRefreshRecoversDroppedLink(t *testing.T) {
	backend := &FakeBackend{Address: "10.0.0.9", ConnectError: nil}
	m := NewManager(backend)
	m.Begin("homenet", "secret")

	// The probe fails once; the reconnect retry succeeds because the fake
	// error is cleared by the disconnected callback.
	backend.ConnectError = errors.New("link lost")
	m.OnDisconnected(func() { backend.ConnectError = nil })

	m.Refresh()

	if !m.IsConnected() {
		t.Error("expected reconnected state after recovery")
	}
}

func TestRefreshNoopWhenNotConnected(t *testing.T) {
	backend := &FakeBackend{}
	m := NewManager(backend)

	m.Refresh()

	if len(backend.ConnectCalls) != 0 {
		t.Errorf("refresh probed while idle: %v", backend.ConnectCalls)
	}
}

func TestStrength(t *testing.T) {
	m := NewManager(&FakeBackend{Signal: -61})
	dbm, err := m.Strength()
	if err != nil {
		t.Fatalf("Strength: %v", err)
	}
	if dbm != -61 {
		t.Errorf("strength: got %d, want -61", dbm)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusIdle:          "IDLE",
		StatusConnecting:    "CONNECTING",
		StatusConnected:     "CONNECTED",
		StatusDisconnecting: "DISCONNECTING",
		StatusDisconnected:  "DISCONNECTED",
		StatusError:         "ERROR",
		Status(42):          "UNKNOWN",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%d.String(): got %q, want %q", int(status), got, want)
		}
	}
}

func TestEnvBackendConnect(t *testing.T) {
	t.Setenv(EnvWifiStatus, "COMPLETED")
	t.Setenv(EnvWifiSSID, "homenet")
	t.Setenv(EnvIP, "192.168.1.50")

	var b EnvBackend
	ip, err := b.Connect("homenet", "")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if ip != "192.168.1.50" {
		t.Errorf("ip: got %q", ip)
	}
}

func TestEnvBackendConnectWrongNetwork(t *testing.T) {
	t.Setenv(EnvWifiStatus, "COMPLETED")
	t.Setenv(EnvWifiSSID, "neighbours")
	t.Setenv(EnvIP, "192.168.1.50")

	var b EnvBackend
	if _, err := b.Connect("homenet", ""); err == nil {
		t.Error("expected error for SSID mismatch")
	}
}

func TestEnvBackendConnectNotAssociated(t *testing.T) {
	t.Setenv(EnvWifiStatus, "SCANNING")
	var b EnvBackend
	if _, err := b.Connect("homenet", ""); err == nil {
		t.Error("expected error when not associated")
	}
}

func TestEnvBackendSignalStrength(t *testing.T) {
	t.Setenv(EnvWifiSignal, "-58")
	var b EnvBackend
	dbm, err := b.SignalStrength()
	if err != nil {
		t.Fatalf("SignalStrength: %v", err)
	}
	if dbm != -58 {
		t.Errorf("dbm: got %d, want -58", dbm)
	}

	t.Setenv(EnvWifiSignal, "strong")
	if _, err := b.SignalStrength(); err == nil {
		t.Error("expected parse error")
	}
}

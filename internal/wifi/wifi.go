// Package wifi tracks wireless connectivity for the hub. The actual
// association is delegated to a Backend; the Manager layers connection
// state, callbacks and auto-reconnect on top.
package wifi

import (
	"fmt"
	"log"
	"sync"
)

// Status is the manager's connection state.
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusConnected
	StatusDisconnecting
	StatusDisconnected
	StatusError
)

// String returns the status name for logs and the web UI.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusConnecting:
		return "CONNECTING"
	case StatusConnected:
		return "CONNECTED"
	case StatusDisconnecting:
		return "DISCONNECTING"
	case StatusDisconnected:
		return "DISCONNECTED"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Backend performs the platform-specific wireless operations.
type Backend interface {
	// Connect associates with the network and returns the assigned IP.
	Connect(ssid, passphrase string) (string, error)

	// Disconnect drops the association.
	Disconnect() error

	// SignalStrength returns the current RSSI in dBm.
	SignalStrength() (int, error)
}

// Manager wraps a Backend with state tracking, connected/disconnected
// callbacks and optional auto-reconnect. Safe for concurrent use.
type Manager struct {
	backend Backend
	logger  *log.Logger

	mu            sync.RWMutex
	status        Status
	ssid          string
	passphrase    string
	address       string
	autoReconnect bool

	onConnected    func(address string)
	onDisconnected func()
}

// NewManager creates a Manager in the idle state with auto-reconnect on.
func NewManager(backend Backend) *Manager {
	return &Manager{
		backend:       backend,
		status:        StatusIdle,
		autoReconnect: true,
	}
}

// SetLogger attaches a logger for connection lifecycle messages.
func (m *Manager) SetLogger(l *log.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = l
}

// OnConnected registers a callback invoked after a successful connect.
func (m *Manager) OnConnected(fn func(address string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConnected = fn
}

// OnDisconnected registers a callback invoked after the link drops.
func (m *Manager) OnDisconnected(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnected = fn
}

// SetAutoReconnect controls whether HandleDisconnect retries the last
// known credentials.
func (m *Manager) SetAutoReconnect(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoReconnect = enabled
}

// Begin connects to the given network and remembers the credentials for
// later reconnects. On failure the manager enters StatusError.
func (m *Manager) Begin(ssid, passphrase string) error {
	if ssid == "" {
		return fmt.Errorf("wifi: ssid is required")
	}

	m.mu.Lock()
	m.ssid = ssid
	m.passphrase = passphrase
	m.status = StatusConnecting
	m.mu.Unlock()

	m.logf("wifi: connecting to %q", ssid)

	address, err := m.backend.Connect(ssid, passphrase)

	m.mu.Lock()
	if err != nil {
		m.status = StatusError
		m.address = ""
		m.mu.Unlock()
		return fmt.Errorf("connect to %q: %w", ssid, err)
	}
	m.status = StatusConnected
	m.address = address
	cb := m.onConnected
	m.mu.Unlock()

	m.logf("wifi: connected to %q, address %s", ssid, address)
	if cb != nil {
		cb(address)
	}
	return nil
}

// Disconnect deliberately drops the link. Auto-reconnect does not fire
// for a deliberate disconnect.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	m.status = StatusDisconnecting
	m.mu.Unlock()

	err := m.backend.Disconnect()

	m.mu.Lock()
	m.status = StatusDisconnected
	m.address = ""
	cb := m.onDisconnected
	m.mu.Unlock()

	if err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	m.logf("wifi: disconnected")
	if cb != nil {
		cb()
	}
	return nil
}

// HandleDisconnect reacts to an unexpected link drop: it fires the
// disconnected callback and, when auto-reconnect is enabled, retries the
// last credentials once. The reconnect error, if any, is returned.
func (m *Manager) HandleDisconnect() error {
	m.mu.Lock()
	m.status = StatusDisconnected
	m.address = ""
	cb := m.onDisconnected
	retry := m.autoReconnect && m.ssid != ""
	ssid, pass := m.ssid, m.passphrase
	m.mu.Unlock()

	m.logf("wifi: link dropped")
	if cb != nil {
		cb()
	}

	if !retry {
		return nil
	}
	m.logf("wifi: reconnecting to %q", ssid)
	return m.Begin(ssid, pass)
}

// Refresh re-verifies an established link against the backend and keeps
// the reported address current. When the backend no longer confirms the
// association the unexpected-disconnect path runs, including
// auto-reconnect. No-op unless currently connected.
func (m *Manager) Refresh() {
	m.mu.RLock()
	connected := m.status == StatusConnected
	ssid, pass := m.ssid, m.passphrase
	m.mu.RUnlock()
	if !connected {
		return
	}

	address, err := m.backend.Connect(ssid, pass)
	if err != nil {
		if err := m.HandleDisconnect(); err != nil {
			m.logf("wifi: reconnect failed: %v", err)
		}
		return
	}

	m.mu.Lock()
	m.address = address
	m.mu.Unlock()
}

// IsConnected reports whether the link is up.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status == StatusConnected
}

// Status returns the current connection state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Address returns the assigned IP address, or empty when not connected.
func (m *Manager) Address() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.address
}

// Strength returns the current RSSI in dBm from the backend.
func (m *Manager) Strength() (int, error) {
	return m.backend.SignalStrength()
}

func (m *Manager) logf(format string, args ...any) {
	m.mu.RLock()
	l := m.logger
	m.mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

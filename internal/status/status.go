// Package status provides a thread-safe status tracker for the hub-io
// daemon. It is designed to be read by HTTP handlers and heartbeat
// publishers without touching the input engine.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/hub-io/internal/button"
)

// GestureCounts tallies classified gestures since startup.
type GestureCounts struct {
	Down        int
	Up          int
	Press       int
	DoublePress int
	LongPress   int
}

// WifiInfo contains wireless state. This is a local copy to avoid
// importing internal/wifi from status.
type WifiInfo struct {
	Status string
	IP     string
	SSID   string
}

// Config contains daemon configuration for display.
type Config struct {
	Chip          string
	Pin           int
	ActiveLow     bool
	EdgeDriven    bool
	PollMs        int64
	DebounceMs    uint32
	LongPressMs   uint32
	DoublePressMs uint32
	HeartbeatMs   int64
	Broker        string
	HTTPAddr      string
	SerialLog     string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Button        button.State
	TimeInStateMs uint32
	Counts        GestureCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Wifi          *WifiInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the debounced button state, time in state, and gesture
// counts. Called from runLoop on every tick.
func (t *Tracker) Update(state button.State, timeInStateMs uint32, counts GestureCounts) {
	t.mu.Lock()
	t.snap.Button = state
	t.snap.TimeInStateMs = timeInStateMs
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetWifi sets the wireless info.
func (t *Tracker) SetWifi(info *WifiInfo) {
	t.mu.Lock()
	t.snap.Wifi = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

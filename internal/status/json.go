package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Button        string     `json:"button"`
	TimeInStateMs uint32     `json:"time_in_state_ms"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"gesture_counts"`
	Wifi          *WifiJSON  `json:"wifi,omitempty"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of gesture counts.
type CountsJSON struct {
	Down        int `json:"down"`
	Up          int `json:"up"`
	Press       int `json:"press"`
	DoublePress int `json:"double_press"`
	LongPress   int `json:"long_press"`
}

// WifiJSON is the JSON representation of wireless info.
type WifiJSON struct {
	Status string `json:"status"`
	IP     string `json:"ip"`
	SSID   string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip          string `json:"chip"`
	Pin           int    `json:"pin"`
	ActiveLow     bool   `json:"active_low"`
	EdgeDriven    bool   `json:"edge_driven"`
	PollMs        int64  `json:"poll_ms"`
	DebounceMs    uint32 `json:"debounce_ms"`
	LongPressMs   uint32 `json:"long_press_ms"`
	DoublePressMs uint32 `json:"double_press_ms"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
	HTTPAddr      string `json:"http_addr"`
	SerialLog     string `json:"serial_log,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.Button)
	if state == "" {
		state = "UNKNOWN"
	}

	return StatusInner{
		Button:        state,
		TimeInStateMs: snap.TimeInStateMs,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Down:        snap.Counts.Down,
			Up:          snap.Counts.Up,
			Press:       snap.Counts.Press,
			DoublePress: snap.Counts.DoublePress,
			LongPress:   snap.Counts.LongPress,
		},
		Config: ConfigJSON{
			Chip:          snap.Config.Chip,
			Pin:           snap.Config.Pin,
			ActiveLow:     snap.Config.ActiveLow,
			EdgeDriven:    snap.Config.EdgeDriven,
			PollMs:        snap.Config.PollMs,
			DebounceMs:    snap.Config.DebounceMs,
			LongPressMs:   snap.Config.LongPressMs,
			DoublePressMs: snap.Config.DoublePressMs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			Broker:        snap.Config.Broker,
			HTTPAddr:      snap.Config.HTTPAddr,
			SerialLog:     snap.Config.SerialLog,
		},
	}
}

func buildWifi(snap Snapshot, inner *StatusInner) {
	if snap.Wifi != nil {
		inner.Wifi = &WifiJSON{
			Status: snap.Wifi.Status,
			IP:     snap.Wifi.IP,
			SSID:   snap.Wifi.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildWifi(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildWifi(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

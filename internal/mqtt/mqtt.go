// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/hub-io/internal/button"
	"github.com/sweeney/hub-io/internal/strutil"
)

// Topic is the MQTT topic for button gesture events.
const Topic = "home/hub/button/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/hub/system"

// MaxPayloadBytes bounds a formatted event payload. An event larger than
// this is a formatting bug, not legitimate traffic.
const MaxPayloadBytes = 4096

// checkSize rejects payloads over MaxPayloadBytes before they reach the
// broker (or the replay queue).
func checkSize(payload []byte) ([]byte, error) {
	if n := strutil.ByteLength(string(payload)); n > MaxPayloadBytes {
		return nil, fmt.Errorf("payload is %d bytes, limit %d", n, MaxPayloadBytes)
	}
	return payload, nil
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a button event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event button.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Button ButtonPayload `json:"button"`
}

// ButtonPayload contains the button event details.
type ButtonPayload struct {
	Timestamp  string `json:"timestamp"`
	Pin        int    `json:"pin"`
	Gesture    string `json:"gesture"`
	DurationMs uint32 `json:"duration_ms"`
	State      string `json:"state"`
}

// FormatPayload creates the JSON payload for a button event.
func FormatPayload(event button.Event) ([]byte, error) {
	payload := Payload{
		Button: ButtonPayload{
			Timestamp:  event.Timestamp.UTC().Format(time.RFC3339),
			Pin:        event.Pin,
			Gesture:    string(event.Gesture),
			DurationMs: event.DurationMs,
			State:      string(event.State),
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return checkSize(data)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return checkSize(event.RawPayload)
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return checkSize(data)
}

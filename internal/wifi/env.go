package wifi

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables populated by the pi-helper scripts that manage
// the host's wireless interface. The hub itself never touches wpa_cli;
// it just reads what the helper reports.
const (
	EnvIP         = "IP"
	EnvWifiStatus = "WIFI_STATUS"
	EnvWifiSSID   = "WIFI_SSID"
	EnvWifiSignal = "WIFI_SIGNAL"
)

// wifiStatusUp is the helper's value for an associated interface.
const wifiStatusUp = "COMPLETED"

// EnvBackend is a Backend that reports the connectivity the host already
// has, as surfaced by the pi-helper environment. Connect does not start
// an association; it verifies the host is on the requested network.
type EnvBackend struct{}

// Connect verifies the helper reports an association with the given SSID
// and returns the host's IP.
func (EnvBackend) Connect(ssid, _ string) (string, error) {
	status := os.Getenv(EnvWifiStatus)
	if status != wifiStatusUp {
		return "", fmt.Errorf("interface not associated (status %q)", status)
	}
	if current := os.Getenv(EnvWifiSSID); current != "" && current != ssid {
		return "", fmt.Errorf("associated with %q, not %q", current, ssid)
	}
	ip := os.Getenv(EnvIP)
	if ip == "" {
		return "", fmt.Errorf("no IP address reported")
	}
	return ip, nil
}

// Disconnect is a no-op: the helper owns the interface.
func (EnvBackend) Disconnect() error {
	return nil
}

// SignalStrength parses the helper-reported RSSI.
func (EnvBackend) SignalStrength() (int, error) {
	raw := os.Getenv(EnvWifiSignal)
	if raw == "" {
		return 0, fmt.Errorf("no signal strength reported")
	}
	dbm, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse signal strength %q: %w", raw, err)
	}
	return dbm, nil
}

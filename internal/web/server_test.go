package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/hub-io/internal/button"
	"github.com/sweeney/hub-io/internal/logproxy"
	"github.com/sweeney/hub-io/internal/status"
)

func newTestServer(t *testing.T, logs Tailer) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Chip:          "gpiochip0",
		Pin:           17,
		ActiveLow:     true,
		PollMs:        5,
		DebounceMs:    25,
		LongPressMs:   800,
		DoublePressMs: 300,
		HeartbeatMs:   900000,
		Broker:        "tcp://192.168.1.200:1883",
		HTTPAddr:      ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, logs)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(button.Pressed, 120, status.GestureCounts{Down: 5, Up: 4, Press: 3})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Button != "PRESSED" {
		t.Errorf("Button: got %q, want PRESSED", sj.Status.Button)
	}
	if sj.Status.TimeInStateMs != 120 {
		t.Errorf("TimeInStateMs: got %d, want 120", sj.Status.TimeInStateMs)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Down != 5 {
		t.Errorf("Counts.Down: got %d, want 5", sj.Status.Counts.Down)
	}
	if sj.Status.Config.DoublePressMs != 300 {
		t.Errorf("Config.DoublePressMs: got %d, want 300", sj.Status.Config.DoublePressMs)
	}
}

func TestJSONUnknownStateBeforeFirstTick(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.Button != "UNKNOWN" {
		t.Errorf("Button before first tick: got %q, want UNKNOWN", sj.Status.Button)
	}
}

func TestJSONWifiInfo(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.SetWifi(&status.WifiInfo{
		Status: "CONNECTED",
		IP:     "192.168.1.42",
		SSID:   "MyNet",
	})

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.Wifi == nil {
		t.Fatal("expected Wifi in JSON")
	}
	if sj.Status.Wifi.IP != "192.168.1.42" {
		t.Errorf("Wifi.IP: got %q, want 192.168.1.42", sj.Status.Wifi.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(button.Pressed, 40, status.GestureCounts{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "PRESSED") {
		t.Error("expected button state in HTML")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestLogEndpoint(t *testing.T) {
	logs := logproxy.New(0, nil)
	for _, line := range []string{"first", "second", "third"} {
		logs.Write([]byte(line + "\n"))
	}
	ts, _ := newTestServer(t, logs)

	resp, err := http.Get(ts.URL + "/log?lines=2")
	if err != nil {
		t.Fatalf("GET /log: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type: got %q, want text/plain", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "second\nthird\n" {
		t.Errorf("body: got %q, want %q", body, "second\nthird\n")
	}
}

func TestLogEndpointBadLinesParam(t *testing.T) {
	ts, _ := newTestServer(t, logproxy.New(0, nil))

	for _, q := range []string{"?lines=abc", "?lines=0", "?lines=-5"} {
		resp, err := http.Get(ts.URL + "/log" + q)
		if err != nil {
			t.Fatalf("GET /log%s: %v", q, err)
		}
		resp.Body.Close()
		if resp.StatusCode != 400 {
			t.Errorf("GET /log%s: status %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestLogEndpointWithoutTailer(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/log")
	if err != nil {
		t.Fatalf("GET /log: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t, nil)

	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.Counts.Press != 0 {
		t.Error("expected zero presses initially")
	}

	tr.Update(button.Released, 0, status.GestureCounts{Press: 1})
	tr.SetMQTTConnected(true)

	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if sj2.Status.Button != "RELEASED" {
		t.Errorf("Button: got %q, want RELEASED", sj2.Status.Button)
	}
	if sj2.Status.Counts.Press != 1 {
		t.Errorf("Counts.Press: got %d, want 1", sj2.Status.Counts.Press)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

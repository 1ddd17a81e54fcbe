// Command hub-io watches a GPIO push button and publishes debounced press
// gestures to MQTT, with an HTTP status page and a recent-log endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/hub-io/internal/button"
	"github.com/sweeney/hub-io/internal/gpio"
	"github.com/sweeney/hub-io/internal/i2cscan"
	"github.com/sweeney/hub-io/internal/logproxy"
	"github.com/sweeney/hub-io/internal/motor"
	"github.com/sweeney/hub-io/internal/mqtt"
	"github.com/sweeney/hub-io/internal/shiftreg"
	"github.com/sweeney/hub-io/internal/status"
	"github.com/sweeney/hub-io/internal/strutil"
	"github.com/sweeney/hub-io/internal/web"
	"github.com/sweeney/hub-io/internal/wifi"
)

func main() {
	chip := flag.String("chip", gpio.DefaultChip, "GPIO character device name")
	pin := flag.Int("pin", gpio.DefaultButtonPin, "BCM pin number for the button")
	activeLow := flag.Bool("active-low", true, "Button pulls the pin low when pressed")
	edge := flag.Bool("edge", false, "Use hardware edge events instead of polling the pin level")
	poll := flag.Duration("poll", 5*time.Millisecond, "Engine tick interval")
	debounce := flag.Duration("debounce", 25*time.Millisecond, "Debounce duration")
	longPress := flag.Duration("long-press", 800*time.Millisecond, "Long press threshold")
	doublePress := flag.Duration("double-press", 300*time.Millisecond, "Double press window")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	logSize := flag.Int("log-size", logproxy.DefaultBufferSize, "In-memory log buffer size in bytes")
	serialLog := flag.String("serial-log", "", "Serial device to mirror logs to (empty to disable)")
	serialBaud := flag.Int("serial-baud", 115200, "Serial log baud rate")
	printState := flag.Bool("print-state", false, "Print current button level and exit")
	motorPins := flag.String("motor-pins", "", "H-bridge pins as en,in1,in2 (empty to disable)")
	motorSpeed := flag.Int("motor-speed", 200, "Motor drive speed, 1-255")
	ledPins := flag.String("led-pins", "", "Status LED shift register pins as data,clock,latch (empty to disable)")
	ledRegisters := flag.Int("led-registers", 1, "Chained shift register count for status LEDs")
	scanI2C := flag.Bool("scan-i2c", false, "Scan the I2C bus for devices and exit")
	i2cBus := flag.String("i2c-bus", "", "I2C bus name for -scan-i2c (empty for first available)")

	flag.Parse()

	if *scanI2C {
		if err := runScan(*i2cBus); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	cfg := button.Config{
		Pin:           *pin,
		DebounceMs:    uint32((*debounce).Milliseconds()),
		LongPressMs:   uint32((*longPress).Milliseconds()),
		DoublePressMs: uint32((*doublePress).Milliseconds()),
		ActiveLow:     *activeLow,
		EdgeDriven:    *edge,
	}

	outCfg := outputConfig{
		motorPins:    *motorPins,
		motorSpeed:   *motorSpeed,
		ledPins:      *ledPins,
		ledRegisters: *ledRegisters,
	}

	if err := run(*chip, cfg, outCfg, *poll, *broker, *heartbeat, *httpAddr, *logSize, *serialLog, *serialBaud, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(chip string, cfg button.Config, outCfg outputConfig, poll time.Duration, broker string, heartbeat time.Duration, httpAddr string, logSize int, serialLog string, serialBaud int, printState bool) error {
	// Route all logging through the in-memory buffer (and the serial
	// console when configured) so /log can serve recent lines.
	logs, err := setupLogging(logSize, serialLog, serialBaud)
	if err != nil {
		return err
	}

	// Initialize the button line. In edge mode the engine's HandleEdge is
	// attached as the hardware event handler.
	eng, line, err := setupButton(chip, cfg)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer line.Close()

	// Print state mode
	if printState {
		level, err := line.Level()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		pressed := level != cfg.ActiveLow
		fmt.Printf("pin %d: %s (raw level %v)\n", cfg.Pin, pressedString(pressed), level)
		return nil
	}

	// Optional gesture-driven motor and status LED chain
	out, closeOutputs, err := setupOutputs(chip, outCfg)
	if err != nil {
		return fmt.Errorf("init outputs: %w", err)
	}
	defer closeOutputs()

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:          chip,
		Pin:           cfg.Pin,
		ActiveLow:     cfg.ActiveLow,
		EdgeDriven:    cfg.EdgeDriven,
		PollMs:        poll.Milliseconds(),
		DebounceMs:    cfg.DebounceMs,
		LongPressMs:   cfg.LongPressMs,
		DoublePressMs: cfg.DoublePressMs,
		HeartbeatMs:   heartbeat.Milliseconds(),
		Broker:        broker,
		HTTPAddr:      httpAddr,
		SerialLog:     serialLog,
	})

	// Wireless state comes from the pi-helper environment; the manager
	// verifies it and keeps the tracker current.
	wifiMgr := setupWifi(tracker)
	wifiRefresh := func() *status.WifiInfo {
		if wifiMgr != nil {
			wifiMgr.Refresh()
		}
		return readWifiInfo(wifiMgr)
	}
	if info := wifiRefresh(); info != nil {
		tracker.SetWifi(info)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker, logs)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: pin=%d poll=%v debounce=%dms long=%dms double=%dms broker=%s heartbeat=%v",
		cfg.Pin, poll, cfg.DebounceMs, cfg.LongPressMs, cfg.DoublePressMs, broker, heartbeat)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(eng, cfg.Pin, publisher, publisher, tracker, out, wifiRefresh, heartbeat, time.Now, ticker.C, sigCh)
}

// outputConfig carries the optional peripheral flags.
type outputConfig struct {
	motorPins    string
	motorSpeed   int
	ledPins      string
	ledRegisters int
}

// Status LED positions on the shift register chain.
const (
	ledBitButton = 0
	ledBitMQTT   = 1
	ledBitWifi   = 2
)

// outputs drives the optional peripherals: a gesture-controlled motor and
// status LEDs on a shift register chain. Nil receiver and nil members are
// allowed; the corresponding output is simply absent.
type outputs struct {
	motor *motor.Motor
	drive int // configured speed magnitude
	dir   int // 1 forward, -1 reverse
	leds  *shiftreg.Register
}

// toggleMotor starts the motor at the configured speed, or stops it when
// already running. Mapped to a single press.
func (o *outputs) toggleMotor() {
	if o == nil || o.motor == nil {
		return
	}
	var err error
	if o.motor.Speed() != 0 {
		err = o.motor.Stop()
	} else {
		err = o.motor.SetSpeed(o.dir * o.drive)
	}
	if err != nil {
		log.Printf("motor: %v", err)
	}
}

// reverseMotor flips the drive direction; a running motor changes
// direction immediately. Mapped to a double press.
func (o *outputs) reverseMotor() {
	if o == nil || o.motor == nil {
		return
	}
	o.dir = -o.dir
	if o.motor.Speed() == 0 {
		return
	}
	if err := o.motor.SetSpeed(o.dir * o.drive); err != nil {
		log.Printf("motor: %v", err)
	}
}

// brakeMotor actively brakes the bridge. Mapped to a long press.
func (o *outputs) brakeMotor() {
	if o == nil || o.motor == nil {
		return
	}
	if err := o.motor.Brake(); err != nil {
		log.Printf("motor: %v", err)
	}
}

// updateLEDs mirrors hub health onto the first three chain outputs. Bit
// changes are batched and only flushed when something changed.
func (o *outputs) updateLEDs(pressed, mqttUp, wifiUp bool) {
	if o == nil || o.leds == nil {
		return
	}
	for _, led := range []struct {
		bit int
		on  bool
	}{
		{ledBitButton, pressed},
		{ledBitMQTT, mqttUp},
		{ledBitWifi, wifiUp},
	} {
		if err := o.leds.Set(led.bit, led.on, false); err != nil {
			log.Printf("leds: %v", err)
			return
		}
	}
	if err := o.leds.PushUpdates(false); err != nil {
		log.Printf("leds: %v", err)
	}
}

// setupOutputs opens the optional motor and status LED hardware. Either
// can be disabled independently with an empty pin spec.
func setupOutputs(chip string, cfg outputConfig) (*outputs, func(), error) {
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	if cfg.motorPins == "" && cfg.ledPins == "" {
		return nil, closeAll, nil
	}

	openPins := func(spec string) ([3]*gpio.RealPin, error) {
		var pins [3]*gpio.RealPin
		nums, err := parsePins(spec, 3)
		if err != nil {
			return pins, err
		}
		for i, n := range nums {
			p, err := gpio.NewRealPin(chip, n, false)
			if err != nil {
				return pins, fmt.Errorf("pin %d: %w", n, err)
			}
			closers = append(closers, p)
			pins[i] = p
		}
		return pins, nil
	}

	out := &outputs{drive: cfg.motorSpeed, dir: 1}

	if cfg.motorPins != "" {
		pins, err := openPins(cfg.motorPins)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("motor: %w", err)
		}
		m, err := motor.New(motor.OnOff(pins[0]), pins[1], pins[2])
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("motor: %w", err)
		}
		out.motor = m
	}

	if cfg.ledPins != "" {
		pins, err := openPins(cfg.ledPins)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("status leds: %w", err)
		}
		reg, err := shiftreg.New(pins[0], pins[1], pins[2], cfg.ledRegisters)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("status leds: %w", err)
		}
		out.leds = reg
	}

	return out, closeAll, nil
}

// parsePins parses a comma-separated pin list of exactly want entries.
func parsePins(spec string, want int) ([]int, error) {
	fields := strutil.SplitNonEmpty(spec, ",")
	if len(fields) != want {
		return nil, fmt.Errorf("%q: want %d pins, got %d", spec, want, len(fields))
	}
	pins := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("pin %q: %w", f, err)
		}
		pins[i] = n
	}
	return pins, nil
}

// runScan probes the I2C bus and prints what answers. Useful when checking
// expander or sensor wiring on a new board.
func runScan(busName string) error {
	bus, err := i2cscan.OpenRealBus(busName)
	if err != nil {
		return fmt.Errorf("init i2c: %w", err)
	}
	defer bus.Close()
	i2cscan.Scan(bus, os.Stdout)
	return nil
}

// setupLogging installs the log buffer as the process-wide log output.
func setupLogging(size int, serialDevice string, baud int) (*logproxy.Proxy, error) {
	var sink *logproxy.Proxy
	if serialDevice != "" {
		port, err := logproxy.OpenSerialSink(serialDevice, baud)
		if err != nil {
			return nil, fmt.Errorf("init serial log: %w", err)
		}
		sink = logproxy.New(size, port)
	} else {
		sink = logproxy.New(size, nil)
	}
	log.SetOutput(sink)
	return sink, nil
}

// setupButton creates the engine and requests the hardware line, wiring
// edge events to the engine when edge acquisition is selected.
func setupButton(chip string, cfg button.Config) (*button.Engine, gpio.Line, error) {
	// The engine is created before the line so the hardware edge handler
	// never sees a nil engine. The sampler's line reference is only used
	// once ticking starts, by which point the line is set.
	var line gpio.Line

	// Idle physical level is high for active-low wiring, low otherwise.
	lastLevel := cfg.ActiveLow
	sampler := func() bool {
		v, err := line.Level()
		if err != nil {
			log.Printf("gpio read error: %v", err)
			return lastLevel
		}
		lastLevel = v
		return v
	}

	eng, err := button.New(cfg, button.WallClock(), sampler)
	if err != nil {
		return nil, nil, err
	}

	var handler gpio.EdgeHandler
	if cfg.EdgeDriven {
		handler = eng.HandleEdge
	}

	real, err := gpio.NewRealLine(chip, cfg.Pin, cfg.ActiveLow, handler)
	if err != nil {
		return nil, nil, err
	}
	line = real
	return eng, line, nil
}

// setupWifi starts the wireless manager against the pi-helper environment.
// Returns nil when the helper reports nothing.
func setupWifi(tracker *status.Tracker) *wifi.Manager {
	ssid := os.Getenv(wifi.EnvWifiSSID)
	if ssid == "" {
		return nil
	}

	mgr := wifi.NewManager(wifi.EnvBackend{})
	mgr.SetLogger(log.Default())
	mgr.OnConnected(func(address string) {
		tracker.SetWifi(readWifiInfo(mgr))
	})
	mgr.OnDisconnected(func() {
		tracker.SetWifi(readWifiInfo(mgr))
	})
	if err := mgr.Begin(ssid, ""); err != nil {
		log.Printf("wifi: %v", err)
	}
	return mgr
}

func readWifiInfo(mgr *wifi.Manager) *status.WifiInfo {
	if mgr == nil {
		return nil
	}
	return &status.WifiInfo{
		Status: mgr.Status().String(),
		IP:     mgr.Address(),
		SSID:   os.Getenv(wifi.EnvWifiSSID),
	}
}

func runLoop(eng *button.Engine, pin int, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, out *outputs, wifiRefresh func() *status.WifiInfo, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	var counts status.GestureCounts

	publish := func(gesture button.Gesture, durationMs uint32) {
		event := button.Event{
			Timestamp:  now(),
			Pin:        pin,
			Gesture:    gesture,
			DurationMs: durationMs,
			State:      eng.State(),
		}
		log.Printf("event: %s duration=%dms", gesture, durationMs)
		if err := publisher.Publish(event); err != nil {
			log.Printf("publish error: %v", err)
			// Don't crash on publish failure
		}
	}

	eng.OnDown(func() {
		counts.Down++
		publish(button.GestureDown, 0)
	})
	eng.OnUp(func() {
		counts.Up++
		publish(button.GestureUp, 0)
	})
	eng.OnPressed(func(heldMs uint32) {
		counts.Press++
		publish(button.GesturePress, heldMs)
		out.toggleMotor()
	})
	eng.OnDoublePressed(func(gapMs uint32) {
		counts.DoublePress++
		publish(button.GestureDoublePress, gapMs)
		out.reverseMotor()
	})
	eng.OnLongPressed(func(heldMs uint32) {
		counts.LongPress++
		publish(button.GestureLongPress, heldMs)
		out.brakeMotor()
	})

	lastHeartbeat := now()
	wifiUp := false

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			eng.Tick()
			t := now()

			// Check for heartbeat
			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				log.Printf("heartbeat: down=%d up=%d press=%d double=%d long=%d",
					counts.Down, counts.Up, counts.Press, counts.DoublePress, counts.LongPress)

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh wireless info for heartbeat
					if wifiRefresh != nil {
						if info := wifiRefresh(); info != nil {
							tracker.SetWifi(info)
							wifiUp = info.Status == "CONNECTED"
						}
					}
					tracker.Update(eng.State(), eng.TimeInState(), counts)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(eng.State(), eng.TimeInState(), counts)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			out.updateLEDs(eng.IsPressed(), mqttStatus != nil && mqttStatus.IsConnected(), wifiUp)
		}
	}
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

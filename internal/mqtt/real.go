package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/hub-io/internal/button"
)

// replayCapacity bounds how many gestures survive a broker outage.
const replayCapacity = 64

// RealPublisher publishes to an actual MQTT broker. Messages that cannot
// be delivered are held in a replay queue and flushed when the paho
// client reconnects.
type RealPublisher struct {
	client paho.Client
	topic  string

	mu    sync.Mutex
	queue *replayQueue
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker string) (*RealPublisher, error) {
	p := &RealPublisher{
		topic: Topic,
		queue: newReplayQueue(replayCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("hub-io").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) {
			p.flushQueued()
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	p.client = client
	return p, nil
}

// Publish sends a button event to the MQTT broker. While disconnected the
// event is queued for replay instead.
func (p *RealPublisher) Publish(event button.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.send(outMsg{topic: p.topic, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.send(outMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the underlying client is connected.
func (p *RealPublisher) IsConnected() bool {
	return p.client != nil && p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (p *RealPublisher) send(msg outMsg) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.queue.enqueue(msg)
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.mu.Lock()
		p.queue.enqueue(msg)
		p.mu.Unlock()
		return fmt.Errorf("publish timeout, queued for replay")
	}
	if err := token.Error(); err != nil {
		p.mu.Lock()
		p.queue.enqueue(msg)
		p.mu.Unlock()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// flushQueued replays queued messages after a reconnect. Runs on the paho
// connect callback goroutine.
func (p *RealPublisher) flushQueued() {
	p.mu.Lock()
	msgs := p.queue.drain()
	p.mu.Unlock()

	for _, msg := range msgs {
		token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		token.WaitTimeout(5 * time.Second)
	}
}

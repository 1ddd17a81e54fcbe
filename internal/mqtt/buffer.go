package mqtt

import "log"

// outMsg is a serialized MQTT message queued for replay after reconnection.
type outMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// replayQueue is a fixed-capacity FIFO holding messages that could not be
// delivered while the broker was unreachable. When full the oldest message
// is dropped, so a long outage keeps the most recent gestures.
// Not safe for concurrent use — caller must synchronize.
type replayQueue struct {
	buf      []outMsg
	head     int // next write position
	count    int
	overflow bool // true if any message was dropped since last drain
}

func newReplayQueue(capacity int) *replayQueue {
	return &replayQueue{buf: make([]outMsg, capacity)}
}

func (q *replayQueue) enqueue(msg outMsg) {
	if q.count == len(q.buf) {
		if !q.overflow {
			log.Printf("mqtt: replay queue full (%d messages), dropping oldest", len(q.buf))
			q.overflow = true
		}
		// Overwrite oldest: head is already pointing at it
		q.buf[q.head] = msg
		q.head = (q.head + 1) % len(q.buf)
		return
	}
	q.buf[q.head] = msg
	q.head = (q.head + 1) % len(q.buf)
	q.count++
}

// drain returns the queued messages oldest-first and empties the queue.
func (q *replayQueue) drain() []outMsg {
	if q.count == 0 {
		return nil
	}

	out := make([]outMsg, q.count)
	start := (q.head - q.count + len(q.buf)) % len(q.buf)
	for i := 0; i < q.count; i++ {
		out[i] = q.buf[(start+i)%len(q.buf)]
	}

	q.count = 0
	q.head = 0
	q.overflow = false
	return out
}

func (q *replayQueue) len() int {
	return q.count
}

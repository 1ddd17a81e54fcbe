// Package logproxy tees log output to an optional secondary sink (for
// example a serial console) while keeping a fixed-size ring of recent
// bytes that can be rendered back as the last N lines.
package logproxy

import (
	"io"
	"strings"
	"sync"
)

// DefaultBufferSize is the ring capacity in bytes when none is given.
const DefaultBufferSize = 2048

// Proxy is an io.Writer suitable for log.SetOutput. Writes go to the
// ring always, and to the sink when one is attached. Sink errors are
// swallowed so a dead serial port can never break logging.
type Proxy struct {
	mu   sync.Mutex
	sink io.Writer

	buf   []byte
	start int
	size  int
}

// New creates a Proxy with the given ring capacity in bytes. Sizes less
// than 1 fall back to DefaultBufferSize. sink may be nil.
func New(size int, sink io.Writer) *Proxy {
	if size < 1 {
		size = DefaultBufferSize
	}
	return &Proxy{
		sink: sink,
		buf:  make([]byte, size),
	}
}

// Write appends p to the ring, evicting the oldest bytes on overflow,
// and forwards p to the sink if one is attached.
func (p *Proxy) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sink != nil {
		p.sink.Write(b) // best effort
	}

	n := len(b)
	if n >= len(p.buf) {
		// Larger than the whole ring: keep only the tail.
		copy(p.buf, b[n-len(p.buf):])
		p.start = 0
		p.size = len(p.buf)
		return n, nil
	}

	for _, c := range b {
		idx := (p.start + p.size) % len(p.buf)
		p.buf[idx] = c
		if p.size < len(p.buf) {
			p.size++
		} else {
			p.start = (p.start + 1) % len(p.buf)
		}
	}
	return n, nil
}

// Tail returns up to the last `lines` complete lines held in the ring.
// A partial first line left over from eviction is dropped.
func (p *Proxy) Tail(lines int) string {
	p.mu.Lock()
	contents := p.snapshot()
	full := p.size == len(p.buf)
	p.mu.Unlock()

	if lines < 1 || contents == "" {
		return ""
	}

	trailing := strings.HasSuffix(contents, "\n")
	contents = strings.TrimSuffix(contents, "\n")
	split := strings.Split(contents, "\n")

	// A full ring has evicted, so the first entry may be a torn line.
	if full && len(split) > 0 {
		split = split[1:]
	}

	if len(split) > lines {
		split = split[len(split)-lines:]
	}
	if len(split) == 0 {
		return ""
	}

	out := strings.Join(split, "\n")
	if trailing {
		out += "\n"
	}
	return out
}

// Clear empties the ring. The sink is unaffected.
func (p *Proxy) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start = 0
	p.size = 0
}

// Len returns the number of bytes currently held.
func (p *Proxy) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

func (p *Proxy) snapshot() string {
	out := make([]byte, p.size)
	for i := 0; i < p.size; i++ {
		out[i] = p.buf[(p.start+i)%len(p.buf)]
	}
	return string(out)
}

// Package rbuf provides a fixed-capacity circular byte buffer shared by
// exactly one producer and one consumer without locks.
//
// The producer owns the end cursor and the consumer owns the start cursor.
// Each side reads the other's cursor but never writes it. One slot is always
// left unused so a full buffer can be told apart from an empty one, which
// makes the usable capacity one less than the allocated capacity.
package rbuf

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// DefaultCapacity is the allocated size of a Buffer created with New(0).
const DefaultCapacity = 255

// ErrFull is returned by Append when the byte was dropped.
var ErrFull = errors.New("buffer full")

// Buffer is the shared storage. Use Producer and Consumer to access it.
type Buffer struct {
	buf   []byte
	size  uint32
	start uint32 // written by consumer only
	end   uint32 // written by producer only
}

// New creates a Buffer with the allocated capacity. capacity <= 0 selects
// DefaultCapacity. capacity must be at least 2.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if capacity < 2 {
		panic(fmt.Sprintf("rbuf: capacity %d too small", capacity))
	}
	return &Buffer{buf: make([]byte, capacity), size: uint32(capacity)}
}

// Cap returns the allocated capacity.
func (b *Buffer) Cap() int {
	return int(b.size)
}

// Usable returns the maximum number of bytes the buffer holds.
func (b *Buffer) Usable() int {
	return int(b.size) - 1
}

// Reset zeroes the contents and both cursors.
// It must not run while a producer or consumer is active.
func (b *Buffer) Reset() {
	for i := range b.buf {
		b.buf[i] = 0
	}
	atomic.StoreUint32(&b.start, 0)
	atomic.StoreUint32(&b.end, 0)
}

// Producer returns the append-only handle.
func (b *Buffer) Producer() Producer {
	return Producer{b: b}
}

// Consumer returns the read/shift handle.
func (b *Buffer) Consumer() Consumer {
	return Consumer{b: b}
}

func (b *Buffer) length(start, end uint32) uint32 {
	if start <= end {
		return end - start
	}
	return b.size - start + end
}

// Producer appends bytes. Only one goroutine may use it.
type Producer struct {
	b *Buffer
}

// Append writes x at the end of the buffer. When the buffer is full the
// byte is dropped, nothing changes and ErrFull is returned.
func (p Producer) Append(x byte) error {
	b := p.b
	end := atomic.LoadUint32(&b.end)
	newEnd := (end + 1) % b.size
	if newEnd == atomic.LoadUint32(&b.start) {
		return ErrFull
	}
	b.buf[end] = x
	// publishing the cursor is the last visible effect
	atomic.StoreUint32(&b.end, newEnd)
	return nil
}

// Consumer reads and discards bytes from the front. Only one goroutine
// may use it at a time.
type Consumer struct {
	b *Buffer
}

// Len returns the number of buffered bytes. end is loaded once before
// start, so a concurrent Append can only make the result stale-low.
func (c Consumer) Len() int {
	b := c.b
	end := atomic.LoadUint32(&b.end)
	start := atomic.LoadUint32(&b.start)
	return int(b.length(start, end))
}

// Read returns the byte at logical offset i from the front.
// It panics if i is not below Len().
func (c Consumer) Read(i int) byte {
	if i < 0 || i >= c.Len() {
		panic(fmt.Sprintf("rbuf: read offset %d out of range", i))
	}
	b := c.b
	start := atomic.LoadUint32(&b.start)
	return b.buf[(start+uint32(i))%b.size]
}

// CopyTo copies up to len(dst) bytes from the front into dst and returns
// the number of bytes copied. Nothing is discarded.
func (c Consumer) CopyTo(dst []byte) int {
	b := c.b
	end := atomic.LoadUint32(&b.end)
	start := atomic.LoadUint32(&b.start)
	n := int(b.length(start, end))
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = b.buf[(start+uint32(i))%b.size]
	}
	return n
}

// Shift discards up to n bytes from the front.
func (c Consumer) Shift(n int) {
	if n <= 0 {
		return
	}
	b := c.b
	end := atomic.LoadUint32(&b.end)
	start := atomic.LoadUint32(&b.start)
	if l := b.length(start, end); n >= int(l) {
		atomic.StoreUint32(&b.start, end)
		return
	}
	atomic.StoreUint32(&b.start, (start+uint32(n))%b.size)
}

package xbee

import "sync/atomic"

// EventKind classifies link events.
type EventKind int

const (
	// EventFrameReceived is a valid frame delivered to Receive.
	EventFrameReceived EventKind = iota
	// EventFrameDropped is a frame discarded with Err set.
	EventFrameDropped
	// EventGarbageDiscarded reports Count bytes skipped while looking for a
	// delimiter.
	EventGarbageDiscarded
	// EventFrameTransmitted is a frame written out.
	EventFrameTransmitted
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case EventFrameReceived:
		return "received"
	case EventFrameDropped:
		return "dropped"
	case EventGarbageDiscarded:
		return "garbage"
	case EventFrameTransmitted:
		return "transmitted"
	}
	return "unknown"
}

// Event is reported to EventHandler from the consumer or transmit side,
// never from the producer.
type Event struct {
	Kind  EventKind
	Frame Frame
	Err   error
	Count int
}

// EventHandler is notified about link events.
type EventHandler interface {
	HandleEvent(Event)
}

// HandleEventFunc is func type of EventHandler.
type HandleEventFunc func(Event)

// HandleEvent implements EventHandler.
func (f HandleEventFunc) HandleEvent(ev Event) {
	f(ev)
}

// Stats is a snapshot of link counters.
type Stats struct {
	BytesReceived     uint64
	BytesDropped      uint64
	BytesDiscarded    uint64
	FramesReceived    uint64
	FramesTransmitted uint64
	ChecksumErrors    uint64
	SizeErrors        uint64
	DelimiterErrors   uint64
}

type counters struct {
	bytesReceived     uint64
	bytesDropped      uint64
	bytesDiscarded    uint64
	framesReceived    uint64
	framesTransmitted uint64
	checksumErrors    uint64
	sizeErrors        uint64
	delimiterErrors   uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		BytesReceived:     atomic.LoadUint64(&c.bytesReceived),
		BytesDropped:      atomic.LoadUint64(&c.bytesDropped),
		BytesDiscarded:    atomic.LoadUint64(&c.bytesDiscarded),
		FramesReceived:    atomic.LoadUint64(&c.framesReceived),
		FramesTransmitted: atomic.LoadUint64(&c.framesTransmitted),
		ChecksumErrors:    atomic.LoadUint64(&c.checksumErrors),
		SizeErrors:        atomic.LoadUint64(&c.sizeErrors),
		DelimiterErrors:   atomic.LoadUint64(&c.delimiterErrors),
	}
}

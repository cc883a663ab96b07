package xbee

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/xbee.go/pkg/rbuf"
)

// DefaultRetryInterval is how long Receive waits for new bytes before
// trying again when nothing wakes it up.
const DefaultRetryInterval = 10 * time.Millisecond

// Option configures a Link.
type Option func(*Link)

// WithCapacity sets the allocated size of the receive ring buffer.
func WithCapacity(n int) Option {
	return func(l *Link) {
		l.capacity = n
	}
}

// WithRetryInterval sets the polling interval of Receive.
func WithRetryInterval(d time.Duration) Option {
	return func(l *Link) {
		l.retryInterval = d
	}
}

// WithEventHandler sets the handler notified about link events.
func WithEventHandler(h EventHandler) Option {
	return func(l *Link) {
		l.handler = h
	}
}

// Link sends and receives API frames.
//
// Bytes arrive through RxHandler from one producer goroutine. Receive,
// FindFrame and Init are consumers and are serialized with each other.
// Transmit only uses the writer and never touches the receive buffer.
type Link struct {
	stats counters

	w             io.ByteWriter
	capacity      int
	retryInterval time.Duration
	handler       EventHandler

	buf      *rbuf.Buffer
	rx       rbuf.Consumer
	scanner  *Scanner
	scratch  []byte
	maxFrame int
	wakeCh   chan struct{}
	rxLock   sync.Mutex
	txLock   sync.Mutex

	rxHandler *RxHandler
}

// NewLink creates a Link writing frames to w.
func NewLink(w io.ByteWriter, opts ...Option) *Link {
	l := &Link{
		w:             w,
		capacity:      rbuf.DefaultCapacity,
		retryInterval: DefaultRetryInterval,
		wakeCh:        make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(l)
	}
	l.buf = rbuf.New(l.capacity)
	l.rx = l.buf.Consumer()
	l.scanner = NewScanner(l.rx)
	l.maxFrame = l.buf.Usable()
	l.scratch = make([]byte, l.maxFrame)
	l.rxHandler = &RxHandler{p: l.buf.Producer(), l: l}
	return l
}

// Init clears the receive buffer. Call it before the producer starts.
func (l *Link) Init() {
	l.rxLock.Lock()
	defer l.rxLock.Unlock()
	l.buf.Reset()
	select {
	case <-l.wakeCh:
	default:
	}
}

// RxHandler returns the append-only handle for the byte producer.
func (l *Link) RxHandler() *RxHandler {
	return l.rxHandler
}

// Buffered returns the number of bytes waiting in the receive buffer.
func (l *Link) Buffered() int {
	return l.rx.Len()
}

// Stats returns a snapshot of the link counters.
func (l *Link) Stats() Stats {
	return l.stats.snapshot()
}

// Transmit sends payload to dest in a TX request. Nothing is written when
// the frame would exceed MaxFrameSize.
func (l *Link) Transmit(payload []byte, dest Address, opts byte) error {
	f, err := BuildTX(payload, dest, opts)
	if err != nil {
		return err
	}
	return l.SendFrame(f)
}

// SendATCommand sends a local AT command.
func (l *Link) SendATCommand(frameID byte, cmd string, param []byte) error {
	f, err := BuildATCommand(frameID, cmd, param)
	if err != nil {
		return err
	}
	return l.SendFrame(f)
}

// SendFrame escapes and writes a built frame.
func (l *Link) SendFrame(f Frame) error {
	l.txLock.Lock()
	err := WriteEscaped(l.w, f)
	l.txLock.Unlock()
	if err != nil {
		return fmt.Errorf("transmit %s: %w", f.Type(), err)
	}
	atomic.AddUint64(&l.stats.framesTransmitted, 1)
	glog.V(4).Infof("TX %s", f)
	l.emit(Event{Kind: EventFrameTransmitted, Frame: f})
	return nil
}

// ReceiveTimeout is Receive with a timeout.
func (l *Link) ReceiveTimeout(timeout time.Duration) (Frame, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return l.Receive(ctx)
}

// Receive returns the next valid frame. At least one attempt is made.
//
// While nothing is buffered, no delimiter is found or the frame is still
// arriving, it waits and retries until ctx is done. When the deadline passes
// it returns ErrFrameIncomplete if a frame was partially received, otherwise
// ErrDelimiterNotFound. ErrFrameTooLarge and ErrChecksumMismatch are
// returned immediately after the bad frame is discarded.
func (l *Link) Receive(ctx context.Context) (Frame, error) {
	l.rxLock.Lock()
	defer l.rxLock.Unlock()

	var ticker *time.Ticker
	for {
		f, err := l.findFrame()
		if err != ErrDelimiterNotFound && err != ErrFrameIncomplete {
			return f, err
		}
		if ticker == nil {
			ticker = time.NewTicker(l.retryInterval)
			defer ticker.Stop()
		}
		select {
		case <-ctx.Done():
			if ctx.Err() != context.DeadlineExceeded {
				return nil, ctx.Err()
			}
			if err == ErrDelimiterNotFound {
				atomic.AddUint64(&l.stats.delimiterErrors, 1)
			}
			return nil, err
		case <-l.wakeCh:
		case <-ticker.C:
		}
	}
}

// FindFrame makes a single receive attempt without waiting.
func (l *Link) FindFrame() (Frame, error) {
	l.rxLock.Lock()
	defer l.rxLock.Unlock()
	return l.findFrame()
}

func (l *Link) findFrame() (Frame, error) {
	for i := range l.scratch {
		l.scratch[i] = 0
	}

	res := l.scanner.ScanForDelimiter()
	if res.Discarded > 0 {
		l.discarded(res.Discarded)
		l.emit(Event{Kind: EventGarbageDiscarded, Count: res.Discarded})
	}
	if res.Status != ScanFound {
		return nil, ErrDelimiterNotFound
	}

	n := l.rx.CopyTo(l.scratch)
	// A trailing escape marker waits for its byte; it is left out of the
	// logical length and the frame is judged on what precedes it.
	removed, _ := Unescape(l.scratch[:n])
	available := n - removed

	err := validate(l.scratch, available, l.maxFrame)
	if err == ErrFrameIncomplete && n >= l.maxFrame {
		// The buffer is full and the escaped frame still doesn't fit.
		err = ErrFrameTooLarge
	}
	switch err {
	case ErrFrameIncomplete:
		return nil, err
	case nil:
		f := make(Frame, Frame(l.scratch).Len())
		copy(f, l.scratch)
		l.discardFrame()
		atomic.AddUint64(&l.stats.framesReceived, 1)
		glog.V(4).Infof("RX %s", f)
		l.emit(Event{Kind: EventFrameReceived, Frame: f})
		return f, nil
	case ErrFrameTooLarge:
		atomic.AddUint64(&l.stats.sizeErrors, 1)
	case ErrChecksumMismatch:
		atomic.AddUint64(&l.stats.checksumErrors, 1)
	}
	l.discardFrame()
	glog.V(2).Infof("RX frame dropped: %v", err)
	l.emit(Event{Kind: EventFrameDropped, Err: err})
	return nil, err
}

func (l *Link) discardFrame() {
	l.discarded(l.scanner.DiscardFrame())
}

func (l *Link) discarded(n int) {
	atomic.AddUint64(&l.stats.bytesDiscarded, uint64(n))
}

func (l *Link) emit(ev Event) {
	if h := l.handler; h != nil {
		h.HandleEvent(ev)
	}
}

func (l *Link) wakeUp() {
	select {
	case l.wakeCh <- struct{}{}:
	default:
	}
}

// RxHandler is the producer side of a Link, used by exactly one goroutine
// delivering received bytes.
type RxHandler struct {
	p rbuf.Producer
	l *Link
}

// HandleByte buffers one received byte. When the buffer is full the byte is
// dropped and ErrBufferFull returned.
func (h *RxHandler) HandleByte(b byte) error {
	err := h.appendByte(b)
	h.l.wakeUp()
	return err
}

// Write implements io.Writer. It never fails: bytes that do not fit are
// dropped and counted in Stats.BytesDropped.
func (h *RxHandler) Write(p []byte) (int, error) {
	for _, b := range p {
		h.appendByte(b)
	}
	if len(p) > 0 {
		h.l.wakeUp()
	}
	return len(p), nil
}

func (h *RxHandler) appendByte(b byte) error {
	atomic.AddUint64(&h.l.stats.bytesReceived, 1)
	if err := h.p.Append(b); err != nil {
		atomic.AddUint64(&h.l.stats.bytesDropped, 1)
		return err
	}
	return nil
}

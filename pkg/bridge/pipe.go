package bridge

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"
)

// DefaultQueueSize is the number of envelopes a Pipe holds for a slow peer.
const DefaultQueueSize = 32

// Pipe connects a peer to the link. It writes Received envelopes posted to
// it and transmits TransmitRequest envelopes read from the peer.
type Pipe struct {
	ReadWriter  PacketReadWriter
	Transmitter Transmitter

	sendCh    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewPipe creates a Pipe.
func NewPipe(rw PacketReadWriter, t Transmitter, queueSize int) *Pipe {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Pipe{
		ReadWriter:  rw,
		Transmitter: t,
		sendCh:      make(chan []byte, queueSize),
		done:        make(chan struct{}),
	}
}

// Post queues an encoded envelope for the peer. It never blocks, the
// envelope is dropped when the queue is full or the pipe closed.
func (p *Pipe) Post(pkt []byte) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.sendCh <- pkt:
		return true
	default:
		glog.V(2).Info("pipe queue full, envelope dropped")
		return false
	}
}

// Run implements framework.Runnable.
func (p *Pipe) Run(ctx context.Context) error {
	defer p.Close()
	go p.writeLoop()
	go func() {
		select {
		case <-ctx.Done():
			p.Close()
		case <-p.done:
		}
	}()

	for {
		pkt, err := p.ReadWriter.ReadPacket()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err == io.EOF {
				return nil
			}
			return err
		}
		var req TransmitRequest
		if err := req.Unmarshal(pkt); err != nil {
			glog.Warningf("transmit request: %v", err)
			continue
		}
		if err := req.Send(p.Transmitter); err != nil {
			glog.Warningf("transmit to %s: %v", req.Dest, err)
		}
	}
}

// Close implements io.Closer.
func (p *Pipe) Close() (err error) {
	p.closeOnce.Do(func() {
		close(p.done)
		if closer, ok := p.ReadWriter.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return
}

func (p *Pipe) writeLoop() {
	for {
		select {
		case pkt := <-p.sendCh:
			if err := p.ReadWriter.WritePacket(pkt); err != nil {
				glog.V(2).Infof("pipe write: %v", err)
				p.Close()
				return
			}
		case <-p.done:
			return
		}
	}
}

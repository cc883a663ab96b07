package bridge

import (
	"context"
	"net"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/xbee.go/pkg/xbee"
)

// Hub broadcasts received frames to every connected peer.
type Hub struct {
	Transmitter Transmitter
	QueueSize   int

	lock  sync.RWMutex
	pipes map[*Pipe]struct{}
}

// NewHub creates a Hub transmitting requests from peers with t.
func NewHub(t Transmitter) *Hub {
	return &Hub{Transmitter: t, pipes: make(map[*Pipe]struct{})}
}

// Serve runs a Pipe for the peer until it disconnects or ctx is done.
func (h *Hub) Serve(ctx context.Context, rw PacketReadWriter) error {
	p := NewPipe(rw, h.Transmitter, h.QueueSize)
	h.lock.Lock()
	h.pipes[p] = struct{}{}
	h.lock.Unlock()
	defer func() {
		h.lock.Lock()
		delete(h.pipes, p)
		h.lock.Unlock()
	}()
	return p.Run(ctx)
}

// ServeListener accepts stream peers from ln until ctx is done.
func (h *Hub) ServeListener(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		glog.V(2).Infof("peer %s connected", conn.RemoteAddr())
		go func() {
			err := h.Serve(ctx, NewStreamReadWriter(conn))
			glog.V(2).Infof("peer %s disconnected: %v", conn.RemoteAddr(), err)
		}()
	}
}

// Len returns the number of connected peers.
func (h *Hub) Len() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.pipes)
}

// HandleFrame implements FrameHandler.
func (h *Hub) HandleFrame(ctx context.Context, f xbee.Frame) {
	pkt, err := NewReceived(f).Marshal()
	if err != nil {
		glog.Errorf("encode %s: %v", f, err)
		return
	}
	h.lock.RLock()
	for p := range h.pipes {
		p.Post(pkt)
	}
	h.lock.RUnlock()
}

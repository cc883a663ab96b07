package bridge

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/xbee.go/pkg/xbee"
)

type frameCollector struct {
	lock   sync.Mutex
	frames []xbee.Frame
	ch     chan xbee.Frame
}

func newFrameCollector() *frameCollector {
	return &frameCollector{ch: make(chan xbee.Frame, 16)}
}

func (c *frameCollector) HandleFrame(ctx context.Context, f xbee.Frame) {
	c.lock.Lock()
	c.frames = append(c.frames, f)
	c.lock.Unlock()
	c.ch <- f
}

func (c *frameCollector) next(t *testing.T) xbee.Frame {
	select {
	case f := <-c.ch:
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("no frame dispatched")
	}
	return nil
}

func TestDispatcher(t *testing.T) {
	var out bytes.Buffer
	link := xbee.NewLink(&out, xbee.WithRetryInterval(time.Millisecond))
	link.Init()

	c1, c2 := newFrameCollector(), newFrameCollector()
	d := NewDispatcher(link).Add(c1)
	d.Add(HandleFrameFunc(c2.HandleFrame))
	d.Timeout = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	f1 := rxFrame(t, 1, []byte("one"))
	f2 := rxFrame(t, 2, []byte{0x7E, 0x7D})
	bad := rxFrame(t, 3, []byte("bad"))
	bad[len(bad)-1] ^= 0xFF
	h := link.RxHandler()
	h.Write(xbee.Escape(nil, f1))
	h.Write(xbee.Escape(nil, bad))
	h.Write(xbee.Escape(nil, f2))

	require.Equal(t, f1, c1.next(t))
	require.Equal(t, f2, c1.next(t))
	require.Equal(t, f1, c2.next(t))
	require.Equal(t, f2, c2.next(t))

	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher not stopped")
	}
	require.Equal(t, uint64(1), link.Stats().ChecksumErrors)
	require.Equal(t, "dispatcher", d.Name())
}

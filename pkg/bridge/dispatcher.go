// Package bridge delivers frames received by a link to other transports.
package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/xbee.go/pkg/xbee"
)

// FrameHandler is called when a frame is received.
type FrameHandler interface {
	HandleFrame(context.Context, xbee.Frame)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, xbee.Frame)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, frame xbee.Frame) {
	f(ctx, frame)
}

// Receiver is the consumer side of a link.
type Receiver interface {
	Receive(context.Context) (xbee.Frame, error)
}

// DefaultTimeout bounds a single receive of the Dispatcher.
const DefaultTimeout = time.Second

// Dispatcher is the only consumer of a link and fans received frames out
// to handlers.
type Dispatcher struct {
	Receiver Receiver
	Timeout  time.Duration

	handlers []FrameHandler
	lock     sync.RWMutex
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(r Receiver) *Dispatcher {
	return &Dispatcher{Receiver: r, Timeout: DefaultTimeout}
}

// Add adds handlers.
func (d *Dispatcher) Add(handlers ...FrameHandler) *Dispatcher {
	d.lock.Lock()
	d.handlers = append(d.handlers, handlers...)
	d.lock.Unlock()
	return d
}

// Name implements framework.Named.
func (d *Dispatcher) Name() string {
	return "dispatcher"
}

// Run implements framework.Runnable.
func (d *Dispatcher) Run(ctx context.Context) error {
	timeout := d.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rctx, cancel := context.WithTimeout(ctx, timeout)
		f, err := d.Receiver.Receive(rctx)
		cancel()
		switch err {
		case nil:
			d.dispatch(ctx, f)
		case xbee.ErrDelimiterNotFound, xbee.ErrFrameIncomplete:
			glog.V(4).Infof("receive idle: %v", err)
		case context.Canceled, context.DeadlineExceeded:
		default:
			glog.Warningf("receive: %v", err)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, f xbee.Frame) {
	d.lock.RLock()
	handlers := d.handlers
	d.lock.RUnlock()
	for _, h := range handlers {
		h.HandleFrame(ctx, f)
	}
}

package mqtt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/xbee.go/pkg/bridge"
	"github.com/robotalks/xbee.go/pkg/xbee"
)

// Topics relative to the prefix of the Queue.
const (
	// RxTopicPrefix is followed by the source address of received frames.
	RxTopicPrefix = "rx/"
	// TxTopic accepts TransmitRequest envelopes.
	TxTopic = "tx"
	// TxRawFilter accepts raw payloads on tx/<dest>.
	TxRawFilter = "tx/+"
)

// RxTopic returns the topic frames from src are published to.
func RxTopic(src xbee.Address) string {
	return RxTopicPrefix + src.String()
}

// ParseAddress parses a 64-bit hex address as used in topics.
func ParseAddress(s string) (xbee.Address, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return xbee.Address(v), nil
}

// Bridge publishes received frames and transmits requests from the broker.
type Bridge struct {
	Queue       *Queue
	Transmitter bridge.Transmitter
}

// NewBridge creates a Bridge.
func NewBridge(q *Queue, t bridge.Transmitter) *Bridge {
	return &Bridge{Queue: q, Transmitter: t}
}

// NewBridgeFromURL connects to the broker at brokerURL. clientID is used
// when the URL doesn't specify one.
func NewBridgeFromURL(brokerURL, clientID string, t bridge.Transmitter) (*Bridge, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		opts.SetClientID(clientID)
	}
	return NewBridge(NewQueue(opts, prefix), t), nil
}

// Name implements framework.Named.
func (b *Bridge) Name() string {
	return "mqtt"
}

// Run implements framework.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	if token := b.Queue.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer b.Queue.Close()

	subs := []*Subscription{
		b.Queue.Sub(TxTopic, b.handleTransmitRequest),
		b.Queue.Sub(TxRawFilter, b.handleRawTransmit),
	}
	defer func() {
		for _, sub := range subs {
			sub.Close()
		}
	}()

	<-ctx.Done()
	return ctx.Err()
}

// HandleFrame implements bridge.FrameHandler.
func (b *Bridge) HandleFrame(ctx context.Context, f xbee.Frame) {
	msg := bridge.NewReceived(f)
	payload, err := msg.Marshal()
	if err != nil {
		glog.Errorf("encode %s: %v", f, err)
		return
	}
	b.Queue.Pub(RxTopic(msg.Source), payload)
}

func (b *Bridge) handleTransmitRequest(topic string, payload []byte) {
	var req bridge.TransmitRequest
	if err := req.Unmarshal(payload); err != nil {
		glog.Warningf("%s: %v", topic, err)
		return
	}
	b.transmit(topic, &req)
}

func (b *Bridge) handleRawTransmit(topic string, payload []byte) {
	dest, err := ParseAddress(strings.TrimPrefix(topic, TxTopic+"/"))
	if err != nil {
		glog.Warningf("%s: %v", topic, err)
		return
	}
	b.transmit(topic, &bridge.TransmitRequest{Dest: dest, Data: payload})
}

func (b *Bridge) transmit(topic string, req *bridge.TransmitRequest) {
	if err := req.Send(b.Transmitter); err != nil {
		glog.Warningf("%s: transmit to %s: %v", topic, req.Dest, err)
	}
}

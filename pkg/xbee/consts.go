package xbee

import (
	"fmt"

	"github.com/robotalks/xbee.go/pkg/rbuf"
)

// Special bytes.
const (
	FrameDelim byte = 0x7E
	EscapeByte byte = 0x7D
	XON        byte = 0x11
	XOFF       byte = 0x13

	// EscapeMask is XORed into an escaped byte.
	EscapeMask byte = 0x20
)

// Frame sizes.
const (
	// MaxFrameSize is the largest frame (delimiter to checksum) accepted,
	// the usable capacity of the default receive buffer.
	MaxFrameSize = rbuf.DefaultCapacity - 1

	// HeaderSize covers the delimiter and the length field.
	HeaderSize = 3

	// FrameOverhead is delimiter, length and checksum.
	FrameOverhead = HeaderSize + 1

	// TXOverhead is the on-wire overhead of a TX request.
	TXOverhead = 18
	// RXOverhead is the on-wire overhead of an RX packet.
	RXOverhead = 16

	// MaxTXPayload is the largest payload Transmit accepts.
	MaxTXPayload = MaxFrameSize - TXOverhead
)

// FrameType is the API frame identifier, the 4th byte of a frame.
type FrameType byte

// DigiMesh frame types.
const (
	FrameAT          FrameType = 0x08
	FrameATQueue     FrameType = 0x09
	FrameTX          FrameType = 0x10
	FrameExplicitTX  FrameType = 0x11
	FrameRemoteAT    FrameType = 0x17
	FrameATResp      FrameType = 0x88
	FrameModemStatus FrameType = 0x8A
	FrameTXStatus    FrameType = 0x8B
	FrameRouteInfo   FrameType = 0x8D
	FrameRX          FrameType = 0x90
	FrameExplicitRX  FrameType = 0x91
	FrameNodeID      FrameType = 0x95
	FrameRemoteResp  FrameType = 0x97
)

var frameTypeNames = map[FrameType]string{
	FrameAT:          "AT",
	FrameATQueue:     "AT_QPV",
	FrameTX:          "TX",
	FrameExplicitTX:  "EXPLICIT_TX",
	FrameRemoteAT:    "REMOTE",
	FrameATResp:      "AT_RESP",
	FrameModemStatus: "MODEM_STATUS",
	FrameTXStatus:    "TX_STATUS",
	FrameRouteInfo:   "ROUTE_INFO",
	FrameRX:          "RX",
	FrameExplicitRX:  "EXPLICIT_RX",
	FrameNodeID:      "NODE_ID",
	FrameRemoteResp:  "REMOTE_RESP",
}

// String implements fmt.Stringer.
func (t FrameType) String() string {
	if name, ok := frameTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", byte(t))
}

// Address is a 64-bit radio address.
type Address uint64

const (
	// BroadcastAddress sends to every node.
	BroadcastAddress Address = 0x000000000000FFFF
	// UnknownAddress is returned as the source of frames without one.
	UnknownAddress Address = 1
)

// String implements fmt.Stringer.
func (a Address) String() string {
	return fmt.Sprintf("%016X", uint64(a))
}

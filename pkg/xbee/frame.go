package xbee

import (
	"encoding/binary"
	"fmt"
)

// Frame is one unescaped API frame, delimiter through checksum.
type Frame []byte

// RX packet field offsets.
const (
	rxSourceOffset  = 4
	rxOptionsOffset = 14
	rxDataOffset    = 15
)

// Type returns the frame type.
func (f Frame) Type() FrameType {
	if len(f) <= HeaderSize {
		return 0
	}
	return FrameType(f[HeaderSize])
}

// DataLen returns the declared length field.
func (f Frame) DataLen() int {
	if len(f) < HeaderSize {
		return 0
	}
	return int(binary.BigEndian.Uint16(f[1:HeaderSize]))
}

// Len returns the frame size on the wire before escaping, computed from the
// length field.
func (f Frame) Len() int {
	return f.DataLen() + FrameOverhead
}

// Checksum returns the checksum byte.
func (f Frame) Checksum() byte {
	if n := f.Len(); n <= len(f) {
		return f[n-1]
	}
	return 0
}

// Valid tells if the frame is complete and its checksum is correct.
func (f Frame) Valid() bool {
	return Validate(f, len(f)) == nil
}

// SourceAddress returns the 64-bit source of an RX packet, or UnknownAddress
// for any other frame type.
func (f Frame) SourceAddress() Address {
	if f.Type() != FrameRX || len(f) < rxSourceOffset+8 {
		return UnknownAddress
	}
	return Address(binary.BigEndian.Uint64(f[rxSourceOffset:]))
}

// Options returns the receive options of an RX packet.
func (f Frame) Options() byte {
	if f.Type() != FrameRX || len(f) <= rxOptionsOffset {
		return 0
	}
	return f[rxOptionsOffset]
}

// Data returns the received data of an RX packet. For other frame types it
// returns the type specific fields between the type and the checksum.
func (f Frame) Data() []byte {
	end := f.Len() - 1
	if end > len(f) {
		return nil
	}
	start := HeaderSize + 1
	if f.Type() == FrameRX {
		start = rxDataOffset
	}
	if start > end {
		return nil
	}
	return f[start:end]
}

// String implements fmt.Stringer.
func (f Frame) String() string {
	if f.Type() == FrameRX {
		return fmt.Sprintf("%s from %s [% X]", f.Type(), f.SourceAddress(), f.Data())
	}
	return fmt.Sprintf("%s [% X]", f.Type(), f.Data())
}

// EncodeFrame wraps body (type through payload) with the delimiter, the
// length and the checksum.
func EncodeFrame(body []byte) (Frame, error) {
	total := len(body) + FrameOverhead
	if total > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	f := make(Frame, total)
	f[0] = FrameDelim
	binary.BigEndian.PutUint16(f[1:HeaderSize], uint16(len(body)))
	copy(f[HeaderSize:], body)
	f[total-1] = Checksum(body)
	return f, nil
}

// BuildTX builds a TX request carrying payload to dest. TX status responses
// are disabled and the broadcast radius is left at maximum hops.
func BuildTX(payload []byte, dest Address, opts byte) (Frame, error) {
	if len(payload)+TXOverhead > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	body := make([]byte, TXOverhead-FrameOverhead, TXOverhead-FrameOverhead+len(payload))
	body[0] = byte(FrameTX)
	body[1] = 0x00 // frame id 0 disables TX status
	binary.BigEndian.PutUint64(body[2:10], uint64(dest))
	body[10], body[11] = 0xFF, 0xFE // reserved
	body[12] = 0x00                 // broadcast radius
	body[13] = opts
	return EncodeFrame(append(body, payload...))
}

// BuildATCommand builds a local AT command frame. A zero frameID
// suppresses the response.
func BuildATCommand(frameID byte, cmd string, param []byte) (Frame, error) {
	if len(cmd) != 2 {
		return nil, fmt.Errorf("invalid AT command %q", cmd)
	}
	body := make([]byte, 0, 4+len(param))
	body = append(body, byte(FrameAT), frameID, cmd[0], cmd[1])
	return EncodeFrame(append(body, param...))
}

package bridge

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/xbee.go/pkg/xbee"
)

// Envelopes use the protobuf wire format so any protobuf runtime can read
// them with the equivalent message definitions:
//
//	message Received {
//	  uint32  type   = 1;
//	  fixed64 source = 2;
//	  bytes   data   = 3;
//	  bytes   frame  = 4;
//	}
//
//	message TransmitRequest {
//	  fixed64 dest    = 1;
//	  uint32  options = 2;
//	  bytes   data    = 3;
//	}

// ErrMalformed indicates an envelope can't be decoded.
var ErrMalformed = errors.New("malformed envelope")

// Received carries a frame received from the radio.
type Received struct {
	Type   xbee.FrameType
	Source xbee.Address
	Data   []byte
	Frame  xbee.Frame
}

// NewReceived creates the envelope of a frame.
func NewReceived(f xbee.Frame) *Received {
	return &Received{
		Type:   f.Type(),
		Source: f.SourceAddress(),
		Data:   f.Data(),
		Frame:  f,
	}
}

// Marshal encodes the envelope.
func (m *Received) Marshal() ([]byte, error) {
	b := proto.NewBuffer(make([]byte, 0, 16+len(m.Data)+len(m.Frame)))
	b.EncodeVarint(fieldKey(1, proto.WireVarint))
	b.EncodeVarint(uint64(m.Type))
	b.EncodeVarint(fieldKey(2, proto.WireFixed64))
	b.EncodeFixed64(uint64(m.Source))
	if len(m.Data) > 0 {
		b.EncodeVarint(fieldKey(3, proto.WireBytes))
		b.EncodeRawBytes(m.Data)
	}
	if len(m.Frame) > 0 {
		b.EncodeVarint(fieldKey(4, proto.WireBytes))
		b.EncodeRawBytes(m.Frame)
	}
	return b.Bytes(), nil
}

// Unmarshal decodes the envelope.
func (m *Received) Unmarshal(data []byte) error {
	*m = Received{}
	return decodeFields(data, func(num int, val uint64, raw []byte) {
		switch num {
		case 1:
			m.Type = xbee.FrameType(val)
		case 2:
			m.Source = xbee.Address(val)
		case 3:
			m.Data = append([]byte(nil), raw...)
		case 4:
			m.Frame = append(xbee.Frame(nil), raw...)
		}
	})
}

// String implements fmt.Stringer.
func (m *Received) String() string {
	return fmt.Sprintf("%s from %s [% X]", m.Type, m.Source, m.Data)
}

// Transmitter sends payloads over the link.
type Transmitter interface {
	Transmit(payload []byte, dest xbee.Address, opts byte) error
}

// TransmitRequest asks the bridge to send Data to Dest.
type TransmitRequest struct {
	Dest    xbee.Address
	Options byte
	Data    []byte
}

// Marshal encodes the request.
func (m *TransmitRequest) Marshal() ([]byte, error) {
	b := proto.NewBuffer(make([]byte, 0, 16+len(m.Data)))
	b.EncodeVarint(fieldKey(1, proto.WireFixed64))
	b.EncodeFixed64(uint64(m.Dest))
	if m.Options != 0 {
		b.EncodeVarint(fieldKey(2, proto.WireVarint))
		b.EncodeVarint(uint64(m.Options))
	}
	if len(m.Data) > 0 {
		b.EncodeVarint(fieldKey(3, proto.WireBytes))
		b.EncodeRawBytes(m.Data)
	}
	return b.Bytes(), nil
}

// Unmarshal decodes the request.
func (m *TransmitRequest) Unmarshal(data []byte) error {
	*m = TransmitRequest{}
	return decodeFields(data, func(num int, val uint64, raw []byte) {
		switch num {
		case 1:
			m.Dest = xbee.Address(val)
		case 2:
			m.Options = byte(val)
		case 3:
			m.Data = append([]byte(nil), raw...)
		}
	})
}

// Send transmits the request.
func (m *TransmitRequest) Send(t Transmitter) error {
	return t.Transmit(m.Data, m.Dest, m.Options)
}

func fieldKey(num int, wireType int) uint64 {
	return uint64(num)<<3 | uint64(wireType)
}

// decodeFields walks the fields of a message. Numeric values are passed in
// val, length delimited values in raw. Unknown fields are handed over as
// well and ignored by the callers.
func decodeFields(data []byte, fn func(num int, val uint64, raw []byte)) error {
	b := proto.NewBuffer(data)
	for len(b.Unread()) > 0 {
		key, err := b.DecodeVarint()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		num, wireType := int(key>>3), int(key&7)
		var val uint64
		var raw []byte
		switch wireType {
		case proto.WireVarint:
			val, err = b.DecodeVarint()
		case proto.WireFixed64:
			val, err = b.DecodeFixed64()
		case proto.WireFixed32:
			val, err = b.DecodeFixed32()
		case proto.WireBytes:
			raw, err = b.DecodeRawBytes(false)
		default:
			return fmt.Errorf("%w: wire type %d", ErrMalformed, wireType)
		}
		if err != nil {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, err)
		}
		fn(num, val, raw)
	}
	return nil
}

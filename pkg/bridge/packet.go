package bridge

import (
	"encoding/binary"
	"io"
)

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// MaxStreamPacket bounds a packet read from a stream.
const MaxStreamPacket = 64 * 1024

// StreamReadWriter implements PacketReadWriter over a byte stream.
// Each packet is prefixed by its length in 4 bytes, little-endian.
type StreamReadWriter struct {
	io.ReadWriter
}

// NewStreamReadWriter creates a StreamReadWriter.
func NewStreamReadWriter(s io.ReadWriter) *StreamReadWriter {
	return &StreamReadWriter{s}
}

// ReadPacket implements PacketReader.
func (p *StreamReadWriter) ReadPacket() ([]byte, error) {
	var size uint32
	if err := binary.Read(p.ReadWriter, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxStreamPacket {
		return nil, ErrMalformed
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p.ReadWriter, pkt)
	return pkt, err
}

// WritePacket implements PacketWriter.
func (p *StreamReadWriter) WritePacket(pkt []byte) error {
	buf := make([]byte, 4+len(pkt))
	binary.LittleEndian.PutUint32(buf, uint32(len(pkt)))
	copy(buf[4:], pkt)
	_, err := p.Write(buf)
	return err
}

// Close implements io.Closer.
func (p *StreamReadWriter) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

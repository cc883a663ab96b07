package xbee

import "encoding/binary"

// Checksum computes the checksum byte of a frame body (type through the last
// payload byte).
func Checksum(body []byte) byte {
	var sum byte
	for _, b := range body {
		sum += b
	}
	return 0xFF - sum
}

// Validate checks the unescaped candidate frame[:available] which starts with
// a delimiter. It returns nil for a complete frame with a good checksum,
// ErrFrameIncomplete when more bytes are expected, ErrFrameTooLarge when the
// declared size can never fit, or ErrChecksumMismatch.
//
// Validate only judges. Discarding the frame is up to the caller.
func Validate(frame []byte, available int) error {
	return validate(frame, available, MaxFrameSize)
}

func validate(frame []byte, available, maxSize int) error {
	if available > len(frame) {
		available = len(frame)
	}
	if available < HeaderSize {
		return ErrFrameIncomplete
	}
	total := int(binary.BigEndian.Uint16(frame[1:HeaderSize])) + FrameOverhead
	if total > available {
		if total > maxSize {
			return ErrFrameTooLarge
		}
		return ErrFrameIncomplete
	}
	var sum byte
	for _, b := range frame[HeaderSize:total] {
		sum += b
	}
	if sum != 0xFF {
		return ErrChecksumMismatch
	}
	return nil
}

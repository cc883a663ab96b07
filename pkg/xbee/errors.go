package xbee

import (
	"errors"

	"github.com/robotalks/xbee.go/pkg/rbuf"
)

var (
	// ErrBufferFull indicates a received byte was dropped.
	ErrBufferFull = rbuf.ErrFull
	// ErrFrameTooLarge indicates a frame larger than MaxFrameSize, or than
	// the receive buffer can hold. The frame is discarded.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrDelimiterNotFound indicates no frame start was found. Buffered
	// garbage is discarded.
	ErrDelimiterNotFound = errors.New("frame delimiter not found")
	// ErrFrameIncomplete indicates more bytes are needed. Nothing is discarded.
	ErrFrameIncomplete = errors.New("frame incomplete")
	// ErrChecksumMismatch indicates a corrupted frame. The frame is discarded.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrTruncatedEscape indicates the last byte of a buffer is an escape
	// marker without the escaped byte.
	ErrTruncatedEscape = errors.New("truncated escape sequence")
)
